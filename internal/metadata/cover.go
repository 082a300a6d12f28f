package metadata

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dhowden/tag"
)

// Folder image names probed when a file carries no embedded art, in order.
var coverNames = []string{"cover", "folder", "album", "front", "artwork"}

var coverExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// CoverArt returns the embedded picture of a music file, or a cover image
// found next to it. Data is nil when neither exists.
func CoverArt(path string) (data []byte, mimeType string, err error) {
	data, mimeType, err = embeddedArt(path)
	if err != nil || data != nil {
		return data, mimeType, err
	}
	return folderArt(filepath.Dir(path))
}

func embeddedArt(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		// unreadable tags still leave the folder images to try
		return nil, "", nil //nolint:nilerr // folder art is the fallback
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		return pic.Data, pic.MIMEType, nil
	}
	return nil, "", nil
}

// folderArt matches names case-insensitively, preferring the order of coverNames.
func folderArt(dir string) ([]byte, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", nil //nolint:nilerr // a missing folder means no art
	}

	best, bestRank := "", len(coverNames)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		ext := filepath.Ext(name)
		if _, ok := coverExts[ext]; !ok {
			continue
		}
		rank := slices.Index(coverNames, strings.TrimSuffix(name, ext))
		if rank >= 0 && rank < bestRank {
			best, bestRank = e.Name(), rank
		}
	}
	if best == "" {
		return nil, "", nil
	}

	data, err := os.ReadFile(filepath.Join(dir, best))
	if err != nil {
		return nil, "", err
	}
	return data, coverExts[strings.ToLower(filepath.Ext(best))], nil
}
