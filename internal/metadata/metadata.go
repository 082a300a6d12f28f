// Package metadata resolves what the queue shows for a local music file:
// tags, stream length and cover art. Its Loader answers queue load requests
// from a bounded pool of workers.
package metadata

import (
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Supported file extensions.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

var musicExts = []string{ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4}

// Tags holds the tag fields the queue uses.
type Tags struct {
	Title       string
	Artist      string
	AlbumArtist string
	Album       string
	Genre       string
	TrackNumber int
	DiscNumber  int
	Year        int
}

// IsMusicFile reports whether path has a supported extension.
func IsMusicFile(path string) bool {
	return slices.Contains(musicExts, ext(path))
}

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// leadingInt parses "5", "5/12" or "2004-05-01" into its leading number.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		s = s[:end]
	}
	n, _ := strconv.Atoi(s)
	return n
}
