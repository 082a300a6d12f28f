// Package mediaart keeps a disk cache of album thumbnails extracted from
// music files and hands out their paths as artwork handles.
package mediaart

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG covers
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/nfnt/resize"

	"github.com/llehouerou/unplayer/internal/metadata"
	"github.com/llehouerou/unplayer/internal/queue"
)

const (
	appName     = "unplayer"
	defaultSize = 512
	jpegQuality = 90
)

var errNoArt = errors.New("no cover art")

// DefaultDir returns the cache directory under the XDG cache home.
func DefaultDir() string {
	return filepath.Join(xdg.CacheHome, appName, "media-art")
}

// Options configures a Resolver.
type Options struct {
	Dir    string // defaults to DefaultDir()
	Size   int    // max thumbnail edge in pixels, defaults to 512
	Logger *slog.Logger
}

// Resolver looks up and caches artwork. It is safe for concurrent use.
type Resolver struct {
	dir     string
	size    uint
	logger  *slog.Logger
	extract func(path string) ([]byte, string, error)

	mu      sync.Mutex
	missing map[string]struct{}
	keys    map[string]*sync.Mutex // serializes work on one cache entry
}

// New creates the cache directory if needed.
func New(opts Options) (*Resolver, error) {
	r := &Resolver{
		dir:     opts.Dir,
		size:    defaultSize,
		logger:  opts.Logger,
		extract: metadata.CoverArt,
		missing: make(map[string]struct{}),
		keys:    make(map[string]*sync.Mutex),
	}
	if r.dir == "" {
		r.dir = DefaultDir()
	}
	if opts.Size > 0 {
		r.size = uint(opts.Size)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media art cache: %w", err)
	}
	return r, nil
}

// Key returns the cache entry name for a track. Tracks of a known album
// share one entry; anything else gets a per-file entry.
func Key(artist, album, locator string) string {
	if artist == "" || album == "" || artist == queue.UnknownArtist || album == queue.UnknownAlbum {
		return "track-" + digest(locator)
	}
	return "album-" + digest(artist) + "-" + digest(album)
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Lookup returns the path of the cached thumbnail for a track, extracting it
// from locator on a miss. It reports false when the track has no usable art.
func (r *Resolver) Lookup(artist, album, locator string) (string, bool) {
	key := Key(artist, album, locator)
	path := filepath.Join(r.dir, key+".jpeg")

	unlock := r.lockKey(key)
	defer unlock()

	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	if r.isMissing(key) {
		return "", false
	}

	if err := r.store(locator, path); err != nil {
		r.logger.Debug("no media art", "locator", locator, "err", err)
		r.mu.Lock()
		r.missing[key] = struct{}{}
		r.mu.Unlock()
		return "", false
	}
	return path, true
}

func (r *Resolver) lockKey(key string) func() {
	r.mu.Lock()
	m, ok := r.keys[key]
	if !ok {
		m = &sync.Mutex{}
		r.keys[key] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func (r *Resolver) isMissing(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.missing[key]
	return ok
}

func (r *Resolver) store(locator, path string) error {
	data, _, err := r.extract(locator)
	if err != nil {
		return err
	}
	if data == nil {
		return errNoArt
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode cover: %w", err)
	}
	thumb := resize.Thumbnail(r.size, r.size, img, resize.Lanczos3)

	tmp, err := os.CreateTemp(r.dir, ".art-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := jpeg.Encode(tmp, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		tmp.Close()
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
