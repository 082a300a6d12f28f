package mediaart

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/unplayer/internal/queue"
)

func pngCover(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// countingExtract serves fixed cover data and counts calls.
type countingExtract struct {
	data  []byte
	err   error
	calls int
}

func (c *countingExtract) extract(string) ([]byte, string, error) {
	c.calls++
	return c.data, "image/png", c.err
}

func newTestResolver(t *testing.T, ex *countingExtract, size int) *Resolver {
	t.Helper()
	r, err := New(Options{Dir: filepath.Join(t.TempDir(), "art"), Size: size})
	require.NoError(t, err)
	r.extract = ex.extract
	return r
}

func TestKey(t *testing.T) {
	a := Key("Artist", "Album", "/music/1.mp3")
	b := Key("Artist", "Album", "/music/2.mp3")
	assert.Equal(t, a, b, "tracks of one album share an entry")
	assert.Regexp(t, `^album-[0-9a-f]{64}-[0-9a-f]{64}$`, a)

	assert.NotEqual(t, a, Key("Artist", "Other", "/music/1.mp3"))

	p1 := Key(queue.UnknownArtist, "Album", "/music/1.mp3")
	p2 := Key(queue.UnknownArtist, "Album", "/music/2.mp3")
	assert.NotEqual(t, p1, p2, "placeholder artist falls back to per-file entries")
	assert.Regexp(t, `^track-[0-9a-f]{64}$`, p1)
	assert.NotEqual(t, Key("Artist", "", "/x"), Key("Artist", "", "/y"))
}

func TestLookup_StoresThumbnail(t *testing.T) {
	ex := &countingExtract{data: pngCover(t, 400, 200)}
	r := newTestResolver(t, ex, 100)

	path, ok := r.Lookup("Artist", "Album", "/music/1.mp3")

	require.True(t, ok)
	assert.Equal(t, filepath.Join(r.dir, Key("Artist", "Album", "")+".jpeg"), path)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 50, img.Bounds().Dy())
}

func TestLookup_CacheHitSkipsExtraction(t *testing.T) {
	ex := &countingExtract{data: pngCover(t, 10, 10)}
	r := newTestResolver(t, ex, 0)

	first, ok := r.Lookup("Artist", "Album", "/music/1.mp3")
	require.True(t, ok)
	second, ok := r.Lookup("Artist", "Album", "/music/2.mp3")
	require.True(t, ok)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, ex.calls)
}

func TestLookup_NoArtIsRemembered(t *testing.T) {
	ex := &countingExtract{}
	r := newTestResolver(t, ex, 0)

	_, ok := r.Lookup("Artist", "Album", "/music/1.mp3")
	assert.False(t, ok)
	_, ok = r.Lookup("Artist", "Album", "/music/1.mp3")
	assert.False(t, ok)

	assert.Equal(t, 1, ex.calls)
	entries, err := os.ReadDir(r.dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLookup_Failures(t *testing.T) {
	tests := []struct {
		name string
		ex   *countingExtract
	}{
		{"extract error", &countingExtract{err: errors.New("boom")}},
		{"undecodable data", &countingExtract{data: []byte("not an image")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(t, tt.ex, 0)

			path, ok := r.Lookup("Artist", "Album", "/music/1.mp3")

			assert.False(t, ok)
			assert.Empty(t, path)
		})
	}
}

func TestNew_DefaultDir(t *testing.T) {
	assert.Equal(t, "media-art", filepath.Base(DefaultDir()))
	assert.Equal(t, appName, filepath.Base(filepath.Dir(DefaultDir())))
}

// gatedExtract blocks every extraction until release is closed.
type gatedExtract struct {
	data    []byte
	entered chan string
	release chan struct{}
	calls   atomic.Int32
}

func newGatedExtract(t *testing.T) *gatedExtract {
	return &gatedExtract{
		data:    pngCover(t, 40, 40),
		entered: make(chan string, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedExtract) extract(locator string) ([]byte, string, error) {
	g.calls.Add(1)
	g.entered <- locator
	<-g.release
	return g.data, "image/png", nil
}

func TestLookup_DistinctKeysRunConcurrently(t *testing.T) {
	g := newGatedExtract(t)
	r, err := New(Options{Dir: filepath.Join(t.TempDir(), "art")})
	require.NoError(t, err)
	r.extract = g.extract

	const n = 4
	var wg sync.WaitGroup
	for i := range n {
		locator := filepath.Join("/music", string(rune('a'+i))+".mp3")
		wg.Go(func() {
			_, ok := r.Lookup(queue.UnknownArtist, queue.UnknownAlbum, locator)
			assert.True(t, ok)
		})
	}

	for range n {
		select {
		case <-g.entered:
		case <-time.After(5 * time.Second):
			close(g.release)
			wg.Wait()
			t.Fatal("extractions for different tracks did not overlap")
		}
	}
	close(g.release)
	wg.Wait()
	assert.Equal(t, int32(n), g.calls.Load())
}

func TestLookup_SameKeyExtractsOnce(t *testing.T) {
	g := newGatedExtract(t)
	r, err := New(Options{Dir: filepath.Join(t.TempDir(), "art")})
	require.NoError(t, err)
	r.extract = g.extract

	var wg sync.WaitGroup
	paths := make([]string, 2)
	wg.Go(func() {
		paths[0], _ = r.Lookup("Artist", "Album", "/music/1.mp3")
	})
	<-g.entered
	wg.Go(func() {
		paths[1], _ = r.Lookup("Artist", "Album", "/music/2.mp3")
	})
	close(g.release)
	wg.Wait()

	assert.Equal(t, int32(1), g.calls.Load())
	assert.Equal(t, paths[0], paths[1])
	assert.NotEmpty(t, paths[0])
}
