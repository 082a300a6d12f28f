package metadata

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/llehouerou/unplayer/internal/queue"
)

const defaultWorkers = 4

// ErrLoaderStopped answers requests submitted once Wait has been called.
var ErrLoaderStopped = errors.New("loader stopped")

// ArtResolver maps a track to an artwork handle.
type ArtResolver interface {
	Lookup(artist, album, locator string) (string, bool)
}

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Workers int         // defaults to 4
	Art     ArtResolver // optional
	Logger  *slog.Logger
}

// Loader implements queue.Loader on local files.
//
// Requests are answered by a fixed pool of workers until ctx is done; from
// then on every outstanding request is answered with the context error.
type Loader struct {
	ctx    context.Context
	jobs   chan job
	art    ArtResolver
	logger *slog.Logger

	resolve func(path string) (queue.Metadata, error)

	mu      sync.Mutex // guards stopped and wg.Go against Wait
	stopped bool
	wg      sync.WaitGroup
}

type job struct {
	req     queue.LoadRequest
	deliver func(queue.LoadResult)
}

// NewLoader starts the worker pool.
func NewLoader(ctx context.Context, opts LoaderOptions) *Loader {
	l := &Loader{
		ctx:    ctx,
		jobs:   make(chan job),
		art:    opts.Art,
		logger: opts.Logger,
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	l.resolve = l.resolveFile

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	for range workers {
		l.wg.Go(l.work)
	}
	return l
}

// Load implements queue.Loader. It returns immediately.
func (l *Loader) Load(reqs []queue.LoadRequest, deliver func(queue.LoadResult)) {
	l.mu.Lock()
	err := l.ctx.Err()
	if err == nil && l.stopped {
		err = ErrLoaderStopped
	}
	if err != nil {
		l.mu.Unlock()
		for _, r := range reqs {
			deliver(failed(r, err))
		}
		return
	}

	reqs = slices.Clone(reqs)
	l.wg.Go(func() {
		for i, r := range reqs {
			select {
			case l.jobs <- job{req: r, deliver: deliver}:
			case <-l.ctx.Done():
				for _, rest := range reqs[i:] {
					deliver(failed(rest, l.ctx.Err()))
				}
				return
			}
		}
	})
	l.mu.Unlock()
}

// Wait blocks until the workers have stopped and every accepted request has
// been answered. It only returns after ctx is done. Requests submitted after
// Wait was called are refused.
func (l *Loader) Wait() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.wg.Wait()
}

func (l *Loader) work() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case j := <-l.jobs:
			j.deliver(l.answer(j.req))
		}
	}
}

func (l *Loader) answer(req queue.LoadRequest) queue.LoadResult {
	if err := l.ctx.Err(); err != nil {
		return failed(req, err)
	}
	m, err := l.resolve(req.Locator)
	if err != nil {
		l.logger.Debug("metadata unavailable", "locator", req.Locator, "err", err)
		return failed(req, err)
	}
	return queue.LoadResult{ID: req.ID, Locator: req.Locator, Metadata: m}
}

func failed(req queue.LoadRequest, err error) queue.LoadResult {
	return queue.LoadResult{ID: req.ID, Locator: req.Locator, Err: err}
}

// resolveFile reads everything the queue shows for one file. Tags are
// required; a missing duration or artwork only leaves that field empty.
func (l *Loader) resolveFile(path string) (queue.Metadata, error) {
	t, err := Read(path)
	if err != nil {
		return queue.Metadata{}, err
	}
	m := queue.Metadata{Title: t.Title, Artist: t.Artist, Album: t.Album}

	if d, err := Duration(path); err != nil {
		l.logger.Debug("duration unavailable", "locator", path, "err", err)
	} else {
		m.Duration = d
	}

	if l.art != nil {
		artist, album := m.Artist, m.Album
		if artist == "" {
			artist = queue.UnknownArtist
		}
		if album == "" {
			album = queue.UnknownAlbum
		}
		if handle, ok := l.art.Lookup(artist, album, path); ok {
			m.Artwork = handle
		}
	}
	return m, nil
}
