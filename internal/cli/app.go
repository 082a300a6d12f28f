// Package cli implements the unplayer command line: every run restores the
// saved queue, applies one command and saves the result.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/llehouerou/unplayer/internal/config"
	"github.com/llehouerou/unplayer/internal/errmsg"
	"github.com/llehouerou/unplayer/internal/mediaart"
	"github.com/llehouerou/unplayer/internal/metadata"
	"github.com/llehouerou/unplayer/internal/queue"
	"github.com/llehouerou/unplayer/internal/session"
	"github.com/llehouerou/unplayer/internal/state"
)

const loadTimeout = 30 * time.Second

// app is the state of one command run.
type app struct {
	session *session.Session
	store   state.Interface
	logger  *slog.Logger
	out     io.Writer
	savedAt time.Time // when the restored queue was saved, zero if none

	stopLoader   func()
	autosaveDone chan struct{}
}

func openApp(ctx context.Context, cfg *config.Config, opts *Options, logger *slog.Logger) (*app, error) {
	store := opts.Store
	if store == nil {
		m, err := state.Open(cfg.StatePath)
		if err != nil {
			return nil, errmsg.Error(errmsg.OpQueueLoad, err)
		}
		store = m
	}

	loader, stopLoader := opts.Loader, func() {}
	if loader == nil {
		loader, stopLoader = newFileLoader(ctx, cfg, logger)
	}

	a := &app{
		session: session.New(session.Options{
			Loader: loader,
			Random: opts.Random,
			Logger: logger,
		}),
		store:      store,
		logger:     logger,
		stopLoader: stopLoader,
	}
	if err := a.restore(ctx, cfg); err != nil {
		a.discard()
		_ = store.Close()
		return nil, err
	}
	a.autosave()
	return a, nil
}

func newFileLoader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (queue.Loader, func()) {
	lopts := metadata.LoaderOptions{Workers: cfg.LoaderWorkers(), Logger: logger}
	if cfg.MediaArtEnabled() {
		art, err := mediaart.New(mediaart.Options{
			Dir:    cfg.MediaArt.CacheDir,
			Size:   cfg.MediaArtSize(),
			Logger: logger,
		})
		if err != nil {
			logger.Warn("media art disabled", "err", err)
		} else {
			lopts.Art = art
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	l := metadata.NewLoader(ctx, lopts)
	return l, func() {
		cancel()
		l.Wait()
	}
}

func (a *app) restore(ctx context.Context, cfg *config.Config) error {
	saved, err := a.store.GetQueue(ctx)
	if err != nil {
		return errmsg.Error(errmsg.OpQueueLoad, err)
	}
	if saved == nil {
		mode, _ := cfg.RepeatMode()
		if err := a.session.SetRepeatMode(mode); err != nil {
			return errmsg.Error(errmsg.OpRepeat, err)
		}
		return errmsg.Error(errmsg.OpShuffle, a.session.SetShuffle(cfg.Queue.Shuffle))
	}

	a.savedAt = saved.SavedAt
	if err := a.session.Restore(saved.Snapshot()); err != nil {
		// a corrupt saved queue should not lock the user out
		a.logger.Warn("saved queue discarded", "err", err)
		return nil
	}
	a.logger.Debug("queue restored", "tracks", len(saved.Tracks), "current", saved.CurrentIndex)
	return nil
}

// settle waits until every added track has been resolved, or gives up
// after loadTimeout.
func (a *app) settle(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	if err := a.session.WaitLoaded(ctx); err != nil {
		a.logger.Warn("metadata still loading", "err", err)
	}
}

func (a *app) printCurrent() {
	printCurrent(a.out, a.session.Snapshot())
}

// autosave schedules a save after every change to the queue, so that an
// interrupted run loses at most the last debounce window.
func (a *app) autosave() {
	sub := a.session.Subscribe()
	a.autosaveDone = make(chan struct{})
	go func() {
		defer close(a.autosaveDone)
		for {
			select {
			case e := <-sub.Events:
				a.onEvent(e)
			case <-sub.Done:
				for {
					select {
					case e := <-sub.Events:
						a.onEvent(e)
					default:
						return
					}
				}
			}
		}
	}()
}

func (a *app) onEvent(e queue.Event) {
	if _, ok := e.(queue.AddingTracksChanged); ok {
		return
	}
	a.store.ScheduleSave(state.FromSnapshot(a.session.Snapshot()))
}

// close waits for pending metadata, saves the queue and releases everything.
func (a *app) close(ctx context.Context) error {
	a.settle(ctx)
	a.discard()

	saveErr := a.store.SaveQueue(ctx, state.FromSnapshot(a.session.Snapshot()))
	return errors.Join(errmsg.Error(errmsg.OpQueueSave, saveErr), a.store.Close())
}

// discard stops the session, the autosave consumer and the loader.
func (a *app) discard() {
	_ = a.session.Close()
	if a.autosaveDone != nil {
		<-a.autosaveDone
	}
	a.stopLoader()
}

// oneBased converts a user-facing position into a queue index.
func oneBased(n int) int {
	return n - 1
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return oneBased(n), nil
}
