// Package session wraps a queue for concurrent use. It serializes every
// operation, re-enters loader results through the same lock and fans queue
// events out to channel subscribers.
package session

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/llehouerou/unplayer/internal/queue"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("session closed")

// Options configures a Session.
type Options struct {
	Loader queue.Loader
	Random queue.RandomSource
	Logger *slog.Logger
}

// Session is a goroutine-safe queue.
type Session struct {
	mu     sync.RWMutex
	queue  *queue.Queue
	logger *slog.Logger

	// idle is closed while no load results are expected.
	idle chan struct{}

	subs   []*Subscription
	subsMu sync.RWMutex

	done   chan struct{}
	closed bool
}

// New creates a session around an empty queue.
func New(opts Options) *Session {
	s := &Session{
		logger: opts.Logger,
		idle:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	close(s.idle)
	s.queue = queue.New(queue.Options{
		Random:   opts.Random,
		Notifier: s,
		Loader:   opts.Loader,
		Deliver:  s.deliver,
	})
	return s
}

// deliver is handed to the loader. Results may arrive while the caller of
// Load still holds the lock, so they are applied on their own goroutine.
func (s *Session) deliver(res queue.LoadResult) {
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		if res.Err != nil {
			s.logger.Debug("track load failed", "locator", res.Locator, "err", res.Err)
		}
		s.queue.ApplyResult(res)
	}()
}

// Notify implements queue.Notifier. It runs with s.mu held.
func (s *Session) Notify(e queue.Event) {
	if a, ok := e.(queue.AddingTracksChanged); ok {
		if a.Adding {
			s.idle = make(chan struct{})
		} else {
			close(s.idle)
			s.logger.Debug("track loading complete")
		}
	}

	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		if !sub.send(e) {
			s.logger.Warn("subscriber buffer full, event dropped", "event", e)
		}
	}
}

// Subscribe creates a new event subscription.
func (s *Session) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	if s.isClosed() {
		sub.close()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Unsubscribe stops event delivery to sub and closes its Done channel.
func (s *Session) Unsubscribe(sub *Subscription) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	i := slices.Index(s.subs, sub)
	if i < 0 {
		return
	}
	s.subs = slices.Delete(s.subs, i, i+1)
	sub.close()
}

func (s *Session) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// WaitLoaded blocks until every submitted track has been answered by the
// loader, ctx is done or the session is closed.
func (s *Session) WaitLoaded(ctx context.Context) error {
	s.mu.RLock()
	idle := s.idle
	s.mu.RUnlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

// Close shuts the session down. Pending load results are discarded.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	s.logger.Debug("session closed")
	return nil
}
