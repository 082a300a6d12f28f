package session

import "github.com/llehouerou/unplayer/internal/queue"

// write runs fn under the write lock unless the session is closed.
func (s *Session) write(fn func(q *queue.Queue) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return fn(s.queue)
}

func (s *Session) AddTracks(locators []string, opts queue.AddOptions) error {
	err := s.write(func(q *queue.Queue) error {
		return q.AddTracks(locators, opts)
	})
	if err == nil {
		s.logger.Debug("tracks added", "count", len(locators), "clear", opts.Clear)
	}
	return err
}

func (s *Session) AddTrack(locator string) error {
	return s.AddTracks([]string{locator}, queue.AddOptions{SetCurrent: -1})
}

func (s *Session) RemoveTrack(index int) error {
	return s.write(func(q *queue.Queue) error { return q.RemoveTrack(index) })
}

func (s *Session) RemoveTracks(indexes []int) error {
	return s.write(func(q *queue.Queue) error { return q.RemoveTracks(indexes) })
}

func (s *Session) Clear() error {
	return s.write(func(q *queue.Queue) error {
		q.Clear()
		return nil
	})
}

func (s *Session) Move(from, to int) error {
	return s.write(func(q *queue.Queue) error { return q.Move(from, to) })
}

func (s *Session) JumpTo(index int) error {
	return s.write(func(q *queue.Queue) error { return q.JumpTo(index) })
}

func (s *Session) Next() error {
	return s.write(func(q *queue.Queue) error { return q.Next() })
}

func (s *Session) Previous() error {
	return s.write(func(q *queue.Queue) error { return q.Previous() })
}

// AdvanceOnEndOfTrack reports whether playback should continue.
func (s *Session) AdvanceOnEndOfTrack() (bool, error) {
	var advanced bool
	err := s.write(func(q *queue.Queue) error {
		var err error
		advanced, err = q.AdvanceOnEndOfTrack()
		return err
	})
	return advanced, err
}

func (s *Session) SetShuffle(enabled bool) error {
	return s.write(func(q *queue.Queue) error {
		q.SetShuffle(enabled)
		return nil
	})
}

// ToggleShuffle returns the new shuffle state.
func (s *Session) ToggleShuffle() (bool, error) {
	var enabled bool
	err := s.write(func(q *queue.Queue) error {
		enabled = q.ToggleShuffle()
		return nil
	})
	return enabled, err
}

func (s *Session) SetRepeatMode(mode queue.RepeatMode) error {
	return s.write(func(q *queue.Queue) error { return q.SetRepeatMode(mode) })
}

// CycleRepeatMode returns the new repeat mode.
func (s *Session) CycleRepeatMode() (queue.RepeatMode, error) {
	var mode queue.RepeatMode
	err := s.write(func(q *queue.Queue) error {
		mode = q.CycleRepeatMode()
		return nil
	})
	return mode, err
}

// Restore replaces the queue state, typically with a persisted snapshot.
func (s *Session) Restore(snap queue.Snapshot) error {
	return s.write(func(q *queue.Queue) error { return q.Restore(snap) })
}

// Snapshot returns a copy of the whole queue state.
func (s *Session) Snapshot() queue.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Snapshot()
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Len()
}

func (s *Session) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.CurrentIndex()
}

func (s *Session) Current() *queue.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Current()
}

func (s *Session) Tracks() []queue.Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Tracks()
}

func (s *Session) Shuffle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.Shuffle()
}

func (s *Session) RepeatMode() queue.RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.RepeatMode()
}

func (s *Session) NotPlayed() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.NotPlayed()
}

func (s *Session) HasLocator(locator string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.HasLocator(locator)
}

func (s *Session) IsAddingTracks() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queue.IsAddingTracks()
}
