// Package queue implements the playback queue: an ordered list of tracks with
// a current-position cursor, shuffle and repeat modes, and a mutation protocol
// that keeps the cursor on the same track across edits elsewhere in the list.
//
// A Queue is not safe for concurrent use. Callers sharing one across
// goroutines must synchronize access (see the session package).
package queue

import (
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Options configures a Queue. The zero value is usable.
type Options struct {
	// Random drives shuffle picks. Defaults to math/rand/v2.
	Random RandomSource
	// Notifier receives every event. Defaults to discarding them.
	Notifier Notifier
	// Loader resolves metadata for added tracks. Nil leaves tracks pending.
	Loader Loader
	// Deliver is handed to the loader as the result callback.
	// Defaults to the queue's own ApplyResult, which is only correct when
	// the loader answers on the goroutine that owns the queue.
	Deliver func(LoadResult)
}

// AddOptions controls AddTracks.
type AddOptions struct {
	Clear      bool // empty the queue before adding
	SetCurrent int  // position to make current after the append, -1 to keep
}

// Queue is the ordered collection of tracks a player consumes.
type Queue struct {
	tracks       []Track
	currentIndex int // -1 iff tracks is empty
	shuffle      bool
	repeatMode   RepeatMode
	bag          *ShuffleBag

	notifier Notifier
	loader   Loader
	deliver  func(LoadResult)
	awaiting map[string]struct{}
	adding   bool
}

// New creates an empty queue.
func New(opts Options) *Queue {
	q := &Queue{
		tracks:       make([]Track, 0),
		currentIndex: -1,
		bag:          NewShuffleBag(opts.Random),
		notifier:     opts.Notifier,
		loader:       opts.Loader,
		deliver:      opts.Deliver,
		awaiting:     make(map[string]struct{}),
	}
	if q.notifier == nil {
		q.notifier = discardNotifier{}
	}
	if q.deliver == nil {
		q.deliver = q.ApplyResult
	}
	return q
}

// Len returns the number of tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// CurrentIndex returns the index of the current track (-1 if empty).
func (q *Queue) CurrentIndex() int {
	return q.currentIndex
}

// Current returns a copy of the current track, or nil if the queue is empty.
func (q *Queue) Current() *Track {
	return q.Track(q.currentIndex)
}

// Track returns a copy of the track at index, or nil if out of bounds.
func (q *Queue) Track(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	t := q.tracks[index]
	return &t
}

// Tracks returns a copy of all tracks in playback order.
func (q *Queue) Tracks() []Track {
	return slices.Clone(q.tracks)
}

// Shuffle reports whether shuffle is enabled.
func (q *Queue) Shuffle() bool {
	return q.shuffle
}

// RepeatMode returns the current repeat mode.
func (q *Queue) RepeatMode() RepeatMode {
	return q.repeatMode
}

// NotPlayed returns the indices not yet played in the current shuffle cycle.
// It is empty while shuffle is disabled.
func (q *Queue) NotPlayed() []int {
	return q.bag.Indices()
}

// HasLocator reports whether a track with the given locator is queued.
func (q *Queue) HasLocator(locator string) bool {
	return slices.ContainsFunc(q.tracks, func(t Track) bool {
		return t.Locator == locator
	})
}

// AddTrack appends a single locator.
func (q *Queue) AddTrack(locator string) {
	// SetCurrent -1 cannot fail.
	_ = q.AddTracks([]string{locator}, AddOptions{SetCurrent: -1})
}

// AddTracks appends pending tracks for locators.
//
// With opts.Clear the queue is emptied first. A non-negative opts.SetCurrent
// makes that position current once the tracks are appended; it must be a
// valid index of the resulting queue, otherwise nothing is changed.
// Adding to an empty queue makes the first track current.
func (q *Queue) AddTracks(locators []string, opts AddOptions) error {
	newLen := len(q.tracks) + len(locators)
	if opts.Clear {
		newLen = len(locators)
	}
	if opts.SetCurrent >= newLen {
		return indexError(opts.SetCurrent, newLen)
	}

	if opts.Clear {
		q.Clear()
	}
	if len(locators) == 0 {
		return nil
	}

	prevIndex, prevID := q.currentIndex, q.currentID()
	start := len(q.tracks)
	added := make([]Track, len(locators))
	for i, loc := range locators {
		added[i] = NewTrack(loc)
	}
	q.tracks = append(q.tracks, added...)

	if q.shuffle {
		for i := range added {
			q.bag.Add(start + i)
		}
	}
	q.notifier.Notify(TracksAdded{Start: start, Count: len(added)})

	switch {
	case opts.SetCurrent >= 0:
		q.currentIndex = opts.SetCurrent
		q.notifier.Notify(CurrentTrackChanged{Index: q.currentIndex})
	case q.currentIndex < 0:
		q.currentIndex = 0
		q.emitCurrentIfChanged(prevIndex, prevID)
	}

	q.submit(added)
	return nil
}

// RemoveTrack removes the track at index.
//
// Removing a track before the current one shifts the cursor left so it keeps
// denoting the same track. Removing the current track keeps the cursor where
// it is, so it now denotes the track that moved into that slot (or the new
// last track if the removed one was last).
func (q *Queue) RemoveTrack(index int) error {
	if err := q.checkIndex(index); err != nil {
		return err
	}
	prevIndex, prevID := q.currentIndex, q.currentID()
	q.removeAt(index)
	q.notifier.Notify(TrackRemoved{Index: index})
	q.emitCurrentIfChanged(prevIndex, prevID)
	return nil
}

// RemoveTracks removes several tracks at once.
//
// Indexes refer to positions before the removal; duplicates are ignored.
// The result is the same as removing the tracks one by one.
// If any index is out of range nothing is removed.
func (q *Queue) RemoveTracks(indexes []int) error {
	for _, i := range indexes {
		if err := q.checkIndex(i); err != nil {
			return err
		}
	}
	sorted := lo.Uniq(indexes)
	slices.Sort(sorted)
	if len(sorted) == 0 {
		return nil
	}

	prevIndex, prevID := q.currentIndex, q.currentID()
	// Descending so earlier positions stay valid while removing.
	for _, i := range slices.Backward(sorted) {
		q.removeAt(i)
	}
	q.notifier.Notify(TracksRemoved{Indexes: sorted})
	q.emitCurrentIfChanged(prevIndex, prevID)
	return nil
}

// removeAt removes one track and fixes the cursor and the shuffle bag.
func (q *Queue) removeAt(index int) {
	q.tracks = slices.Delete(q.tracks, index, index+1)
	q.bag.RemoveShift(index)

	switch {
	case len(q.tracks) == 0:
		q.currentIndex = -1
	case index < q.currentIndex:
		q.currentIndex--
	case index == q.currentIndex && q.currentIndex >= len(q.tracks):
		q.currentIndex = len(q.tracks) - 1
	}
}

// Clear removes all tracks.
// Load results still in flight are counted but discarded.
func (q *Queue) Clear() {
	hadCurrent := q.currentIndex >= 0
	q.tracks = q.tracks[:0]
	q.bag.Clear()
	q.currentIndex = -1
	q.notifier.Notify(Cleared{})
	if hadCurrent {
		q.notifier.Notify(CurrentTrackChanged{Index: -1})
	}
}

// Move moves the track at from to position to. The cursor follows its track.
func (q *Queue) Move(from, to int) error {
	if err := q.checkIndex(from); err != nil {
		return err
	}
	if err := q.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}

	prevIndex, prevID := q.currentIndex, q.currentID()
	t := q.tracks[from]
	q.tracks = slices.Delete(q.tracks, from, from+1)
	q.tracks = slices.Insert(q.tracks, to, t)
	q.bag.Move(from, to)
	q.currentIndex = movedIndex(q.currentIndex, from, to)

	q.notifier.Notify(TrackMoved{From: from, To: to})
	q.emitCurrentIfChanged(prevIndex, prevID)
	return nil
}

// JumpTo makes the track at index current.
func (q *Queue) JumpTo(index int) error {
	if err := q.checkIndex(index); err != nil {
		return err
	}
	q.currentIndex = index
	q.notifier.Notify(CurrentTrackChanged{Index: index})
	return nil
}

// SetShuffle enables or disables shuffle.
// Enabling always starts a fresh cycle over every queued track.
func (q *Queue) SetShuffle(enabled bool) {
	if q.shuffle == enabled {
		return
	}
	q.shuffle = enabled
	if enabled {
		q.bag.Reset(len(q.tracks))
	} else {
		q.bag.Clear()
	}
	q.notifier.Notify(ShuffleChanged{Enabled: enabled})
}

// ToggleShuffle flips shuffle and returns the new state.
func (q *Queue) ToggleShuffle() bool {
	q.SetShuffle(!q.shuffle)
	return q.shuffle
}

// SetRepeatMode sets the repeat mode.
func (q *Queue) SetRepeatMode(mode RepeatMode) error {
	if !mode.Valid() {
		return ErrInvalidRepeatMode
	}
	if q.repeatMode == mode {
		return nil
	}
	q.repeatMode = mode
	q.notifier.Notify(RepeatModeChanged{Mode: mode})
	return nil
}

// CycleRepeatMode advances Off → All → One → Off and returns the new mode.
func (q *Queue) CycleRepeatMode() RepeatMode {
	q.repeatMode = q.repeatMode.Next()
	q.notifier.Notify(RepeatModeChanged{Mode: q.repeatMode})
	return q.repeatMode
}

func (q *Queue) checkIndex(index int) error {
	if index < 0 || index >= len(q.tracks) {
		return indexError(index, len(q.tracks))
	}
	return nil
}

func (q *Queue) currentID() string {
	if q.currentIndex < 0 {
		return ""
	}
	return q.tracks[q.currentIndex].ID
}

func (q *Queue) indexOfID(id string) int {
	return slices.IndexFunc(q.tracks, func(t Track) bool {
		return t.ID == id
	})
}

// emitCurrentIfChanged notifies when the cursor moved or now denotes a
// different record.
func (q *Queue) emitCurrentIfChanged(prevIndex int, prevID string) {
	if q.currentIndex != prevIndex || q.currentID() != prevID {
		q.notifier.Notify(CurrentTrackChanged{Index: q.currentIndex})
	}
}

// Snapshot is a full copy of the queue state.
type Snapshot struct {
	Tracks       []Track
	CurrentIndex int
	Shuffle      bool
	RepeatMode   RepeatMode
	NotPlayed    []int // nil starts a fresh cycle on Restore
}

// Snapshot returns a copy of the whole queue state.
func (q *Queue) Snapshot() Snapshot {
	s := Snapshot{
		Tracks:       q.Tracks(),
		CurrentIndex: q.currentIndex,
		Shuffle:      q.shuffle,
		RepeatMode:   q.repeatMode,
	}
	if q.shuffle {
		s.NotPlayed = append([]int{}, q.bag.Indices()...)
	}
	return s
}

// Restore replaces the whole queue state with s.
// Tracks still marked pending are submitted to the loader again.
func (q *Queue) Restore(s Snapshot) error {
	switch {
	case len(s.Tracks) == 0 && s.CurrentIndex != -1:
		return indexError(s.CurrentIndex, 0)
	case len(s.Tracks) > 0 && (s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Tracks)):
		return indexError(s.CurrentIndex, len(s.Tracks))
	case !s.RepeatMode.Valid():
		return ErrInvalidRepeatMode
	}

	q.Clear()
	q.tracks = slices.Clone(s.Tracks)
	for i := range q.tracks {
		if q.tracks[i].ID == "" {
			q.tracks[i].ID = uuid.NewString()
		}
	}
	q.currentIndex = s.CurrentIndex

	if len(q.tracks) > 0 {
		q.notifier.Notify(TracksAdded{Start: 0, Count: len(q.tracks)})
		q.notifier.Notify(CurrentTrackChanged{Index: q.currentIndex})
	}

	if s.Shuffle != q.shuffle {
		q.shuffle = s.Shuffle
		q.notifier.Notify(ShuffleChanged{Enabled: s.Shuffle})
	}
	if q.shuffle {
		if s.NotPlayed == nil {
			q.bag.Reset(len(q.tracks))
		} else {
			q.bag.Add(lo.Filter(s.NotPlayed, func(i, _ int) bool {
				return i >= 0 && i < len(q.tracks)
			})...)
		}
	}
	if err := q.SetRepeatMode(s.RepeatMode); err != nil {
		return err
	}

	q.submit(lo.Filter(q.tracks, func(t Track, _ int) bool { return t.Pending }))
	return nil
}
