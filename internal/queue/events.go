package queue

// Event is a notification emitted by the Queue after a mutation.
//
// Consumers can rebuild the whole queue from a Snapshot followed by the event
// stream: every mutation is described by exactly one structural event
// (TracksAdded, TrackRemoved, TracksRemoved, TrackMoved, Cleared,
// TrackUpdated) plus, when the cursor moved or now denotes another track, a
// CurrentTrackChanged.
type Event interface {
	queueEvent()
}

// CurrentTrackChanged is emitted when the current index or the track it
// denotes changes. It is also emitted when the same track is started again
// (RepeatOne, Next on a single-track queue).
type CurrentTrackChanged struct {
	Index int
}

// TracksAdded is emitted after tracks are appended starting at Start.
type TracksAdded struct {
	Start int
	Count int
}

// TrackRemoved is emitted after the track at Index is removed.
type TrackRemoved struct {
	Index int
}

// TracksRemoved is emitted after a batch removal.
// Indexes are the positions before the removal, ascending.
type TracksRemoved struct {
	Indexes []int
}

// TrackMoved is emitted after the track at From moved to To.
type TrackMoved struct {
	From int
	To   int
}

// Cleared is emitted when the queue is emptied.
type Cleared struct{}

// ShuffleChanged is emitted when shuffle is toggled.
type ShuffleChanged struct {
	Enabled bool
}

// RepeatModeChanged is emitted when the repeat mode changes.
type RepeatModeChanged struct {
	Mode RepeatMode
}

// TrackUpdated is emitted when a load result was applied to the track at Index.
type TrackUpdated struct {
	Index int
}

// MediaArtChanged is emitted when the current track's artwork changed.
type MediaArtChanged struct {
	Index int
}

// AddingTracksChanged is emitted when the queue starts or finishes waiting
// for load results.
type AddingTracksChanged struct {
	Adding bool
}

func (CurrentTrackChanged) queueEvent() {}
func (TracksAdded) queueEvent()         {}
func (TrackRemoved) queueEvent()        {}
func (TracksRemoved) queueEvent()       {}
func (TrackMoved) queueEvent()          {}
func (Cleared) queueEvent()             {}
func (ShuffleChanged) queueEvent()      {}
func (RepeatModeChanged) queueEvent()   {}
func (TrackUpdated) queueEvent()        {}
func (MediaArtChanged) queueEvent()     {}
func (AddingTracksChanged) queueEvent() {}

// Notifier receives queue events synchronously, on the goroutine that
// mutated the queue.
type Notifier interface {
	Notify(e Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(e Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) { f(e) }

type discardNotifier struct{}

func (discardNotifier) Notify(Event) {}
