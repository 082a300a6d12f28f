package queue

// LoadRequest asks a loader to resolve one pending track.
type LoadRequest struct {
	ID      string
	Locator string
}

// LoadResult answers a LoadRequest. A non-nil Err means nothing could be
// resolved; the track keeps its placeholder fields.
type LoadResult struct {
	ID       string
	Locator  string
	Metadata Metadata
	Err      error
}

// Loader resolves track metadata asynchronously.
//
// Load must not block. Every request must eventually be answered exactly once
// through deliver, in any order and from any goroutine.
type Loader interface {
	Load(reqs []LoadRequest, deliver func(LoadResult))
}

// IsAddingTracks reports whether load results are still expected.
func (q *Queue) IsAddingTracks() bool {
	return q.adding
}

// submit registers tracks as awaited and hands them to the loader.
func (q *Queue) submit(tracks []Track) {
	if q.loader == nil || len(tracks) == 0 {
		return
	}

	reqs := make([]LoadRequest, len(tracks))
	for i, t := range tracks {
		reqs[i] = LoadRequest{ID: t.ID, Locator: t.Locator}
		q.awaiting[t.ID] = struct{}{}
	}
	if !q.adding {
		q.adding = true
		q.notifier.Notify(AddingTracksChanged{Adding: true})
	}

	q.loader.Load(reqs, q.deliver)
}

// ApplyResult applies a load result to the record it was requested for.
//
// Records are matched by ID, never by position. Results for records removed
// in the meantime are counted and dropped; unknown or repeated IDs are
// ignored. When the last awaited result arrives AddingTracksChanged{false}
// is emitted.
func (q *Queue) ApplyResult(res LoadResult) {
	if _, ok := q.awaiting[res.ID]; !ok {
		return
	}
	delete(q.awaiting, res.ID)

	if i := q.indexOfID(res.ID); i >= 0 {
		t := &q.tracks[i]
		prevArtwork := t.Artwork
		if res.Err != nil {
			t.Pending = false
		} else {
			t.ApplyMetadata(res.Metadata)
		}
		q.notifier.Notify(TrackUpdated{Index: i})
		if i == q.currentIndex && t.Artwork != prevArtwork {
			q.notifier.Notify(MediaArtChanged{Index: i})
		}
	}

	if len(q.awaiting) == 0 && q.adding {
		q.adding = false
		q.notifier.Notify(AddingTracksChanged{Adding: false})
	}
}
