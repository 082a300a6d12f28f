package state

import "github.com/llehouerou/unplayer/internal/queue"

// FromSnapshot converts a queue snapshot into its saved form.
func FromSnapshot(s queue.Snapshot) QueueState {
	out := QueueState{
		CurrentIndex: s.CurrentIndex,
		RepeatMode:   int(s.RepeatMode),
		Shuffle:      s.Shuffle,
		NotPlayed:    s.NotPlayed,
		Tracks:       make([]QueueTrack, len(s.Tracks)),
	}
	for i, t := range s.Tracks {
		qt := QueueTrack{
			Locator:  t.Locator,
			Title:    t.Title,
			Duration: t.Duration,
			Artwork:  t.Artwork,
		}
		if t.ArtistKnown {
			qt.Artist = t.Artist
		}
		if t.AlbumKnown {
			qt.Album = t.Album
		}
		if t.Pending {
			qt.Title = ""
		}
		out.Tracks[i] = qt
	}
	return out
}

// Snapshot converts the saved form back into a queue snapshot. Entries
// without a title come back pending so that they are loaded again.
func (s QueueState) Snapshot() queue.Snapshot {
	out := queue.Snapshot{
		CurrentIndex: s.CurrentIndex,
		Shuffle:      s.Shuffle,
		RepeatMode:   queue.RepeatMode(s.RepeatMode),
		NotPlayed:    s.NotPlayed,
		Tracks:       make([]queue.Track, len(s.Tracks)),
	}
	if len(s.Tracks) == 0 {
		out.CurrentIndex = -1
	}
	for i, saved := range s.Tracks {
		t := queue.NewTrack(saved.Locator)
		if saved.Title != "" {
			t.ApplyMetadata(queue.Metadata{
				Title:    saved.Title,
				Artist:   saved.Artist,
				Album:    saved.Album,
				Duration: saved.Duration,
				Artwork:  saved.Artwork,
			})
		}
		out.Tracks[i] = t
	}
	return out
}
