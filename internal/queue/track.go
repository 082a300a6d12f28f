package queue

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Placeholder values used until a loader resolves the real ones.
const (
	UnknownArtist = "Unknown artist"
	UnknownAlbum  = "Unknown album"
)

// Track is a single queued item.
// Fields are only written by NewTrack and ApplyMetadata.
type Track struct {
	ID       string // stable per-record identifier, assigned at enqueue
	Locator  string // file path or URL used for playback
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Artwork  string // artwork handle (e.g. cached image path), empty if none

	ArtistKnown bool // false while Artist holds the placeholder
	AlbumKnown  bool // false while Album holds the placeholder
	Pending     bool // true until the loader has answered for this record
}

// NewTrack creates a pending record for a locator.
func NewTrack(locator string) Track {
	return Track{
		ID:      uuid.NewString(),
		Locator: locator,
		Artist:  UnknownArtist,
		Album:   UnknownAlbum,
		Pending: true,
	}
}

// Metadata is what a loader resolved for a locator.
type Metadata struct {
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Artwork  string
}

// ApplyMetadata fills the record from a resolved result.
// Missing artist or album keep their placeholders.
func (t *Track) ApplyMetadata(m Metadata) {
	t.Title = m.Title
	if t.Title == "" {
		t.Title = filepath.Base(t.Locator)
	}

	t.Artist, t.ArtistKnown = m.Artist, m.Artist != ""
	if !t.ArtistKnown {
		t.Artist = UnknownArtist
	}
	t.Album, t.AlbumKnown = m.Album, m.Album != ""
	if !t.AlbumKnown {
		t.Album = UnknownAlbum
	}

	t.Duration = max(m.Duration, 0)
	t.Artwork = m.Artwork
	t.Pending = false
}

// DurationSeconds returns the duration truncated to whole seconds.
func (t *Track) DurationSeconds() int {
	return int(t.Duration / time.Second)
}

// DisplayTitle returns the title, or the locator's base name when unset.
func (t *Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return filepath.Base(t.Locator)
}
