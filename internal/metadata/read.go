package metadata

import (
	"fmt"
	"os"

	"github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Read reads the tags of a music file.
// dhowden/tag is tried first; files it cannot parse fall back to id3v2
// (MP3) or TagLib (FLAC, Ogg, M4A).
func Read(path string) (*Tags, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err == nil {
		return fromTagMetadata(m), nil
	}

	switch ext(path) {
	case ExtMP3:
		// some UTF-16 ID3 frames trip dhowden/tag
		return readID3v2(path)
	case ExtFLAC, ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4:
		return readTaglib(path)
	}
	return nil, fmt.Errorf("read tags: %w", err)
}

func fromTagMetadata(m tag.Metadata) *Tags {
	track, _ := m.Track()
	disc, _ := m.Disc()
	t := &Tags{
		Title:       m.Title(),
		Artist:      m.Artist(),
		AlbumArtist: m.AlbumArtist(),
		Album:       m.Album(),
		Genre:       m.Genre(),
		TrackNumber: track,
		DiscNumber:  disc,
		Year:        m.Year(),
	}
	if t.Artist == "" {
		t.Artist = t.AlbumArtist
	}
	return t
}

func readID3v2(path string) (*Tags, error) {
	id3tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("read id3v2: %w", err)
	}
	defer id3tag.Close()

	t := &Tags{
		Title:       id3tag.Title(),
		Artist:      id3tag.Artist(),
		AlbumArtist: id3tag.GetTextFrame("TPE2").Text,
		Album:       id3tag.Album(),
		Genre:       id3tag.Genre(),
		TrackNumber: leadingInt(id3tag.GetTextFrame("TRCK").Text),
		DiscNumber:  leadingInt(id3tag.GetTextFrame("TPOS").Text),
		Year:        leadingInt(id3tag.Year()),
	}
	if t.Artist == "" {
		t.Artist = t.AlbumArtist
	}
	return t, nil
}

func readTaglib(path string) (*Tags, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return nil, fmt.Errorf("read taglib: %w", err)
	}
	first := func(key string) string {
		if v := raw[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	t := &Tags{
		Title:       first(taglib.Title),
		Artist:      first(taglib.Artist),
		AlbumArtist: first(taglib.AlbumArtist),
		Album:       first(taglib.Album),
		Genre:       first(taglib.Genre),
		TrackNumber: leadingInt(first(taglib.TrackNumber)),
		DiscNumber:  leadingInt(first(taglib.DiscNumber)),
		Year:        leadingInt(first(taglib.Date)),
	}
	if t.Artist == "" {
		t.Artist = t.AlbumArtist
	}
	return t, nil
}
