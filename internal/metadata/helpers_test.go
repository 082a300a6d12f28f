package metadata

import (
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
)

var jpegStub = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

type id3Fields struct {
	title, artist, album string
	picture              []byte
}

// writeMP3 creates a single-frame MP3 (MPEG1 Layer3, 128kbps, 44100Hz) with
// an ID3v2.4 tag.
func writeMP3(t *testing.T, dir, name string, f id3Fields) string {
	t.Helper()
	path := filepath.Join(dir, name)
	frame := make([]byte, 417)
	frame[0], frame[1], frame[2] = 0xff, 0xfb, 0x90
	if err := os.WriteFile(path, frame, 0o600); err != nil {
		t.Fatalf("write mp3: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("open id3: %v", err)
	}
	defer tag.Close()
	tag.SetVersion(4)
	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetTitle(f.title)
	tag.SetArtist(f.artist)
	tag.SetAlbum(f.album)
	if f.picture != nil {
		tag.AddAttachedPicture(id3v2.PictureFrame{
			Encoding:    id3v2.EncodingUTF8,
			MimeType:    "image/jpeg",
			PictureType: id3v2.PTFrontCover,
			Description: "Front cover",
			Picture:     f.picture,
		})
	}
	if err := tag.Save(); err != nil {
		t.Fatalf("save id3: %v", err)
	}
	return path
}

// oggPage builds one Ogg page holding a single packet shorter than 255 bytes.
func oggPage(granule uint64, packet []byte) []byte {
	page := make([]byte, oggPageHeaderSize, oggPageHeaderSize+1+len(packet))
	copy(page, oggMagic)
	binary.LittleEndian.PutUint64(page[6:14], granule)
	page[26] = 1
	page = append(page, byte(len(packet)))
	return append(page, packet...)
}

func opusHead(preSkip uint16) []byte {
	p := make([]byte, 19)
	copy(p, "OpusHead")
	p[8], p[9] = 1, 2
	binary.LittleEndian.PutUint16(p[10:12], preSkip)
	binary.LittleEndian.PutUint32(p[12:16], 44100)
	return p
}

func vorbisIdent(rate uint32) []byte {
	p := make([]byte, 30)
	copy(p, "\x01vorbis")
	p[11] = 2
	binary.LittleEndian.PutUint32(p[12:16], rate)
	return p
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
