package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goflac "github.com/go-flac/go-flac"
	"github.com/gopxl/beep/v2/flac"
	"github.com/llehouerou/go-m4a"
	"github.com/llehouerou/go-mp3"
)

// ErrUnsupportedFormat is returned for files whose length cannot be probed.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Duration probes the stream length of a music file without decoding it fully.
func Duration(path string) (time.Duration, error) {
	switch ext(path) {
	case ExtMP3:
		return withFile(path, mp3Duration)
	case ExtFLAC:
		return flacDuration(path)
	case ExtOPUS, ExtOGG, ExtOGA:
		return withFile(path, oggDuration)
	case ExtM4A, ExtMP4:
		return withFile(path, m4aDuration)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext(path))
	}
}

func withFile(path string, fn func(*os.File) (time.Duration, error)) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return fn(f)
}

func samplesToDuration(samples int64, rate int) time.Duration {
	if rate <= 0 || samples <= 0 {
		return 0
	}
	return time.Duration(float64(samples) / float64(rate) * float64(time.Second))
}

func mp3Duration(f *os.File) (time.Duration, error) {
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("mp3: %w", err)
	}
	if d.SampleRate() == 0 {
		return 0, errors.New("mp3: invalid sample rate")
	}
	return samplesToDuration(int64(d.SampleCount()), d.SampleRate()), nil
}

// flacDuration reads STREAMINFO, falling back to beep's decoder for files
// go-flac rejects (typically those with a prepended ID3 tag).
func flacDuration(path string) (time.Duration, error) {
	file, err := goflac.ParseFile(path)
	if err == nil {
		for _, meta := range file.Meta {
			if meta.Type == goflac.StreamInfo {
				if d, ok := parseStreamInfo(meta.Data); ok {
					return d, nil
				}
			}
		}
	}
	return withFile(path, beepFLACDuration)
}

// parseStreamInfo decodes the sample rate (20 bits) and total sample count
// (36 bits) packed at bytes 10..17 of a STREAMINFO block.
func parseStreamInfo(data []byte) (time.Duration, bool) {
	if len(data) < 18 {
		return 0, false
	}
	packed := binary.BigEndian.Uint64(data[10:18])
	rate := int(packed >> 44)
	total := int64(packed & (1<<36 - 1))
	if rate == 0 {
		return 0, false
	}
	return samplesToDuration(total, rate), true
}

func beepFLACDuration(f *os.File) (time.Duration, error) {
	if err := skipID3v2(f); err != nil {
		return 0, err
	}
	streamer, format, err := flac.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("flac: %w", err)
	}
	defer streamer.Close()
	return format.SampleRate.D(streamer.Len()), nil
}

// skipID3v2 positions r after a leading ID3v2 tag, or at the start if none.
func skipID3v2(r io.ReadSeeker) error {
	var header [10]byte
	if _, err := io.ReadFull(r, header[:]); err != nil || string(header[:3]) != "ID3" {
		_, serr := r.Seek(0, io.SeekStart)
		return serr
	}
	// syncsafe size: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err := r.Seek(10+size, io.SeekStart)
	return err
}

func m4aDuration(f *os.File) (time.Duration, error) {
	c, err := m4a.Open(f)
	if err != nil {
		return 0, fmt.Errorf("m4a: %w", err)
	}
	return c.Duration(), nil
}

const (
	oggPageHeaderSize = 27
	oggProbeSize      = 64 << 10
	opusRate          = 48000
)

var oggMagic = []byte("OggS")

// oggDuration derives the length from the granule position of the last page.
// The codec header on the first page gives the sample rate (Vorbis) or the
// pre-skip to subtract (Opus).
func oggDuration(f *os.File) (time.Duration, error) {
	head := make([]byte, oggProbeSize)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, fmt.Errorf("ogg: %w", err)
	}
	rate, preSkip, err := oggCodecInfo(head[:n])
	if err != nil {
		return 0, err
	}

	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	tailSize := min(int64(oggProbeSize), fi.Size())
	tail := make([]byte, tailSize)
	if _, err := f.ReadAt(tail, fi.Size()-tailSize); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("ogg: %w", err)
	}

	granule, ok := lastGranule(tail)
	if !ok {
		return 0, errors.New("ogg: could not determine duration")
	}
	return samplesToDuration(granule-preSkip, rate), nil
}

func oggCodecInfo(buf []byte) (rate int, preSkip int64, err error) {
	if !bytes.HasPrefix(buf, oggMagic) || len(buf) < oggPageHeaderSize {
		return 0, 0, errors.New("ogg: missing page header")
	}
	segments := int(buf[26])
	start := oggPageHeaderSize + segments
	if len(buf) < start {
		return 0, 0, errors.New("ogg: truncated page")
	}
	packet := buf[start:]

	switch {
	case bytes.HasPrefix(packet, []byte("OpusHead")) && len(packet) >= 12:
		return opusRate, int64(binary.LittleEndian.Uint16(packet[10:12])), nil
	case bytes.HasPrefix(packet, []byte("\x01vorbis")) && len(packet) >= 16:
		return int(binary.LittleEndian.Uint32(packet[12:16])), 0, nil
	default:
		return 0, 0, errors.New("ogg: unknown codec")
	}
}

func lastGranule(buf []byte) (int64, bool) {
	for end := len(buf); end > 0; {
		i := bytes.LastIndex(buf[:end], oggMagic)
		if i < 0 {
			return 0, false
		}
		if i+14 <= len(buf) {
			g := int64(binary.LittleEndian.Uint64(buf[i+6 : i+14]))
			if g > 0 {
				return g, true
			}
		}
		end = i
	}
	return 0, false
}
