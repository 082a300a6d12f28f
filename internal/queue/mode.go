package queue

import (
	"fmt"
	"strings"
)

// RepeatMode defines what happens when the end of the queue is reached.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is one of the defined modes.
func (m RepeatMode) Valid() bool {
	return m >= RepeatOff && m <= RepeatOne
}

// Next returns the mode that follows m in the Off, All, One cycle.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// ParseRepeatMode parses "off", "all" or "one" (case-insensitive).
// "none" is accepted as an alias for "off".
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none", "":
		return RepeatOff, nil
	case "all":
		return RepeatAll, nil
	case "one":
		return RepeatOne, nil
	default:
		return RepeatOff, fmt.Errorf("%w: %q", ErrInvalidRepeatMode, s)
	}
}
