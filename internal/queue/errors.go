package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when an index is outside [0, Len()).
	ErrIndexOutOfRange = errors.New("queue index out of range")
	// ErrEmptyQueue is returned by navigation on an empty queue.
	ErrEmptyQueue = errors.New("queue is empty")
	// ErrInvalidRepeatMode is returned for an unknown repeat mode.
	ErrInvalidRepeatMode = errors.New("invalid repeat mode")
)

func indexError(index, length int) error {
	return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, length)
}
