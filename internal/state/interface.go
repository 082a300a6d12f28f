package state

import "context"

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	SaveQueue(ctx context.Context, s QueueState) error
	ScheduleSave(s QueueState)
	GetQueue(ctx context.Context) (*QueueState, error)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
