package session

import "github.com/llehouerou/unplayer/internal/queue"

const eventBufferSize = 64

// Subscription delivers queue events to one subscriber.
type Subscription struct {
	Events <-chan queue.Event
	Done   <-chan struct{}

	eventsCh chan queue.Event
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		eventsCh: make(chan queue.Event, eventBufferSize),
		doneCh:   make(chan struct{}),
	}
	s.Events = s.eventsCh
	s.Done = s.doneCh
	return s
}

// close signals the subscriber to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// send delivers an event without blocking. Returns false when the buffer is full.
func (s *Subscription) send(e queue.Event) bool {
	select {
	case s.eventsCh <- e:
		return true
	default:
		return false
	}
}
