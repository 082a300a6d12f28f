package state

import (
	"context"
	"sync"
	"time"
)

// Mock is an in-memory Interface for tests. Scheduled saves are held until
// the next SaveQueue or Close, like the debounced writes of Manager.
type Mock struct {
	mu        sync.Mutex
	queue     *QueueState
	pending   *QueueState
	saves     int
	schedules int
	closed    bool
	Err       error // returned by SaveQueue and GetQueue when set
}

// NewMock creates an empty mock.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SaveQueue(_ context.Context, s QueueState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.pending = nil
	m.store(s)
	return nil
}

func (m *Mock) store(s QueueState) {
	if s.SavedAt.IsZero() {
		s.SavedAt = time.Now()
	}
	m.queue = &s
	m.saves++
}

func (m *Mock) ScheduleSave(s QueueState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = &s
	m.schedules++
}

func (m *Mock) GetQueue(context.Context) (*QueueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.queue, nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending != nil {
		m.store(*m.pending)
		m.pending = nil
	}
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetQueue(s *QueueState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = s
}

func (m *Mock) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Scheduled returns how many times ScheduleSave was called.
func (m *Mock) Scheduled() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.schedules
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
