// Package state persists the queue between runs in a SQLite database.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName      = "unplayer"
	dbFileName   = "state.db"
	saveDebounce = 500 * time.Millisecond
)

// Manager owns the state database.
type Manager struct {
	db        *sql.DB
	writeMu   sync.Mutex // orders immediate and scheduled writes
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *QueueState
	now       func() time.Time
}

// DefaultPath returns the database location under the XDG data home.
func DefaultPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}

// Open opens (creating if needed) the database at path. An empty path uses
// DefaultPath; ":memory:" opens a private in-memory database.
func Open(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve state path: %w", err)
		}
		path = p
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one connection keeps ":memory:" databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Manager{db: db, now: time.Now}, nil
}

// SaveQueue writes the queue state immediately, replacing any saved one.
// A scheduled save that has not run yet is dropped.
func (m *Manager) SaveQueue(ctx context.Context, s QueueState) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.takePending()
	return m.save(ctx, s)
}

func (m *Manager) save(ctx context.Context, s QueueState) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = m.now()
	}
	return saveQueue(ctx, m.db, s)
}

// ScheduleSave saves s after a short delay. Calls within the delay coalesce
// into one write of the latest state; Close flushes what is pending.
func (m *Manager) ScheduleSave(s QueueState) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		_ = m.flush()
	})
}

// flush writes the scheduled state, if any.
func (m *Manager) flush() error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if pending := m.takePending(); pending != nil {
		return m.save(context.Background(), *pending)
	}
	return nil
}

func (m *Manager) takePending() *QueueState {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	p := m.pending
	m.pending = nil
	return p
}

// GetQueue returns the saved queue, or nil if none was ever saved.
func (m *Manager) GetQueue(ctx context.Context) (*QueueState, error) {
	return getQueue(ctx, m.db)
}

// Close flushes a scheduled save and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveMu.Unlock()

	flushErr := m.flush()
	if err := m.db.Close(); err != nil {
		return err
	}
	return flushErr
}
