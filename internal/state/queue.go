package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	dbutil "github.com/llehouerou/unplayer/internal/db"
)

// QueueTrack is one saved queue entry. Empty Artist or Album means the value
// was never resolved; an empty Title marks the entry for loading again.
type QueueTrack struct {
	Locator  string
	Title    string
	Artist   string
	Album    string
	Duration time.Duration
	Artwork  string
}

// QueueState is the saved queue.
type QueueState struct {
	CurrentIndex int
	RepeatMode   int
	Shuffle      bool
	NotPlayed    []int // nil when no shuffle cycle was saved
	SavedAt      time.Time
	Tracks       []QueueTrack
}

func getQueue(ctx context.Context, db *sql.DB) (*QueueState, error) {
	var (
		s         QueueState
		notPlayed sql.NullString
		savedAt   int64
	)
	row := db.QueryRowContext(ctx, `
		SELECT current_index, repeat_mode, shuffle, not_played, saved_at
		FROM queue_state WHERE id = 1
	`)
	err := row.Scan(&s.CurrentIndex, &s.RepeatMode, &s.Shuffle, &notPlayed, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if savedAt > 0 {
		s.SavedAt = time.UnixMilli(savedAt)
	}
	if notPlayed.Valid {
		if err := json.Unmarshal([]byte(notPlayed.String), &s.NotPlayed); err != nil {
			return nil, fmt.Errorf("decode shuffle cycle: %w", err)
		}
	}

	rows, err := db.QueryContext(ctx, `
		SELECT locator, title, artist, album, duration_ms, artwork
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t                      QueueTrack
			artist, album, artwork sql.NullString
			durationMS             int64
		)
		if err := rows.Scan(&t.Locator, &t.Title, &artist, &album, &durationMS, &artwork); err != nil {
			return nil, err
		}
		t.Artist = dbutil.NullStringValue(artist)
		t.Album = dbutil.NullStringValue(album)
		t.Artwork = dbutil.NullStringValue(artwork)
		t.Duration = time.Duration(durationMS) * time.Millisecond
		s.Tracks = append(s.Tracks, t)
	}
	return &s, rows.Err()
}

func saveQueue(ctx context.Context, db *sql.DB, s QueueState) error {
	var notPlayed any
	if s.NotPlayed != nil {
		data, err := json.Marshal(s.NotPlayed)
		if err != nil {
			return err
		}
		notPlayed = string(data)
	}

	return dbutil.WithTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO queue_state (id, current_index, repeat_mode, shuffle, not_played, saved_at)
			VALUES (1, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle,
				not_played = excluded.not_played,
				saved_at = excluded.saved_at
		`, s.CurrentIndex, s.RepeatMode, s.Shuffle, notPlayed, s.SavedAt.UnixMilli())
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO queue_tracks (position, locator, title, artist, album, duration_ms, artwork)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range s.Tracks {
			_, err := stmt.ExecContext(ctx, i, t.Locator, t.Title,
				nullable(t.Artist), nullable(t.Album), t.Duration.Milliseconds(), nullable(t.Artwork))
			if err != nil {
				return fmt.Errorf("save track %d: %w", i, err)
			}
		}
		return nil
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
