package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/v0xg/puppetrec/internal/recording"
	_ "modernc.org/sqlite" // CGO-free SQLite
)

var (
	// ErrNotFound is returned when no recording has the requested id.
	ErrNotFound = errors.New("recording not found")
	// ErrNoEvents is returned when saving a recording without events.
	ErrNoEvents = errors.New("recording has no events")
)

// Recording is a stored event list.
type Recording struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"createdAt"`
	Events    []recording.Event `json:"events,omitempty"`
}

// Summary describes a recording without its events.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	EventCount int       `json:"eventCount"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the recordings database at path.
func Open(path string) (*Store, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS recordings(
	  id          TEXT    PRIMARY KEY,
	  name        TEXT    NOT NULL,
	  created_at  INTEGER NOT NULL,
	  event_count INTEGER NOT NULL,
	  events_json TEXT    NOT NULL CHECK (json_valid(events_json))
	);
	CREATE INDEX IF NOT EXISTS idx_recordings_created ON recordings(created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores events under a new id.
func (s *Store) Save(ctx context.Context, name string, events []recording.Event) (Recording, error) {
	if len(events) == 0 {
		return Recording{}, ErrNoEvents
	}

	data, err := json.Marshal(events)
	if err != nil {
		return Recording{}, fmt.Errorf("failed to marshal events: %w", err)
	}

	rec := Recording{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
		Events:    events,
	}
	if rec.Name == "" {
		rec.Name = "recording " + rec.ID[:8]
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO recordings(id, name, created_at, event_count, events_json) VALUES(?,?,?,?,json(?))`,
		rec.ID, rec.Name, rec.CreatedAt.UnixMilli(), len(events), string(data))
	if err != nil {
		return Recording{}, fmt.Errorf("failed to insert recording: %w", err)
	}
	return rec, nil
}

// Get returns the recording with id, including its events.
func (s *Store) Get(ctx context.Context, id string) (Recording, error) {
	var (
		rec       Recording
		createdAt int64
		data      string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, events_json FROM recordings WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Name, &createdAt, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Recording{}, ErrNotFound
	}
	if err != nil {
		return Recording{}, fmt.Errorf("failed to query recording: %w", err)
	}

	if err := json.Unmarshal([]byte(data), &rec.Events); err != nil {
		return Recording{}, fmt.Errorf("failed to decode events of %s: %w", id, err)
	}
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return rec, nil
}

// List returns all recordings, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, event_count FROM recordings ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	defer rows.Close()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum       Summary
			createdAt int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &createdAt, &sum.EventCount); err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		sum.CreatedAt = time.UnixMilli(createdAt).UTC()
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list recordings: %w", err)
	}
	return summaries, nil
}

// Delete removes the recording with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recording: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
