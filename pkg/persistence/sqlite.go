package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
	"github.com/XiaoConstantine/gepa-go/pkg/errors"
	"github.com/XiaoConstantine/gepa-go/pkg/logging"
)

// SQLiteStore persists run state in a SQLite database: a single-row
// checkpoint table replaced on each save and an append-only events table.
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CheckpointFailed, "opening sqlite database")
	}

	store := &SQLiteStore{db: db, logger: logging.GetLogger()}
	if err := store.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	// WAL keeps event appends cheap while a checkpoint write is in flight.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		store.logger.Warn(context.Background(), "failed to enable WAL mode: %v", err)
	}

	return store, nil
}

func (s *SQLiteStore) initDB() error {
	schema := `
	CREATE TABLE IF NOT EXISTS checkpoint (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		state TEXT NOT NULL,
		saved_at TIMESTAMP NOT NULL
	);
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		ts TIMESTAMP NOT NULL,
		iteration INTEGER NOT NULL,
		kind TEXT NOT NULL,
		data TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_events_iteration ON events(iteration);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.Wrap(err, errors.CheckpointFailed, "initializing sqlite schema")
	}
	return nil
}

// SaveCheckpoint replaces the single checkpoint row with the full run state.
func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, state *core.RunState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, errors.CheckpointFailed, "encoding run state")
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO checkpoint (id, state, saved_at) VALUES (1, ?, ?)",
		string(data), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, errors.CheckpointFailed, "writing checkpoint row")
	}
	return nil
}

// LoadCheckpoint reads the checkpoint row. A missing row or unparsable state
// is treated as "no checkpoint".
func (s *SQLiteStore) LoadCheckpoint(ctx context.Context) (*core.RunState, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT state FROM checkpoint WHERE id = 1").Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logger.Warn(ctx, "checkpoint row unreadable, starting fresh: %v", err)
		}
		return nil, false, nil
	}

	var state core.RunState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		s.logger.Warn(ctx, "checkpoint row unparsable, starting fresh: %v", err)
		return nil, false, nil
	}
	return &state, true, nil
}

// AppendEvent inserts one event row.
func (s *SQLiteStore) AppendEvent(ctx context.Context, event core.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	var data []byte
	if event.Data != nil {
		var err error
		data, err = json.Marshal(event.Data)
		if err != nil {
			return errors.Wrap(err, errors.EventLogFailed, "encoding event data")
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, ts, iteration, kind, data) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Timestamp, event.Iteration, string(event.Kind), string(data))
	if err != nil {
		return errors.Wrap(err, errors.EventLogFailed, "inserting event row")
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
