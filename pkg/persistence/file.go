// Package persistence provides checkpoint/event-log stores implementing the
// core.CheckpointStore contract: a JSON file store and a SQLite store. The
// checkpoint is rewritten whole on each save; events are append-only.
package persistence

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
	"github.com/XiaoConstantine/gepa-go/pkg/errors"
	"github.com/XiaoConstantine/gepa-go/pkg/logging"
)

const (
	checkpointFileName = "checkpoint.json"
	eventsFileName     = "events.jsonl"
)

// FileStore persists run state as a JSON checkpoint file plus a JSONL event
// log inside one directory.
type FileStore struct {
	dir    string
	logger *logging.Logger
}

// NewFileStore creates the directory if needed and returns a store rooted at
// it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, errors.CheckpointFailed, "creating checkpoint directory")
	}
	return &FileStore{dir: dir, logger: logging.GetLogger()}, nil
}

// SaveCheckpoint overwrites the checkpoint file with the full run state. The
// write goes through a temp file and rename so a crash never leaves a
// truncated checkpoint behind.
func (s *FileStore) SaveCheckpoint(ctx context.Context, state *core.RunState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, errors.CheckpointFailed, "encoding run state")
	}

	path := filepath.Join(s.dir, checkpointFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, errors.CheckpointFailed, "writing checkpoint")
	}
	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, errors.CheckpointFailed, "replacing checkpoint")
	}
	return nil
}

// LoadCheckpoint reads the checkpoint file. A missing or unparsable file is
// not an error: it is reported as "no checkpoint" and the run starts fresh.
func (s *FileStore) LoadCheckpoint(ctx context.Context) (*core.RunState, bool, error) {
	path := filepath.Join(s.dir, checkpointFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn(ctx, "checkpoint unreadable, starting fresh: %v", err)
		}
		return nil, false, nil
	}

	var state core.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn(ctx, "checkpoint unparsable, starting fresh: %v", err)
		return nil, false, nil
	}
	return &state, true, nil
}

// AppendEvent appends one JSON line to the event log.
func (s *FileStore) AppendEvent(ctx context.Context, event core.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, errors.EventLogFailed, "encoding event")
	}

	f, err := os.OpenFile(filepath.Join(s.dir, eventsFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, errors.EventLogFailed, "opening event log")
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.Wrap(err, errors.EventLogFailed, "appending event")
	}
	return nil
}
