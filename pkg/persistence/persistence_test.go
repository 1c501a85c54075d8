package persistence

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
)

func sampleState() *core.RunState {
	return &core.RunState{
		Iteration:        4,
		TotalMetricCalls: 37,
		TotalCostUSD:     0.12,
		RNGState:         123456,
		Archive: []core.ArchiveRecord{
			{
				Candidate:   core.NewCandidate(core.Component{Name: "system", Text: "be concise"}),
				Scores:      core.ObjectiveVector{core.ObjectiveCorrectness: 0.75, core.ObjectiveLatency: -42},
				ScalarScore: 0.75,
				ParentIndex: -1,
			},
		},
		InstanceScores: [][]float64{{1, 0.5, 1, 0.5}},
	}
}

func assertStateEqual(t *testing.T, want, got *core.RunState) {
	t.Helper()
	assert.Equal(t, want.Iteration, got.Iteration)
	assert.Equal(t, want.TotalMetricCalls, got.TotalMetricCalls)
	assert.Equal(t, want.TotalCostUSD, got.TotalCostUSD)
	assert.Equal(t, want.RNGState, got.RNGState)
	assert.Equal(t, want.InstanceScores, got.InstanceScores)
	require.Len(t, got.Archive, len(want.Archive))
	for i := range want.Archive {
		assert.True(t, want.Archive[i].Candidate.Equal(got.Archive[i].Candidate))
		assert.Equal(t, want.Archive[i].Scores, got.Archive[i].Scores)
		assert.Equal(t, want.Archive[i].ScalarScore, got.Archive[i].ScalarScore)
		assert.Equal(t, want.Archive[i].ParentIndex, got.Archive[i].ParentIndex)
	}
}

func TestFileStoreCheckpointRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	want := sampleState()
	require.NoError(t, store.SaveCheckpoint(ctx, want))

	got, ok, err := store.LoadCheckpoint(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assertStateEqual(t, want, got)
}

func TestFileStoreMissingCheckpoint(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	state, ok, err := store.LoadCheckpoint(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, state)
}

func TestFileStoreCorruptCheckpointStartsFresh(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, checkpointFileName), []byte("{not json"), 0644))

	state, ok, err := store.LoadCheckpoint(context.Background())
	require.NoError(t, err, "a corrupt checkpoint must degrade to a fresh start, not an error")
	assert.False(t, ok)
	assert.Nil(t, state)
}

func TestFileStoreOverwritesCheckpoint(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	first := sampleState()
	require.NoError(t, store.SaveCheckpoint(ctx, first))

	second := sampleState()
	second.Iteration = 9
	require.NoError(t, store.SaveCheckpoint(ctx, second))

	got, ok, err := store.LoadCheckpoint(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, got.Iteration)
}

func TestFileStoreAppendEvent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	events := []core.Event{
		{Iteration: 0, Kind: core.EventStart},
		{Iteration: 1, Kind: core.EventAccepted, Data: map[string]interface{}{"child_index": 1}},
		{Iteration: 2, Kind: core.EventRejected},
	}
	for _, e := range events {
		require.NoError(t, store.AppendEvent(ctx, e))
	}

	f, err := os.Open(filepath.Join(dir, eventsFileName))
	require.NoError(t, err)
	defer f.Close()

	var read []core.Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e core.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		read = append(read, e)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, read, 3)
	for i, e := range read {
		assert.Equal(t, events[i].Kind, e.Kind)
		assert.Equal(t, events[i].Iteration, e.Iteration)
		assert.NotEmpty(t, e.ID, "store must assign an event ID")
		assert.False(t, e.Timestamp.IsZero())
	}
	assert.Equal(t, float64(1), read[1].Data["child_index"])
}

func TestSQLiteStoreCheckpointRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	want := sampleState()
	require.NoError(t, store.SaveCheckpoint(ctx, want))

	got, ok, err := store.LoadCheckpoint(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assertStateEqual(t, want, got)

	// second save replaces the single row
	want.Iteration = 11
	require.NoError(t, store.SaveCheckpoint(ctx, want))
	got, ok, err = store.LoadCheckpoint(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, got.Iteration)
}

func TestSQLiteStoreMissingCheckpoint(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer store.Close()

	state, ok, err := store.LoadCheckpoint(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, state)
}

func TestSQLiteStoreAppendEvent(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "run.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.AppendEvent(ctx, core.Event{Iteration: 0, Kind: core.EventStart}))
	require.NoError(t, store.AppendEvent(ctx, core.Event{Iteration: 1, Kind: core.EventAccepted}))

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count))
	assert.Equal(t, 2, count)

	var kind string
	require.NoError(t, store.db.QueryRow("SELECT kind FROM events WHERE iteration = 1").Scan(&kind))
	assert.Equal(t, string(core.EventAccepted), kind)
}
