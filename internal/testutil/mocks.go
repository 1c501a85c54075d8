// Package testutil provides shared test doubles for the contracts in
// pkg/core.
package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
)

// MockAdapter is a mock implementation of core.Adapter.
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Evaluate(ctx context.Context, batch []core.Instance, candidate core.Candidate, captureTraces bool) (*core.EvalBatch, error) {
	args := m.Called(ctx, batch, candidate, captureTraces)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.EvalBatch), args.Error(1)
}

func (m *MockAdapter) MakeReflectiveDataset(ctx context.Context, candidate core.Candidate, eval *core.EvalBatch, batch []core.Instance, components []string) (core.ReflectiveDataset, error) {
	args := m.Called(ctx, candidate, eval, batch, components)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(core.ReflectiveDataset), args.Error(1)
}

// MockProposerAdapter additionally implements core.Proposer.
type MockProposerAdapter struct {
	MockAdapter
}

func (m *MockProposerAdapter) ProposeNewTexts(ctx context.Context, candidate core.Candidate, dataset core.ReflectiveDataset, components []string) (core.Candidate, error) {
	args := m.Called(ctx, candidate, dataset, components)
	return args.Get(0).(core.Candidate), args.Error(1)
}

// MockReflectionLM is a mock implementation of core.ReflectionLM.
type MockReflectionLM struct {
	mock.Mock
}

func (m *MockReflectionLM) Reflect(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockCheckpointStore is a mock implementation of core.CheckpointStore.
type MockCheckpointStore struct {
	mock.Mock
}

func (m *MockCheckpointStore) SaveCheckpoint(ctx context.Context, state *core.RunState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockCheckpointStore) LoadCheckpoint(ctx context.Context) (*core.RunState, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*core.RunState), args.Bool(1), args.Error(2)
}

func (m *MockCheckpointStore) AppendEvent(ctx context.Context, event core.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MemoryStore is a deterministic in-memory core.CheckpointStore for resume
// tests: it keeps the latest checkpoint and every appended event.
type MemoryStore struct {
	mu     sync.Mutex
	state  *core.RunState
	Events []core.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveCheckpoint(ctx context.Context, state *core.RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Clone()
	return nil
}

func (s *MemoryStore) LoadCheckpoint(ctx context.Context) (*core.RunState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, false, nil
	}
	return s.state.Clone(), true, nil
}

func (s *MemoryStore) AppendEvent(ctx context.Context, event core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return nil
}

// ScriptedLM returns canned responses in order, repeating the last one when
// the script runs out.
type ScriptedLM struct {
	mu        sync.Mutex
	Responses []string
	Calls     []string
}

func (s *ScriptedLM) Reflect(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, prompt)
	if len(s.Responses) == 0 {
		return "", nil
	}
	idx := len(s.Calls) - 1
	if idx >= len(s.Responses) {
		idx = len(s.Responses) - 1
	}
	return s.Responses[idx], nil
}
