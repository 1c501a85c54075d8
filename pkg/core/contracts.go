package core

import (
	"context"
	"time"
)

// Instance is one training or validation example, as free-form named fields.
type Instance map[string]interface{}

// InstanceMetrics carries optional per-instance measurements reported by an
// adapter alongside the primary score.
type InstanceMetrics struct {
	LatencyMS float64 `json:"latency_ms"`
	CostUSD   float64 `json:"cost_usd"`
}

// Trajectory is the captured execution trace of a single instance, used to
// build reflective feedback. Contents are adapter-defined; a failed instance
// carries an "error" entry.
type Trajectory map[string]interface{}

// EvalBatch is the result of evaluating a batch of instances against one
// candidate. Outputs, Scores and (when present) Metrics and Trajectories are
// parallel to the input batch: same length, same order, no instance skipped.
type EvalBatch struct {
	Outputs []interface{} `json:"outputs"`
	Scores  []float64     `json:"scores"`
	// Metrics is optional; nil means the adapter reports no latency/cost.
	Metrics []InstanceMetrics `json:"metrics,omitempty"`
	// Trajectories is populated only when traces were requested.
	Trajectories []Trajectory `json:"trajectories,omitempty"`
}

// MeanScore returns the mean of the per-instance scores, 0 for an empty batch.
func (e *EvalBatch) MeanScore() float64 {
	if len(e.Scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range e.Scores {
		sum += s
	}
	return sum / float64(len(e.Scores))
}

// SumScore returns the sum of the per-instance scores.
func (e *EvalBatch) SumScore() float64 {
	var sum float64
	for _, s := range e.Scores {
		sum += s
	}
	return sum
}

// ReflectiveExample is one feedback example shown to the reflection model,
// as free-form named fields (typically inputs, generated output, feedback).
type ReflectiveExample map[string]interface{}

// ReflectiveDataset maps component name to the feedback examples gathered for
// that component from a traced evaluation.
type ReflectiveDataset map[string][]ReflectiveExample

// Adapter connects the optimizer to the system under optimization. Evaluate
// must score every instance: per-instance failures are represented as a zero
// score with an error marker in the trajectory, never as a batch error.
type Adapter interface {
	Evaluate(ctx context.Context, batch []Instance, candidate Candidate, captureTraces bool) (*EvalBatch, error)
	MakeReflectiveDataset(ctx context.Context, candidate Candidate, eval *EvalBatch, batch []Instance, components []string) (ReflectiveDataset, error)
}

// Proposer is optionally implemented by adapters that want to take over the
// whole mutation step instead of the default per-component reflection loop.
type Proposer interface {
	ProposeNewTexts(ctx context.Context, candidate Candidate, dataset ReflectiveDataset, components []string) (Candidate, error)
}

// ReflectionLM is the language model used to propose improved component
// texts. One call per invocation; retries are the implementation's concern.
type ReflectionLM interface {
	Reflect(ctx context.Context, prompt string) (string, error)
}

// ReflectionFunc adapts a plain function to the ReflectionLM interface.
type ReflectionFunc func(ctx context.Context, prompt string) (string, error)

func (f ReflectionFunc) Reflect(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// EventKind labels entries of the append-only run event log.
type EventKind string

const (
	EventStart      EventKind = "start"
	EventAccepted   EventKind = "accepted"
	EventRejected   EventKind = "rejected"
	EventStagnation EventKind = "stagnation"
	EventFinish     EventKind = "finish"
)

// Event is one append-only log entry describing run progress.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Iteration int                    `json:"iteration"`
	Kind      EventKind              `json:"kind"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// CheckpointStore persists run state and events. Implementations overwrite
// the checkpoint whole on each save; events are append-only. LoadCheckpoint
// returns ok=false when no usable checkpoint exists.
type CheckpointStore interface {
	SaveCheckpoint(ctx context.Context, state *RunState) error
	LoadCheckpoint(ctx context.Context) (*RunState, bool, error)
	AppendEvent(ctx context.Context, event Event) error
}
