// Package adapters provides a ready-made implementation of the core.Adapter
// contract: it turns a per-instance task function and a metric into a batch
// evaluator with a bounded worker pool, order-preserving results, and
// trace-based reflective feedback.
package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
	"github.com/XiaoConstantine/gepa-go/pkg/logging"
)

// RunResult is the outcome of running one instance against a candidate.
type RunResult struct {
	Output  interface{}
	CostUSD float64
}

// RunFunc executes a single instance against a candidate, typically by
// rendering the candidate's components into a prompt and calling a task LM.
type RunFunc func(ctx context.Context, candidate core.Candidate, instance core.Instance) (*RunResult, error)

// MetricFunc scores one instance's output; higher is better.
type MetricFunc func(instance core.Instance, output interface{}) float64

// FeedbackFunc renders natural-language feedback for one evaluated instance,
// used to build the reflective dataset. score is the metric result and
// runErr the instance's execution error, if any.
type FeedbackFunc func(instance core.Instance, output interface{}, score float64, runErr error) string

// DefaultAdapter implements core.Adapter on top of a RunFunc and MetricFunc.
type DefaultAdapter struct {
	run        RunFunc
	metric     MetricFunc
	feedback   FeedbackFunc
	maxWorkers int
	logger     *logging.Logger
}

// Option configures a DefaultAdapter.
type Option func(*DefaultAdapter)

// WithMaxWorkers bounds the number of instances evaluated concurrently.
// Default: 4.
func WithMaxWorkers(n int) Option {
	return func(a *DefaultAdapter) {
		a.maxWorkers = n
	}
}

// WithFeedback installs a custom feedback renderer for reflective datasets.
func WithFeedback(f FeedbackFunc) Option {
	return func(a *DefaultAdapter) {
		a.feedback = f
	}
}

// New creates a DefaultAdapter.
func New(run RunFunc, metric MetricFunc, opts ...Option) *DefaultAdapter {
	a := &DefaultAdapter{
		run:        run,
		metric:     metric,
		feedback:   defaultFeedback,
		maxWorkers: 4,
		logger:     logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Evaluate runs every instance of the batch against the candidate, up to
// maxWorkers at a time. The returned slices are parallel to the input batch
// regardless of completion order. A failing instance is scored 0 with an
// error marker in its trajectory; it never fails the batch.
func (a *DefaultAdapter) Evaluate(ctx context.Context, batch []core.Instance, candidate core.Candidate, captureTraces bool) (*core.EvalBatch, error) {
	eval := &core.EvalBatch{
		Outputs: make([]interface{}, len(batch)),
		Scores:  make([]float64, len(batch)),
		Metrics: make([]core.InstanceMetrics, len(batch)),
	}
	if captureTraces {
		eval.Trajectories = make([]core.Trajectory, len(batch))
	}

	p := pool.New().WithMaxGoroutines(a.maxWorkers)
	for i, instance := range batch {
		i, instance := i, instance
		p.Go(func() {
			start := time.Now()
			result, err := a.run(ctx, candidate, instance)
			latency := time.Since(start)

			var output interface{}
			var cost float64
			if result != nil {
				output = result.Output
				cost = result.CostUSD
			}

			score := 0.0
			if err == nil {
				score = a.metric(instance, output)
			} else {
				a.logger.Debug(ctx, "instance %d failed, scoring 0: %v", i, err)
			}

			eval.Outputs[i] = output
			eval.Scores[i] = score
			eval.Metrics[i] = core.InstanceMetrics{
				LatencyMS: float64(latency.Milliseconds()),
				CostUSD:   cost,
			}
			if captureTraces {
				trajectory := core.Trajectory{
					"instance": instance,
					"output":   output,
					"score":    score,
				}
				if err != nil {
					trajectory["error"] = err.Error()
				}
				eval.Trajectories[i] = trajectory
			}
		})
	}
	p.Wait()

	return eval, nil
}

// MakeReflectiveDataset builds per-component feedback from a traced
// evaluation. Imperfect and failed instances contribute one example each; a
// component with nothing to learn from gets no entry. Every targeted
// component shares the same instance-level examples: the default adapter has
// no per-component attribution.
func (a *DefaultAdapter) MakeReflectiveDataset(ctx context.Context, candidate core.Candidate, eval *core.EvalBatch, batch []core.Instance, components []string) (core.ReflectiveDataset, error) {
	var examples []core.ReflectiveExample
	for i, instance := range batch {
		if i >= len(eval.Scores) {
			break
		}
		score := eval.Scores[i]
		var runErr error
		if eval.Trajectories != nil && eval.Trajectories[i] != nil {
			if msg, ok := eval.Trajectories[i]["error"].(string); ok {
				runErr = fmt.Errorf("%s", msg)
			}
		}
		if score >= 1 && runErr == nil {
			continue
		}

		var output interface{}
		if i < len(eval.Outputs) {
			output = eval.Outputs[i]
		}
		examples = append(examples, core.ReflectiveExample{
			"inputs":   instance,
			"output":   output,
			"score":    score,
			"feedback": a.feedback(instance, output, score, runErr),
		})
	}

	dataset := make(core.ReflectiveDataset, len(components))
	if len(examples) == 0 {
		return dataset, nil
	}
	for _, name := range components {
		dataset[name] = examples
	}
	return dataset, nil
}

func defaultFeedback(instance core.Instance, output interface{}, score float64, runErr error) string {
	if runErr != nil {
		return fmt.Sprintf("execution failed: %v", runErr)
	}
	return fmt.Sprintf("scored %.3f on this instance; the output did not fully satisfy the expected answer", score)
}
