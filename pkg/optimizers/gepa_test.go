package optimizers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/gepa-go/internal/testutil"
	"github.com/XiaoConstantine/gepa-go/pkg/core"
	"github.com/XiaoConstantine/gepa-go/pkg/errors"
	"github.com/XiaoConstantine/gepa-go/pkg/pareto"
)

// scoreAdapter scores every instance with the float value encoded in the
// candidate's "system" component, making runs fully deterministic.
type scoreAdapter struct {
	costPerInstance float64
	evalCalls       int
}

func parseScore(candidate core.Candidate) float64 {
	text, ok := candidate.Text("system")
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}
	return v
}

func (a *scoreAdapter) Evaluate(ctx context.Context, batch []core.Instance, candidate core.Candidate, captureTraces bool) (*core.EvalBatch, error) {
	a.evalCalls++
	score := parseScore(candidate)

	eval := &core.EvalBatch{
		Outputs: make([]interface{}, len(batch)),
		Scores:  make([]float64, len(batch)),
	}
	if a.costPerInstance > 0 {
		eval.Metrics = make([]core.InstanceMetrics, len(batch))
	}
	if captureTraces {
		eval.Trajectories = make([]core.Trajectory, len(batch))
	}
	for i := range batch {
		eval.Outputs[i] = score
		eval.Scores[i] = score
		if a.costPerInstance > 0 {
			eval.Metrics[i] = core.InstanceMetrics{CostUSD: a.costPerInstance}
		}
		if captureTraces {
			eval.Trajectories[i] = core.Trajectory{"output": score, "score": score}
		}
	}
	return eval, nil
}

func (a *scoreAdapter) MakeReflectiveDataset(ctx context.Context, candidate core.Candidate, eval *core.EvalBatch, batch []core.Instance, components []string) (core.ReflectiveDataset, error) {
	var examples []core.ReflectiveExample
	for i := range batch {
		if eval.Scores[i] >= 1 {
			continue
		}
		examples = append(examples, core.ReflectiveExample{
			"inputs":   batch[i],
			"score":    eval.Scores[i],
			"feedback": "score below target",
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

// proposingAdapter takes over mutation itself, always proposing the fixed
// text.
type proposingAdapter struct {
	scoreAdapter
	text string
}

func (p *proposingAdapter) ProposeNewTexts(ctx context.Context, candidate core.Candidate, dataset core.ReflectiveDataset, components []string) (core.Candidate, error) {
	updates := make(map[string]string, len(components))
	for _, name := range components {
		updates[name] = p.text
	}
	return candidate.WithTexts(updates), nil
}

// staticLM always proposes the same text regardless of prompt.
func staticLM(text string) core.ReflectionLM {
	return core.ReflectionFunc(func(ctx context.Context, prompt string) (string, error) {
		return text, nil
	})
}

// improvingLM is a pure function of the prompt: it reads the current
// component text back out of the prompt and proposes a strictly better score,
// so a resumed run sees identical proposals without shared call state.
func improvingLM() core.ReflectionLM {
	return core.ReflectionFunc(func(ctx context.Context, prompt string) (string, error) {
		const marker = "Current text:\n```\n"
		start := strings.Index(prompt, marker)
		if start < 0 {
			return "", fmt.Errorf("prompt missing current text")
		}
		rest := prompt[start+len(marker):]
		end := strings.Index(rest, "\n```")
		if end < 0 {
			return "", fmt.Errorf("prompt missing closing fence")
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rest[:end]), 64)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%.6f", v*0.9+0.1), nil
	})
}

func trainsetOf(n int) []core.Instance {
	set := make([]core.Instance, n)
	for i := range set {
		set[i] = core.Instance{"input": strconv.Itoa(i)}
	}
	return set
}

func seedWith(text string) core.Candidate {
	return core.NewCandidate(core.Component{Name: "system", Text: text})
}

func TestNewGEPAValidation(t *testing.T) {
	adapter := &scoreAdapter{}
	trainset := trainsetOf(4)
	lm := staticLM("0.5")

	tests := []struct {
		name     string
		seed     core.Candidate
		adapter  core.Adapter
		trainset []core.Instance
		opts     []GEPAOption
	}{
		{
			name:     "nil adapter",
			seed:     seedWith("0.5"),
			trainset: trainset,
			opts:     []GEPAOption{WithMaxIterations(1), WithReflectionLM(lm)},
		},
		{
			name:     "no reflection model and no proposer",
			seed:     seedWith("0.5"),
			adapter:  adapter,
			trainset: trainset,
			opts:     []GEPAOption{WithMaxIterations(1)},
		},
		{
			name:     "no stopping budget",
			seed:     seedWith("0.5"),
			adapter:  adapter,
			trainset: trainset,
			opts:     []GEPAOption{WithReflectionLM(lm)},
		},
		{
			name:    "empty training set",
			seed:    seedWith("0.5"),
			adapter: adapter,
			opts:    []GEPAOption{WithMaxIterations(1), WithReflectionLM(lm)},
		},
		{
			name:     "empty seed candidate",
			seed:     core.Candidate{},
			adapter:  adapter,
			trainset: trainset,
			opts:     []GEPAOption{WithMaxIterations(1), WithReflectionLM(lm)},
		},
		{
			name:     "empty validation set",
			seed:     seedWith("0.5"),
			adapter:  adapter,
			trainset: trainset,
			opts:     []GEPAOption{WithMaxIterations(1), WithReflectionLM(lm), WithValidationSet([]core.Instance{})},
		},
		{
			name:     "zero minibatch size",
			seed:     seedWith("0.5"),
			adapter:  adapter,
			trainset: trainset,
			opts:     []GEPAOption{WithMaxIterations(1), WithReflectionLM(lm), WithMinibatchSize(0)},
		},
		{
			name:     "negative tie epsilon",
			seed:     seedWith("0.5"),
			adapter:  adapter,
			trainset: trainset,
			opts:     []GEPAOption{WithMaxIterations(1), WithReflectionLM(lm), WithTieEpsilon(-0.1)},
		},
		{
			name:     "unknown candidate strategy",
			seed:     seedWith("0.5"),
			adapter:  adapter,
			trainset: trainset,
			opts:     []GEPAOption{WithMaxIterations(1), WithReflectionLM(lm), WithCandidateStrategy("tournament")},
		},
		{
			name:     "unknown component strategy",
			seed:     seedWith("0.5"),
			adapter:  adapter,
			trainset: trainset,
			opts:     []GEPAOption{WithMaxIterations(1), WithReflectionLM(lm), WithComponentStrategy("random")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGEPA(tt.seed, tt.adapter, tt.trainset, tt.opts...)
			require.Error(t, err)
			assert.Equal(t, errors.InvalidConfig, errors.Code(err))
		})
	}
}

func TestNewGEPAProposerNeedsNoReflectionModel(t *testing.T) {
	adapter := &proposingAdapter{text: "0.9"}
	_, err := NewGEPA(seedWith("0.5"), adapter, trainsetOf(4), WithMaxIterations(1))
	assert.NoError(t, err)
}

func TestOptimizeAcceptsImprovingChild(t *testing.T) {
	adapter := &scoreAdapter{}
	g, err := NewGEPA(seedWith("0.5"), adapter, trainsetOf(4),
		WithMaxIterations(1),
		WithMinibatchSize(2),
		WithReflectionLM(staticLM("0.7")),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
	)
	require.NoError(t, err)

	result, err := g.Optimize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Iterations)
	assert.InDelta(t, 0.7, result.BestScore, 1e-9)
	assert.Equal(t, "0.7", result.BestCandidate.Texts["system"])

	state := g.State()
	require.Len(t, state.Archive, 2)
	assert.Equal(t, -1, state.Archive[0].ParentIndex)
	assert.Equal(t, 0, state.Archive[1].ParentIndex)
	require.Len(t, state.InstanceScores, 2)
	assert.Len(t, state.InstanceScores[1], 4)

	require.Len(t, result.History, 1)
	assert.True(t, result.History[0].Accepted)
}

func TestOptimizeRejectsEqualScores(t *testing.T) {
	adapter := &scoreAdapter{}
	g, err := NewGEPA(seedWith("0.5"), adapter, trainsetOf(4),
		WithMaxIterations(100),
		WithMinibatchSize(2),
		WithReflectionLM(staticLM("0.5")),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
	)
	require.NoError(t, err)

	result, err := g.Optimize(context.Background())
	require.NoError(t, err)

	// equal batch sums never pass the strict acceptance test, so the run
	// stops on the stagnation limit
	assert.Equal(t, stagnationLimit, result.Iterations)
	assert.Len(t, g.State().Archive, 1)
	for _, rec := range result.History {
		assert.False(t, rec.Accepted)
	}
}

func TestTieEpsilonRaisesAcceptanceBar(t *testing.T) {
	adapter := &scoreAdapter{}
	g, err := NewGEPA(seedWith("0.5"), adapter, trainsetOf(4),
		WithMaxIterations(1),
		WithMinibatchSize(2),
		WithReflectionLM(staticLM("0.6")),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
		WithTieEpsilon(0.5),
	)
	require.NoError(t, err)

	result, err := g.Optimize(context.Background())
	require.NoError(t, err)

	// batch sums 1.2 vs 1.0: an improvement, but not by more than epsilon
	assert.Len(t, g.State().Archive, 1)
	require.Len(t, result.History, 1)
	assert.False(t, result.History[0].Accepted)
}

func TestPerfectScoreGateSkipsMutation(t *testing.T) {
	adapter := &scoreAdapter{}
	lm := &testutil.ScriptedLM{Responses: []string{"0.9"}}
	g, err := NewGEPA(seedWith("1.0"), adapter, trainsetOf(4),
		WithMaxIterations(3),
		WithMinibatchSize(2),
		WithReflectionLM(lm),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
		WithSkipPerfectScore(1.0),
	)
	require.NoError(t, err)

	result, err := g.Optimize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Iterations)
	assert.Len(t, g.State().Archive, 1)
	assert.Empty(t, lm.Calls, "a perfect parent must never reach reflection")
	// seed evaluation plus one gate evaluation per iteration
	assert.Equal(t, 4+3*2, result.TotalMetricCalls)
}

func TestMetricCallAccounting(t *testing.T) {
	adapter := &scoreAdapter{}
	g, err := NewGEPA(seedWith("0.5"), adapter, trainsetOf(4),
		WithMaxIterations(100),
		WithMaxMetricCalls(5),
		WithMinibatchSize(2),
		WithReflectionLM(staticLM("0.8")),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
	)
	require.NoError(t, err)

	result, err := g.Optimize(context.Background())
	require.NoError(t, err)

	// the first iteration starts under budget and runs to completion: seed(4)
	// + traced(2) + parent(2) + child(2) + validation(4). The parent is
	// evaluated on the same minibatch twice: once traced for reflection, once
	// for the acceptance test.
	assert.Equal(t, 1, result.Iterations)
	assert.Equal(t, 14, result.TotalMetricCalls)
	assert.Equal(t, 5, adapter.evalCalls)
}

func TestCostBudgetStopsBeforeFirstIteration(t *testing.T) {
	adapter := &scoreAdapter{costPerInstance: 0.01}
	g, err := NewGEPA(seedWith("0.5"), adapter, trainsetOf(4),
		WithMaxCost(0.03),
		WithReflectionLM(staticLM("0.8")),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
	)
	require.NoError(t, err)

	result, err := g.Optimize(context.Background())
	require.NoError(t, err)

	// the seed evaluation alone exhausts the cost budget
	assert.Equal(t, 0, result.Iterations)
	assert.InDelta(t, 0.04, result.TotalCostUSD, 1e-9)
	assert.InDelta(t, 0.5, result.BestScore, 1e-9)
	assert.Len(t, g.State().Archive, 1)
}

func TestOptimizeWithProposerAdapter(t *testing.T) {
	adapter := &proposingAdapter{text: "0.9"}
	g, err := NewGEPA(seedWith("0.5"), adapter, trainsetOf(4),
		WithMaxIterations(1),
		WithMinibatchSize(2),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
	)
	require.NoError(t, err)

	result, err := g.Optimize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "0.9", result.BestCandidate.Texts["system"])
	assert.Len(t, g.State().Archive, 2)
}

func TestResultFrontIsConsistent(t *testing.T) {
	adapter := &scoreAdapter{}
	g, err := NewGEPA(seedWith("0.5"), adapter, trainsetOf(4),
		WithMaxIterations(4),
		WithMinibatchSize(2),
		WithRNGSeed(7),
		WithReflectionLM(improvingLM()),
	)
	require.NoError(t, err)

	result, err := g.Optimize(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, result.ParetoFront)
	assert.True(t, result.HasHypervolume, "two-objective runs define a hypervolume")

	state := g.State()
	for _, m := range result.ParetoFront {
		require.Less(t, m.Index, len(state.Archive))
		assert.True(t, state.Archive[m.Index].Candidate.Equal(m.Candidate))
	}
	for _, a := range result.ParetoFront {
		for _, b := range result.ParetoFront {
			assert.NotEqual(t, 1, pareto.Dominance(a.Scores, b.Scores, 0))
		}
	}
	assert.Len(t, result.History, result.Iterations)

	// best scalar over the whole archive
	for _, rec := range state.Archive {
		assert.LessOrEqual(t, rec.ScalarScore, result.BestScore)
	}
}

func TestOptimizeIsDeterministic(t *testing.T) {
	run := func() *core.RunState {
		g, err := NewGEPA(seedWith("0.5"), &scoreAdapter{}, trainsetOf(5),
			WithMaxIterations(8),
			WithMinibatchSize(2),
			WithRNGSeed(1234),
			WithReflectionLM(improvingLM()),
			WithCandidateStrategy(CandidateStrategyPareto),
		)
		require.NoError(t, err)
		_, err = g.Optimize(context.Background())
		require.NoError(t, err)
		return g.State()
	}

	first := run()
	second := run()

	require.Equal(t, len(first.Archive), len(second.Archive))
	for i := range first.Archive {
		assert.True(t, first.Archive[i].Candidate.Equal(second.Archive[i].Candidate), "archive record %d diverged", i)
		assert.Equal(t, first.Archive[i].Scores, second.Archive[i].Scores)
		assert.Equal(t, first.Archive[i].ParentIndex, second.Archive[i].ParentIndex)
	}
	assert.Equal(t, first.InstanceScores, second.InstanceScores)
	assert.Equal(t, first.TotalMetricCalls, second.TotalMetricCalls)
	assert.Equal(t, first.RNGState, second.RNGState)
}

func TestResumeMatchesContinuousRun(t *testing.T) {
	const totalIterations = 6
	newOptimizer := func(maxIterations int, store core.CheckpointStore) *GEPA {
		opts := []GEPAOption{
			WithMaxIterations(maxIterations),
			WithMinibatchSize(2),
			WithRNGSeed(99),
			WithReflectionLM(improvingLM()),
			WithCandidateStrategy(CandidateStrategyPareto),
		}
		if store != nil {
			opts = append(opts, WithCheckpointStore(store))
		}
		g, err := NewGEPA(seedWith("0.5"), &scoreAdapter{}, trainsetOf(5), opts...)
		require.NoError(t, err)
		return g
	}

	// continuous run
	continuous := newOptimizer(totalIterations, nil)
	_, err := continuous.Optimize(context.Background())
	require.NoError(t, err)
	want := continuous.State()

	// interrupted run: stop halfway, then resume from the checkpoint
	store := testutil.NewMemoryStore()
	firstHalf := newOptimizer(totalIterations/2, store)
	_, err = firstHalf.Optimize(context.Background())
	require.NoError(t, err)

	resumed := newOptimizer(totalIterations, store)
	_, err = resumed.Optimize(context.Background())
	require.NoError(t, err)
	got := resumed.State()

	assert.Equal(t, want.Iteration, got.Iteration)
	assert.Equal(t, want.TotalMetricCalls, got.TotalMetricCalls)
	assert.Equal(t, want.RNGState, got.RNGState)
	require.Equal(t, len(want.Archive), len(got.Archive))
	for i := range want.Archive {
		assert.True(t, want.Archive[i].Candidate.Equal(got.Archive[i].Candidate), "archive record %d diverged after resume", i)
		assert.Equal(t, want.Archive[i].Scores, got.Archive[i].Scores)
		assert.Equal(t, want.Archive[i].ParentIndex, got.Archive[i].ParentIndex)
	}
	assert.Equal(t, want.InstanceScores, got.InstanceScores)
}

func TestOptimizeEmitsEvents(t *testing.T) {
	store := testutil.NewMemoryStore()
	g, err := NewGEPA(seedWith("0.5"), &scoreAdapter{}, trainsetOf(4),
		WithMaxIterations(2),
		WithMinibatchSize(2),
		WithReflectionLM(staticLM("0.8")),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
		WithCheckpointStore(store),
	)
	require.NoError(t, err)

	_, err = g.Optimize(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, store.Events)
	assert.Equal(t, core.EventStart, store.Events[0].Kind)
	assert.Equal(t, core.EventFinish, store.Events[len(store.Events)-1].Kind)

	var perIteration []core.EventKind
	for _, e := range store.Events[1 : len(store.Events)-1] {
		perIteration = append(perIteration, e.Kind)
	}
	assert.Len(t, perIteration, 2)
	for _, kind := range perIteration {
		assert.Contains(t, []core.EventKind{core.EventAccepted, core.EventRejected}, kind)
	}

	// the finish checkpoint captures the final state
	state, ok, err := store.LoadCheckpoint(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, state.Iteration)
}

func TestOptimizeRespectsContextCancellation(t *testing.T) {
	blocked := core.ReflectionFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", ctx.Err()
	})
	g, err := NewGEPA(seedWith("0.5"), &scoreAdapter{}, trainsetOf(4),
		WithMaxIterations(10),
		WithMinibatchSize(2),
		WithReflectionLM(blocked),
		WithCandidateStrategy(CandidateStrategyCurrentBest),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Optimize(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.Canceled, errors.Code(err))
}

func TestStateReportsLiveRNGState(t *testing.T) {
	const seed = 99
	g, err := NewGEPA(seedWith("0.5"), &scoreAdapter{}, trainsetOf(5),
		WithMaxIterations(2),
		WithMinibatchSize(2),
		WithRNGSeed(seed),
		WithReflectionLM(improvingLM()),
		WithCandidateStrategy(CandidateStrategyPareto),
	)
	require.NoError(t, err)

	_, err = g.Optimize(context.Background())
	require.NoError(t, err)

	// No checkpoint store is configured, so the exposed state must still
	// track the live generator rather than the starting seed.
	state := g.State()
	assert.NotEqual(t, uint32(seed), state.RNGState)
	assert.Equal(t, state.RNGState, g.State().RNGState)
}
