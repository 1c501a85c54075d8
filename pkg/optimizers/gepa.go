// Package optimizers implements the GEPA (Generative Evolutionary Prompt
// Adaptation) optimization loop: an archive of candidates evolved through
// LM-driven reflection, minibatch acceptance testing, Pareto bookkeeping and
// budget-bounded, resumable iteration.
package optimizers

import (
	"context"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/gepa-go/pkg/core"
	"github.com/XiaoConstantine/gepa-go/pkg/errors"
	"github.com/XiaoConstantine/gepa-go/pkg/logging"
	"github.com/XiaoConstantine/gepa-go/pkg/pareto"
	"github.com/XiaoConstantine/gepa-go/pkg/reflection"
	"github.com/XiaoConstantine/gepa-go/pkg/sampler"
	"github.com/XiaoConstantine/gepa-go/pkg/selection"
)

// Strategy names for candidate and component selection.
const (
	CandidateStrategyCurrentBest = "current_best"
	CandidateStrategyPareto      = "pareto"

	ComponentStrategyRoundRobin = "round_robin"
	ComponentStrategyAll        = "all"
)

// stagnationLimit is the number of consecutive rejected mutations that stops
// a run early.
const stagnationLimit = 5

// GEPAConfig contains configuration options for the GEPA optimizer. At least
// one of the three stopping budgets must be set.
type GEPAConfig struct {
	// Stopping budgets (0 means unbounded)
	MaxIterations  int     `json:"max_iterations"`
	MaxMetricCalls int     `json:"max_metric_calls"`
	MaxCostUSD     float64 `json:"max_cost_usd"`

	// Evolutionary parameters
	MinibatchSize     int     `json:"minibatch_size"`     // Default: 3
	TieEpsilon        float64 `json:"tie_epsilon"`        // Default: 0
	ParetoEpsilon     float64 `json:"pareto_epsilon"`     // Default: 0
	CandidateStrategy string  `json:"candidate_strategy"` // Default: "pareto"
	ComponentStrategy string  `json:"component_strategy"` // Default: "round_robin"

	// Perfect-score gate
	SkipPerfectScore bool    `json:"skip_perfect_score"` // Default: false
	PerfectScore     float64 `json:"perfect_score"`      // Default: 1.0

	// Determinism and persistence
	RNGSeed         uint32 `json:"rng_seed"`         // Default: 0
	CheckpointEvery int    `json:"checkpoint_every"` // Default: 5 iterations
}

// DefaultGEPAConfig returns the default configuration for GEPA. No budget is
// set; callers must configure at least one.
func DefaultGEPAConfig() GEPAConfig {
	return GEPAConfig{
		MinibatchSize:     3,
		TieEpsilon:        0,
		ParetoEpsilon:     0,
		CandidateStrategy: CandidateStrategyPareto,
		ComponentStrategy: ComponentStrategyRoundRobin,
		SkipPerfectScore:  false,
		PerfectScore:      1.0,
		RNGSeed:           0,
		CheckpointEvery:   5,
	}
}

// GEPA is the optimizer. It owns the run state exclusively: nothing mutates
// the archive, score matrix or counters outside the loop.
type GEPA struct {
	config GEPAConfig

	adapter      core.Adapter
	reflectionLM core.ReflectionLM
	store        core.CheckpointStore
	hint         string

	seed     core.Candidate
	trainset []core.Instance
	valset   []core.Instance

	runID  string
	logger *logging.Logger

	// Per-run machinery, set up in Optimize.
	state        *core.RunState
	rng          *core.RNG
	batches      *sampler.EpochSampler
	candidateSel selection.CandidateSelector
	componentSel selection.ComponentSelector
	engine       *reflection.Engine
	history      []IterationRecord
	stagnation   int
}

// GEPAOption defines functional options for GEPA configuration.
type GEPAOption func(*GEPA)

// WithConfig replaces the whole configuration.
func WithConfig(cfg GEPAConfig) GEPAOption {
	return func(g *GEPA) { g.config = cfg }
}

// WithMaxIterations caps the number of iterations.
func WithMaxIterations(n int) GEPAOption {
	return func(g *GEPA) { g.config.MaxIterations = n }
}

// WithMaxMetricCalls caps the total number of per-instance metric calls.
func WithMaxMetricCalls(n int) GEPAOption {
	return func(g *GEPA) { g.config.MaxMetricCalls = n }
}

// WithMaxCost caps the total accumulated evaluation cost in dollars.
func WithMaxCost(usd float64) GEPAOption {
	return func(g *GEPA) { g.config.MaxCostUSD = usd }
}

// WithMinibatchSize sets the minibatch size.
func WithMinibatchSize(size int) GEPAOption {
	return func(g *GEPA) { g.config.MinibatchSize = size }
}

// WithTieEpsilon sets the acceptance margin: a child is accepted only when
// its minibatch score sum beats the parent's by more than epsilon.
func WithTieEpsilon(eps float64) GEPAOption {
	return func(g *GEPA) { g.config.TieEpsilon = eps }
}

// WithParetoEpsilon sets the dominance tolerance for front construction.
func WithParetoEpsilon(eps float64) GEPAOption {
	return func(g *GEPA) { g.config.ParetoEpsilon = eps }
}

// WithSkipPerfectScore enables the gate that skips mutating parents already
// scoring at or above the given threshold on the iteration's minibatch.
func WithSkipPerfectScore(threshold float64) GEPAOption {
	return func(g *GEPA) {
		g.config.SkipPerfectScore = true
		g.config.PerfectScore = threshold
	}
}

// WithRNGSeed sets the deterministic RNG seed.
func WithRNGSeed(seed uint32) GEPAOption {
	return func(g *GEPA) { g.config.RNGSeed = seed }
}

// WithCandidateStrategy selects the parent-selection strategy by name.
func WithCandidateStrategy(name string) GEPAOption {
	return func(g *GEPA) { g.config.CandidateStrategy = name }
}

// WithComponentStrategy selects the component-selection strategy by name.
func WithComponentStrategy(name string) GEPAOption {
	return func(g *GEPA) { g.config.ComponentStrategy = name }
}

// WithReflectionLM sets the language model used for mutation proposals.
func WithReflectionLM(lm core.ReflectionLM) GEPAOption {
	return func(g *GEPA) { g.reflectionLM = lm }
}

// WithSteeringHint adds free-text guidance to every reflection prompt.
func WithSteeringHint(hint string) GEPAOption {
	return func(g *GEPA) { g.hint = hint }
}

// WithCheckpointStore enables persistence of run state and events.
func WithCheckpointStore(store core.CheckpointStore) GEPAOption {
	return func(g *GEPA) { g.store = store }
}

// WithCheckpointEvery sets how many iterations pass between full checkpoints.
func WithCheckpointEvery(n int) GEPAOption {
	return func(g *GEPA) { g.config.CheckpointEvery = n }
}

// WithValidationSet sets the validation instances used for full evaluation of
// accepted candidates. Defaults to the training set.
func WithValidationSet(valset []core.Instance) GEPAOption {
	return func(g *GEPA) { g.valset = valset }
}

// NewGEPA creates a GEPA optimizer for the given seed candidate, adapter and
// training set. Configuration errors are fatal and reported here, before any
// iteration runs.
func NewGEPA(seed core.Candidate, adapter core.Adapter, trainset []core.Instance, opts ...GEPAOption) (*GEPA, error) {
	g := &GEPA{
		config:   DefaultGEPAConfig(),
		adapter:  adapter,
		seed:     seed,
		trainset: trainset,
		runID:    uuid.NewString(),
		logger:   logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.valset == nil {
		g.valset = g.trainset
	}

	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *GEPA) validate() error {
	if g.adapter == nil {
		return errors.New(errors.InvalidConfig, "an adapter (or a task model wrapped in one) is required")
	}
	if g.reflectionLM == nil {
		if _, ok := g.adapter.(core.Proposer); !ok {
			return errors.New(errors.InvalidConfig, "a reflection model is required unless the adapter proposes its own texts")
		}
	}
	if g.config.MaxIterations <= 0 && g.config.MaxMetricCalls <= 0 && g.config.MaxCostUSD <= 0 {
		return errors.New(errors.InvalidConfig, "at least one stopping budget (iterations, metric calls, cost) is required")
	}
	if len(g.trainset) == 0 {
		return errors.New(errors.InvalidConfig, "training set must not be empty")
	}
	if len(g.valset) == 0 {
		return errors.New(errors.InvalidConfig, "validation set must not be empty")
	}
	if g.seed.Len() == 0 {
		return errors.New(errors.InvalidConfig, "seed candidate must have at least one component")
	}
	if g.config.MinibatchSize < 1 {
		return errors.New(errors.InvalidConfig, "minibatch size must be at least 1")
	}
	if g.config.TieEpsilon < 0 || g.config.ParetoEpsilon < 0 {
		return errors.New(errors.InvalidConfig, "epsilons must be non-negative")
	}
	switch g.config.CandidateStrategy {
	case CandidateStrategyCurrentBest, CandidateStrategyPareto:
	default:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "unknown candidate strategy"),
			errors.Fields{"strategy": g.config.CandidateStrategy},
		)
	}
	switch g.config.ComponentStrategy {
	case ComponentStrategyRoundRobin, ComponentStrategyAll:
	default:
		return errors.WithFields(
			errors.New(errors.InvalidConfig, "unknown component strategy"),
			errors.Fields{"strategy": g.config.ComponentStrategy},
		)
	}
	if g.config.CheckpointEvery < 1 {
		g.config.CheckpointEvery = 1
	}
	return nil
}

// IterationRecord is one history entry: the candidate proposed on an
// iteration, its validation scores when accepted, and the accepted flag.
type IterationRecord struct {
	Iteration int                  `json:"iteration"`
	Candidate core.Candidate       `json:"candidate"`
	Scores    core.ObjectiveVector `json:"scores,omitempty"`
	Accepted  bool                 `json:"accepted"`
}

// FrontMember describes one member of the final Pareto front.
type FrontMember struct {
	Index       int                  `json:"index"`
	Candidate   core.Candidate       `json:"candidate"`
	Scores      core.ObjectiveVector `json:"scores"`
	ScalarScore float64              `json:"scalar_score"`
}

// GEPAResult is the outcome of an optimization run.
type GEPAResult struct {
	BestCandidate core.Candidate       `json:"best_candidate"`
	BestScore     float64              `json:"best_score"`
	BestScores    core.ObjectiveVector `json:"best_scores"`
	ParetoFront   []FrontMember        `json:"pareto_front"`

	// Hypervolume of the final front; valid only for 2-objective runs.
	Hypervolume    float64 `json:"hypervolume"`
	HasHypervolume bool    `json:"has_hypervolume"`

	Iterations       int               `json:"iterations"`
	TotalMetricCalls int               `json:"total_metric_calls"`
	TotalCostUSD     float64           `json:"total_cost_usd"`
	History          []IterationRecord `json:"history"`
}

// State exposes the current run state for inspection. The returned value is
// a deep copy with the RNG state synced to the live generator, so it is
// coherent between checkpoints too.
func (g *GEPA) State() *core.RunState {
	if g.state == nil {
		return nil
	}
	g.state.RNGState = g.rng.State()
	return g.state.Clone()
}

// Optimize runs the optimization loop until a budget or the stagnation limit
// stops it, then returns the best candidate, the final Pareto front and the
// full iteration history. If a checkpoint store is configured and holds a
// usable checkpoint, the run resumes from it.
func (g *GEPA) Optimize(ctx context.Context) (*GEPAResult, error) {
	ctx = logging.WithRunID(ctx, g.runID)

	if err := g.initRun(ctx); err != nil {
		return nil, err
	}

	g.logger.Info(ctx, "starting GEPA: %d train, %d validation, minibatch=%d, strategies=%s/%s",
		len(g.trainset), len(g.valset), g.config.MinibatchSize,
		g.config.CandidateStrategy, g.config.ComponentStrategy)

	for {
		stop, err := g.step(ctx)
		if err != nil {
			return nil, err
		}
		if stop {
			break
		}
	}

	return g.finalize(ctx)
}

// step runs one full iteration. It returns stop=true when a budget or the
// stagnation limit ends the run.
func (g *GEPA) step(ctx context.Context) (bool, error) {
	if err := errors.CheckContext(ctx, "optimization step"); err != nil {
		return false, err
	}

	g.state.Iteration++
	it := g.state.Iteration - 1 // zero-based draw counter for sampler/selectors
	ctx = logging.WithIteration(ctx, g.state.Iteration)

	if reason := g.budgetExceeded(); reason != "" {
		// The aborted increment is rolled back so Iteration counts only
		// completed iterations.
		g.state.Iteration--
		g.logger.Info(ctx, "stopping: %s", reason)
		return true, nil
	}

	// Parent selection against the freshly recomputed front.
	front := pareto.BuildFront(g.archiveScores(), g.config.ParetoEpsilon)
	parentIdx := g.candidateSel.SelectCandidate(g.state.Archive, g.state.InstanceScores, front)
	parent := g.state.Archive[parentIdx]

	batch := g.batches.NextBatch(g.trainset, it)

	if g.config.SkipPerfectScore {
		gateEval, err := g.adapter.Evaluate(ctx, batch, parent.Candidate, false)
		if err != nil {
			return false, errors.Wrap(err, errors.EvaluationFailed, "perfect-score gate evaluation failed")
		}
		g.charge(gateEval)
		if gateEval.MeanScore() >= g.config.PerfectScore {
			g.logger.Debug(ctx, "parent %d already perfect on this minibatch, skipping", parentIdx)
			return false, nil
		}
	}

	components := g.componentSel.SelectComponents(parent.Candidate, it)

	proposal, err := g.engine.Propose(ctx, parent.Candidate, batch, components)
	if err != nil {
		return false, err
	}
	g.charge(proposal.ParentEval)
	child := proposal.Child

	// Acceptance test: parent and child on the same minibatch. The parent
	// evaluation here is deliberately not deduplicated against the gate or
	// the traced reflection evaluation; see the package documentation.
	parentEval, err := g.adapter.Evaluate(ctx, batch, parent.Candidate, false)
	if err != nil {
		return false, errors.Wrap(err, errors.EvaluationFailed, "parent minibatch evaluation failed")
	}
	g.charge(parentEval)

	childEval, err := g.adapter.Evaluate(ctx, batch, child, false)
	if err != nil {
		return false, errors.Wrap(err, errors.EvaluationFailed, "child minibatch evaluation failed")
	}
	g.charge(childEval)

	accepted := childEval.SumScore() > parentEval.SumScore()+g.config.TieEpsilon

	record := IterationRecord{
		Iteration: g.state.Iteration,
		Candidate: child,
		Accepted:  accepted,
	}

	if accepted {
		valEval, err := g.adapter.Evaluate(ctx, g.valset, child, false)
		if err != nil {
			return false, errors.Wrap(err, errors.EvaluationFailed, "validation evaluation failed")
		}
		g.charge(valEval)

		scores := objectiveVector(valEval)
		g.state.Archive = append(g.state.Archive, core.ArchiveRecord{
			Candidate:   child,
			Scores:      scores,
			ScalarScore: scores[core.ObjectiveCorrectness],
			ParentIndex: parentIdx,
		})
		g.state.InstanceScores = append(g.state.InstanceScores, append([]float64(nil), valEval.Scores...))
		g.stagnation = 0
		record.Scores = scores

		g.logger.Info(ctx, "accepted candidate %d (parent %d): correctness=%.4f batch %.2f->%.2f",
			len(g.state.Archive)-1, parentIdx,
			scores[core.ObjectiveCorrectness], parentEval.SumScore(), childEval.SumScore())
	} else {
		g.stagnation++
		g.logger.Debug(ctx, "rejected mutation of parent %d: batch %.2f vs %.2f (stagnation %d)",
			parentIdx, childEval.SumScore(), parentEval.SumScore(), g.stagnation)
	}

	g.history = append(g.history, record)
	g.observeFront(ctx)
	g.persistIteration(ctx, parentIdx, accepted)

	if g.stagnation >= stagnationLimit {
		g.logger.Info(ctx, "stopping: %d consecutive rejections", g.stagnation)
		g.appendEvent(ctx, core.EventStagnation, map[string]interface{}{"stagnation": g.stagnation})
		return true, nil
	}
	return false, nil
}

// initRun loads a checkpoint when available, otherwise seeds a fresh run with
// the seed candidate's full validation evaluation as archive record 0.
func (g *GEPA) initRun(ctx context.Context) error {
	g.engine = reflection.NewEngine(g.adapter, g.reflectionLM, g.hint)
	g.history = nil
	g.stagnation = 0

	if g.store != nil {
		state, ok, err := g.store.LoadCheckpoint(ctx)
		if err != nil {
			return errors.Wrap(err, errors.CheckpointFailed, "loading checkpoint")
		}
		if ok && len(state.Archive) > 0 {
			g.state = state
			g.rng = core.RestoreRNG(state.RNGState)
			g.rebuildSampler()
			g.installSelectors()
			g.logger.Info(ctx, "resumed from checkpoint at iteration %d with %d archive records",
				state.Iteration, len(state.Archive))
			return nil
		}
	}

	g.state = &core.RunState{RNGState: g.config.RNGSeed}
	g.rng = core.NewRNG(g.config.RNGSeed)
	g.batches = sampler.NewEpochSampler(g.config.MinibatchSize, g.rng)
	g.installSelectors()

	seedEval, err := g.adapter.Evaluate(ctx, g.valset, g.seed, false)
	if err != nil {
		return errors.Wrap(err, errors.EvaluationFailed, "seed candidate evaluation failed")
	}
	g.charge(seedEval)

	scores := objectiveVector(seedEval)
	g.state.Archive = []core.ArchiveRecord{{
		Candidate:   g.seed,
		Scores:      scores,
		ScalarScore: scores[core.ObjectiveCorrectness],
		ParentIndex: -1,
	}}
	g.state.InstanceScores = [][]float64{append([]float64(nil), seedEval.Scores...)}

	g.logger.Info(ctx, "seed candidate scored correctness=%.4f over %d validation instances",
		scores[core.ObjectiveCorrectness], len(seedEval.Scores))
	g.appendEvent(ctx, core.EventStart, map[string]interface{}{
		"seed_correctness": scores[core.ObjectiveCorrectness],
	})
	return nil
}

func (g *GEPA) installSelectors() {
	switch g.config.CandidateStrategy {
	case CandidateStrategyPareto:
		g.candidateSel = selection.NewParetoFrequency(g.rng)
	default:
		g.candidateSel = selection.CurrentBest{}
	}
	switch g.config.ComponentStrategy {
	case ComponentStrategyAll:
		g.componentSel = selection.AllComponents{}
	default:
		g.componentSel = selection.RoundRobin{}
	}
}

// rebuildSampler reconstructs the sampler's shuffle state after a resume by
// replaying the completed iterations' draw pattern from the original seed.
// The per-iteration draw count is fixed (one selection draw under the Pareto
// strategy, none under current-best, plus the sampler's own epoch
// reshuffles), so the replayed stream matches the original run exactly. The
// live RNG then continues from the restored checkpoint state.
func (g *GEPA) rebuildSampler() {
	replayRNG := core.NewRNG(g.config.RNGSeed)
	s := sampler.NewEpochSampler(g.config.MinibatchSize, replayRNG)
	for it := 0; it < g.state.Iteration; it++ {
		if g.config.CandidateStrategy == CandidateStrategyPareto {
			replayRNG.Float64()
		}
		s.NextIndices(len(g.trainset), it)
	}
	s.SetRNG(g.rng)
	g.batches = s
}

// budgetExceeded reports which stopping budget, if any, ends the run.
// Budgets are checked in a fixed order: metric calls, cost, iterations.
func (g *GEPA) budgetExceeded() string {
	if g.config.MaxMetricCalls > 0 && g.state.TotalMetricCalls >= g.config.MaxMetricCalls {
		return "metric call budget exhausted"
	}
	if g.config.MaxCostUSD > 0 && g.state.TotalCostUSD >= g.config.MaxCostUSD {
		return "cost budget exhausted"
	}
	if g.config.MaxIterations > 0 && g.state.Iteration > g.config.MaxIterations {
		return "iteration cap reached"
	}
	return ""
}

// charge attributes one completed evaluation to the shared counters: one
// metric call per instance plus the reported cost.
func (g *GEPA) charge(eval *core.EvalBatch) {
	g.state.TotalMetricCalls += len(eval.Scores)
	for _, m := range eval.Metrics {
		g.state.TotalCostUSD += m.CostUSD
	}
}

func (g *GEPA) archiveScores() []core.ObjectiveVector {
	scores := make([]core.ObjectiveVector, len(g.state.Archive))
	for i, rec := range g.state.Archive {
		scores[i] = rec.Scores
	}
	return scores
}

// observeFront recomputes the front (and hypervolume for 2-objective runs)
// for observability after each iteration.
func (g *GEPA) observeFront(ctx context.Context) {
	front := pareto.BuildFront(g.archiveScores(), g.config.ParetoEpsilon)
	frontScores := make([]core.ObjectiveVector, len(front))
	for i, idx := range front {
		frontScores[i] = g.state.Archive[idx].Scores
	}
	if hv, ok := pareto.Hypervolume2D(frontScores); ok {
		g.logger.Debug(ctx, "front size %d, hypervolume %.4f", len(front), hv)
	} else {
		g.logger.Debug(ctx, "front size %d", len(front))
	}
}

// persistIteration appends the iteration's archive event and writes a full
// checkpoint every CheckpointEvery iterations.
func (g *GEPA) persistIteration(ctx context.Context, parentIdx int, accepted bool) {
	if g.store == nil {
		return
	}

	kind := core.EventRejected
	data := map[string]interface{}{"parent_index": parentIdx}
	if accepted {
		kind = core.EventAccepted
		data["child_index"] = len(g.state.Archive) - 1
	}
	g.appendEvent(ctx, kind, data)

	if g.state.Iteration%g.config.CheckpointEvery == 0 {
		g.saveCheckpoint(ctx)
	}
}

func (g *GEPA) saveCheckpoint(ctx context.Context) {
	g.state.RNGState = g.rng.State()
	if err := g.store.SaveCheckpoint(ctx, g.state); err != nil {
		g.logger.Error(ctx, "checkpoint save failed: %v", err)
	}
}

func (g *GEPA) appendEvent(ctx context.Context, kind core.EventKind, data map[string]interface{}) {
	if g.store == nil {
		return
	}
	event := core.Event{
		Iteration: g.state.Iteration,
		Kind:      kind,
		Data:      data,
	}
	if err := g.store.AppendEvent(ctx, event); err != nil {
		g.logger.Error(ctx, "event append failed: %v", err)
	}
}

// finalize recomputes the final front and hypervolume, picks the best record
// by scalar score, persists a final checkpoint and finish event, and builds
// the result.
func (g *GEPA) finalize(ctx context.Context) (*GEPAResult, error) {
	front := pareto.BuildFront(g.archiveScores(), g.config.ParetoEpsilon)

	members := make([]FrontMember, len(front))
	frontScores := make([]core.ObjectiveVector, len(front))
	for i, idx := range front {
		rec := g.state.Archive[idx]
		members[i] = FrontMember{
			Index:       idx,
			Candidate:   rec.Candidate,
			Scores:      rec.Scores,
			ScalarScore: rec.ScalarScore,
		}
		frontScores[i] = rec.Scores
	}

	best := 0
	for i, rec := range g.state.Archive {
		if rec.ScalarScore > g.state.Archive[best].ScalarScore {
			best = i
		}
	}
	bestRec := g.state.Archive[best]

	result := &GEPAResult{
		BestCandidate:    bestRec.Candidate,
		BestScore:        bestRec.ScalarScore,
		BestScores:       bestRec.Scores,
		ParetoFront:      members,
		Iterations:       g.state.Iteration,
		TotalMetricCalls: g.state.TotalMetricCalls,
		TotalCostUSD:     g.state.TotalCostUSD,
		History:          g.history,
	}
	if hv, ok := pareto.Hypervolume2D(frontScores); ok {
		result.Hypervolume = hv
		result.HasHypervolume = true
	}

	if g.store != nil {
		g.saveCheckpoint(ctx)
		g.appendEvent(ctx, core.EventFinish, map[string]interface{}{
			"best_index": best,
			"best_score": bestRec.ScalarScore,
			"front_size": len(front),
		})
	}

	g.logger.Info(ctx, "finished after %d iterations: best=%.4f, front size %d, %d metric calls, $%.4f",
		result.Iterations, result.BestScore, len(front), result.TotalMetricCalls, result.TotalCostUSD)
	return result, nil
}

// objectiveVector derives the archive objective vector from a full
// evaluation: mean correctness plus negated mean latency so that both are
// maximized.
func objectiveVector(eval *core.EvalBatch) core.ObjectiveVector {
	v := core.ObjectiveVector{core.ObjectiveCorrectness: eval.MeanScore()}

	var meanLatency float64
	if len(eval.Metrics) > 0 {
		for _, m := range eval.Metrics {
			meanLatency += m.LatencyMS
		}
		meanLatency /= float64(len(eval.Metrics))
	}
	v[core.ObjectiveLatency] = -meanLatency
	return v
}
