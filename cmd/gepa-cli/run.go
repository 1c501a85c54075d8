package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/XiaoConstantine/gepa-go/pkg/adapters"
	"github.com/XiaoConstantine/gepa-go/pkg/config"
	"github.com/XiaoConstantine/gepa-go/pkg/core"
	"github.com/XiaoConstantine/gepa-go/pkg/datasets"
	"github.com/XiaoConstantine/gepa-go/pkg/llms"
	"github.com/XiaoConstantine/gepa-go/pkg/logging"
	"github.com/XiaoConstantine/gepa-go/pkg/metrics"
	"github.com/XiaoConstantine/gepa-go/pkg/optimizers"
	"github.com/XiaoConstantine/gepa-go/pkg/persistence"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an optimization from a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimization(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "gepa.yaml", "path to the run configuration file")
	return cmd
}

func runOptimization(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := setupLogging(cfg.Logging); err != nil {
		return err
	}
	logger := logging.GetLogger()

	trainset, err := datasets.Load(cfg.Datasets.TrainPath)
	if err != nil {
		return err
	}
	var valset []core.Instance
	if cfg.Datasets.ValidationPath != "" {
		valset, err = datasets.Load(cfg.Datasets.ValidationPath)
		if err != nil {
			return err
		}
	}

	taskLM, err := llms.NewAnthropicLM("", cfg.LLM.Task.Model, cfg.LLM.Task.MaxTokens)
	if err != nil {
		return err
	}
	reflectionLM := core.ReflectionLM(taskLM)
	if cfg.LLM.Reflection.Model != "" {
		rlm, err := llms.NewAnthropicLM("", cfg.LLM.Reflection.Model, cfg.LLM.Reflection.MaxTokens)
		if err != nil {
			return err
		}
		reflectionLM = rlm
	}

	metric, ok := metrics.ByName(cfg.Run.Metric, cfg.Run.AnswerKey)
	if !ok {
		return fmt.Errorf("unknown metric %q", cfg.Run.Metric)
	}
	adapter := adapters.New(taskRunner(taskLM), metric,
		adapters.WithMaxWorkers(cfg.Run.MaxWorkers))

	components := make([]core.Component, len(cfg.Seed))
	for i, c := range cfg.Seed {
		components[i] = core.Component{Name: c.Name, Text: c.Text}
	}
	seed := core.NewCandidate(components...)

	opts := []optimizers.GEPAOption{
		optimizers.WithMaxIterations(cfg.Run.MaxIterations),
		optimizers.WithMaxMetricCalls(cfg.Run.MaxMetricCalls),
		optimizers.WithMaxCost(cfg.Run.MaxCostUSD),
		optimizers.WithMinibatchSize(cfg.Run.MinibatchSize),
		optimizers.WithTieEpsilon(cfg.Run.TieEpsilon),
		optimizers.WithParetoEpsilon(cfg.Run.ParetoEpsilon),
		optimizers.WithCandidateStrategy(cfg.Run.CandidateStrategy),
		optimizers.WithComponentStrategy(cfg.Run.ComponentStrategy),
		optimizers.WithRNGSeed(cfg.Run.RNGSeed),
		optimizers.WithCheckpointEvery(cfg.Run.CheckpointEvery),
		optimizers.WithReflectionLM(reflectionLM),
	}
	if cfg.Run.SkipPerfectScore {
		opts = append(opts, optimizers.WithSkipPerfectScore(cfg.Run.PerfectScore))
	}
	if cfg.Run.SteeringHint != "" {
		opts = append(opts, optimizers.WithSteeringHint(cfg.Run.SteeringHint))
	}
	if valset != nil {
		opts = append(opts, optimizers.WithValidationSet(valset))
	}

	switch cfg.Persistence.Backend {
	case "file":
		store, err := persistence.NewFileStore(cfg.Persistence.Path)
		if err != nil {
			return err
		}
		opts = append(opts, optimizers.WithCheckpointStore(store))
	case "sqlite":
		store, err := persistence.NewSQLiteStore(cfg.Persistence.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, optimizers.WithCheckpointStore(store))
	}

	gepa, err := optimizers.NewGEPA(seed, adapter, trainset, opts...)
	if err != nil {
		return err
	}

	result, err := gepa.Optimize(ctx)
	if err != nil {
		return err
	}

	logger.Info(ctx, "best scalar score: %.4f over %d iterations", result.BestScore, result.Iterations)
	printResult(result)
	return nil
}

func setupLogging(cfg config.LoggingConfig) error {
	outputs := []logging.Output{logging.NewConsoleOutput(true)}
	if cfg.File != "" {
		fileOut, err := logging.NewFileOutput(cfg.File)
		if err != nil {
			return err
		}
		outputs = append(outputs, fileOut)
	}
	logging.SetLogger(logging.NewLogger(logging.Config{
		Severity: logging.ParseSeverity(cfg.Level),
		Outputs:  outputs,
	}))
	return nil
}

// taskRunner renders the candidate's components above the instance input and
// calls the task model.
func taskRunner(lm *llms.AnthropicLM) adapters.RunFunc {
	return func(ctx context.Context, candidate core.Candidate, instance core.Instance) (*adapters.RunResult, error) {
		var b strings.Builder
		for _, name := range candidate.Names {
			b.WriteString(candidate.Texts[name])
			b.WriteString("\n\n")
		}
		b.WriteString(instanceInput(instance))

		resp, err := lm.Generate(ctx, b.String())
		if err != nil {
			return nil, err
		}
		return &adapters.RunResult{Output: resp.Text}, nil
	}
}

func instanceInput(instance core.Instance) string {
	for _, key := range []string{"input", "question", "prompt"} {
		if v, ok := instance[key].(string); ok {
			return v
		}
	}
	return fmt.Sprintf("%v", instance)
}

func printResult(result *optimizers.GEPAResult) {
	fmt.Println("=== Best candidate ===")
	for _, name := range result.BestCandidate.Names {
		fmt.Printf("--- %s ---\n%s\n\n", name, result.BestCandidate.Texts[name])
	}
	fmt.Printf("scalar score: %.4f\n", result.BestScore)
	fmt.Printf("pareto front: %d member(s)\n", len(result.ParetoFront))
	for _, member := range result.ParetoFront {
		fmt.Printf("  [%d] scalar=%.4f scores=%v\n", member.Index, member.ScalarScore, member.Scores)
	}
	if result.HasHypervolume {
		fmt.Printf("hypervolume: %.4f\n", result.Hypervolume)
	}
	fmt.Printf("metric calls: %d, cost: $%.4f\n", result.TotalMetricCalls, result.TotalCostUSD)
}
