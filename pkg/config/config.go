// Package config defines the YAML-loadable run configuration for gepa-go and
// its validation.
package config

// Config represents the complete configuration for one optimization run.
type Config struct {
	// Run holds the optimizer parameters.
	Run RunConfig `yaml:"run" validate:"required"`

	// Seed is the initial candidate: ordered named text components.
	Seed []SeedComponent `yaml:"seed" validate:"required,min=1,dive"`

	// Datasets point at local instance files.
	Datasets DatasetsConfig `yaml:"datasets" validate:"required"`

	// LLM configures the task and reflection models.
	LLM LLMConfig `yaml:"llm,omitempty" validate:"omitempty"`

	// Persistence configures checkpointing.
	Persistence PersistenceConfig `yaml:"persistence,omitempty" validate:"omitempty"`

	// Logging configures log output.
	Logging LoggingConfig `yaml:"logging,omitempty" validate:"omitempty"`
}

// RunConfig mirrors the optimizer's tunables. At least one of the three
// stopping budgets must be positive.
type RunConfig struct {
	MaxIterations  int     `yaml:"max_iterations" validate:"min=0"`
	MaxMetricCalls int     `yaml:"max_metric_calls" validate:"min=0"`
	MaxCostUSD     float64 `yaml:"max_cost_usd" validate:"min=0"`

	MinibatchSize     int     `yaml:"minibatch_size" validate:"min=1"`
	TieEpsilon        float64 `yaml:"tie_epsilon" validate:"min=0"`
	ParetoEpsilon     float64 `yaml:"pareto_epsilon" validate:"min=0"`
	CandidateStrategy string  `yaml:"candidate_strategy" validate:"oneof=current_best pareto"`
	ComponentStrategy string  `yaml:"component_strategy" validate:"oneof=round_robin all"`

	SkipPerfectScore bool    `yaml:"skip_perfect_score"`
	PerfectScore     float64 `yaml:"perfect_score" validate:"min=0"`

	RNGSeed         uint32 `yaml:"rng_seed"`
	CheckpointEvery int    `yaml:"checkpoint_every" validate:"min=1"`

	// Metric names the scoring function applied to task outputs.
	Metric string `yaml:"metric" validate:"oneof=exact contains f1"`
	// AnswerKey is the instance field holding the expected answer.
	AnswerKey string `yaml:"answer_key" validate:"required"`

	// SteeringHint is optional free text appended to reflection prompts.
	SteeringHint string `yaml:"steering_hint,omitempty"`

	// MaxWorkers bounds concurrent instance evaluation in the adapter.
	MaxWorkers int `yaml:"max_workers" validate:"min=1"`
}

// SeedComponent is one named text of the seed candidate.
type SeedComponent struct {
	Name string `yaml:"name" validate:"required"`
	Text string `yaml:"text" validate:"required"`
}

// DatasetsConfig points at the instance files. Validation defaults to the
// training set when empty.
type DatasetsConfig struct {
	TrainPath      string `yaml:"train_path" validate:"required"`
	ValidationPath string `yaml:"validation_path,omitempty"`
}

// LLMConfig configures the language models.
type LLMConfig struct {
	// Task is the model executed against each instance.
	Task ModelConfig `yaml:"task,omitempty"`
	// Reflection is the model proposing component rewrites. Falls back to
	// the task model when unset.
	Reflection ModelConfig `yaml:"reflection,omitempty"`
}

// ModelConfig names one model endpoint.
type ModelConfig struct {
	Provider  string `yaml:"provider,omitempty" validate:"omitempty,oneof=anthropic"`
	Model     string `yaml:"model,omitempty"`
	MaxTokens int    `yaml:"max_tokens,omitempty" validate:"min=0"`
}

// PersistenceConfig selects the checkpoint backend.
type PersistenceConfig struct {
	// Backend is "file", "sqlite" or empty for no persistence.
	Backend string `yaml:"backend,omitempty" validate:"omitempty,oneof=file sqlite"`
	// Path is the checkpoint directory (file backend) or database file
	// (sqlite backend).
	Path string `yaml:"path,omitempty"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARN ERROR FATAL"`
	// File, when set, duplicates log output into the given file.
	File string `yaml:"file,omitempty"`
}

// DefaultConfig returns the configuration defaults; Load merges the file
// contents over it.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			MinibatchSize:     3,
			CandidateStrategy: "pareto",
			ComponentStrategy: "round_robin",
			PerfectScore:      1.0,
			CheckpointEvery:   5,
			MaxWorkers:        4,
			Metric:            "contains",
			AnswerKey:         "answer",
		},
		LLM: LLMConfig{
			Task: ModelConfig{
				Provider:  "anthropic",
				MaxTokens: 1024,
			},
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}
