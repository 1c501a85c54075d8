package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/gepa-go/pkg/errors"
)

// Load reads a YAML configuration file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfig, "reading config file")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.InvalidConfig, "parsing config file")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field constraints the tags
// cannot express.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return errors.Wrap(err, errors.InvalidConfig, "invalid configuration")
	}

	if c.Run.MaxIterations <= 0 && c.Run.MaxMetricCalls <= 0 && c.Run.MaxCostUSD <= 0 {
		return errors.New(errors.InvalidConfig, "at least one stopping budget (max_iterations, max_metric_calls, max_cost_usd) is required")
	}
	if c.Persistence.Backend != "" && c.Persistence.Path == "" {
		return errors.New(errors.InvalidConfig, "persistence.path is required when a backend is set")
	}
	return nil
}
