package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/phasesim/internal/dynamo"
)

const (
	DefaultScenario   = "projectile"
	DefaultIntegrator = "rk4"
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
)

// Config is a scenario run as read from a YAML file or a preset.
type Config struct {
	Scenario   string             `yaml:"scenario"`
	Integrator string             `yaml:"integrator"`
	Dt         float64            `yaml:"dt"`
	Duration   float64            `yaml:"duration"`
	Params     map[string]float64 `yaml:"params,omitempty"`
	MotorFile  string             `yaml:"motor_file,omitempty"`
	Output     string             `yaml:"output,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:   DefaultScenario,
		Integrator: DefaultIntegrator,
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the executor cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.Scenario == "":
		return fmt.Errorf("scenario is required: %w", dynamo.ErrInvalidConfig)
	case !(c.Dt > 0):
		return fmt.Errorf("dt must be positive, got %g: %w", c.Dt, dynamo.ErrInvalidConfig)
	case !(c.Duration >= 0):
		return fmt.Errorf("duration must not be negative, got %g: %w", c.Duration, dynamo.ErrInvalidConfig)
	}
	return nil
}

// Clone returns a deep copy, so presets can be adjusted without touching
// the shared table.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// SetParam records a scenario parameter override.
func (c *Config) SetParam(name string, value float64) {
	if c.Params == nil {
		c.Params = make(map[string]float64)
	}
	c.Params[name] = value
}
