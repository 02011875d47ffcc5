package experiment

import (
	"context"
	"fmt"
	"sort"
)

type Registry struct {
	runners map[string]Runner
}

// NewRegistry returns a registry holding the built-in scenarios.
func NewRegistry() *Registry {
	r := &Registry{runners: make(map[string]Runner)}
	r.Register(Projectile{})
	r.Register(Rocket{})
	return r
}

func (r *Registry) Register(runner Runner) {
	r.runners[runner.Name()] = runner
}

func (r *Registry) Get(name string) (Runner, error) {
	runner, ok := r.runners[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario: %s", name)
	}
	return runner, nil
}

// Names lists the registered scenarios in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.runners))
	for name := range r.runners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run looks up cfg.Scenario and runs it.
func (r *Registry) Run(ctx context.Context, cfg Config) (*Outcome, error) {
	runner, err := r.Get(cfg.Scenario)
	if err != nil {
		return nil, err
	}
	return runner.Run(ctx, cfg)
}
