package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/integrators"
	"github.com/san-kum/phasesim/internal/metrics"
	"github.com/san-kum/phasesim/internal/recorder"
	"github.com/san-kum/phasesim/internal/sim"
)

// Observer receives every committed sample of a running scenario.
type Observer func(t float64, names []string, row []float64)

type Config struct {
	Scenario   string
	Integrator string
	Dt         float64
	Duration   float64
	Params     map[string]float64
	MotorFile  string

	// CSVPath, when set, receives the recorded samples at the end of the run.
	CSVPath string

	Logger   *slog.Logger
	Hooks    []sim.Hook
	OnSample Observer
}

// Outcome is what a finished run produced.
type Outcome struct {
	Scenario  string
	Steps     uint64
	FinalTime float64
	Events    []sim.EventRecord
	Table     *recorder.Table
	Summary   map[string]float64
}

// Event returns the first applied event with the given name.
func (o *Outcome) Event(name string) (sim.EventRecord, bool) {
	for _, ev := range o.Events {
		if ev.Name == name {
			return ev, true
		}
	}
	return sim.EventRecord{}, false
}

// SummaryKeys returns the summary names in sorted order.
func (o *Outcome) SummaryKeys() []string {
	keys := make([]string, 0, len(o.Summary))
	for k := range o.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Runner builds and runs one scenario.
type Runner interface {
	Name() string
	Description() string
	Run(ctx context.Context, cfg Config) (*Outcome, error)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// newExecutor wires the parts every scenario shares: method, recorder,
// hooks and the sample observer.
func newExecutor[S any](cfg Config, rec *recorder.Recorder[S]) (*sim.Executor[S], error) {
	exec, err := sim.New[S](cfg.Dt, cfg.Duration, sim.WithLogger(cfg.logger()))
	if err != nil {
		return nil, err
	}

	name := cfg.Integrator
	if name == "" {
		name = "rk4"
	}
	method, err := integrators.Lookup[S](name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, dynamo.ErrInvalidConfig)
	}
	if err := exec.SetMethod(method); err != nil {
		return nil, err
	}
	if err := exec.SetRecorder(rec); err != nil {
		return nil, err
	}

	for _, h := range cfg.Hooks {
		exec.AcceptHook(h)
	}
	if cfg.OnSample != nil {
		names := rec.Names()
		exec.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			if ctx.Pos != sim.HookPosStepCommitted {
				return
			}
			if t, row, ok := rec.Last(); ok {
				cfg.OnSample(t, names, row)
			}
		}))
	}
	return exec, nil
}

func run[S any](ctx context.Context, cfg Config, exec *sim.Executor[S], rec *recorder.Recorder[S], state *S) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	exec.AcceptHook(sim.HookFunc(func(hc sim.HookCtx) {
		if hc.Pos == sim.HookPosStepCommitted && ctx.Err() != nil {
			exec.Stop()
		}
	}))
	if err := exec.Run(state); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Scenario, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Scenario, err)
	}
	clock := exec.Clock()
	return &Outcome{
		Scenario:  cfg.Scenario,
		Steps:     clock.Step,
		FinalTime: clock.T,
		Events:    exec.Events(),
		Table:     rec.Table(),
		Summary:   make(map[string]float64),
	}, nil
}

// summarize adds the metric values over the given samples to the summary.
func summarize(out *Outcome, table *recorder.Table, ms ...metrics.Metric) error {
	values, err := metrics.Evaluate(table, ms...)
	if err != nil {
		return fmt.Errorf("%s: %w", out.Scenario, err)
	}
	for k, v := range values {
		out.Summary[k] = v
	}
	return nil
}

func applyParams(cfg Config, set func(string, float64) error) error {
	keys := make([]string, 0, len(cfg.Params))
	for k := range cfg.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := set(k, cfg.Params[k]); err != nil {
			return fmt.Errorf("%s: %w: %w", cfg.Scenario, err, dynamo.ErrInvalidConfig)
		}
	}
	return nil
}
