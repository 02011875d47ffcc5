package sim

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/integrators"
)

const (
	// DefaultEventIterations is the refinement budget for locating one event.
	DefaultEventIterations = 50

	// maxEventsPerStep stops a step from looping on events that re-trigger
	// each other at the same instant.
	maxEventsPerStep = 64
)

type options struct {
	logger        *slog.Logger
	maxIterations int
}

// Option configures an Executor.
type Option func(*options)

// WithLogger sets the logger used for run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithEventIterations sets how many false position refinements an event may
// take before it is applied at the best estimate.
func WithEventIterations(n int) Option {
	return func(o *options) { o.maxIterations = n }
}

type namedEvent[S any] struct {
	name  string
	event Event[S]
}

// Executor drives a simulation state through fixed steps of named phases.
type Executor[S any] struct {
	HookableBase

	clock   dynamo.Clock
	endTime float64

	jobs [dynamo.NumPhases][]Job[S]

	adapter *integrators.Adapter[S]
	method  integrators.Method[S]

	recorder Sampler[S]
	events   []namedEvent[S]
	applied  []EventRecord

	clone      func(S) S
	checkpoint S

	maxIterations int
	logger        *slog.Logger
	started       bool
	stopped       atomic.Bool
}

// New creates an executor stepping by dt until endTime.
func New[S any](dt, endTime float64, opts ...Option) (*Executor[S], error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("dt must be positive, got %g: %w", dt, dynamo.ErrInvalidConfig)
	}
	if !(endTime >= 0) || math.IsInf(endTime, 0) {
		return nil, fmt.Errorf("end time must be finite and non-negative, got %g: %w", endTime, dynamo.ErrInvalidConfig)
	}

	o := options{logger: slog.Default(), maxIterations: DefaultEventIterations}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxIterations < 1 {
		return nil, fmt.Errorf("event iterations must be at least 1, got %d: %w", o.maxIterations, dynamo.ErrInvalidConfig)
	}

	return &Executor[S]{
		clock:         dynamo.NewClock(dt),
		endTime:       endTime,
		maxIterations: o.maxIterations,
		logger:        o.logger,
	}, nil
}

// AddJob appends a job to a phase. Jobs of one phase run in registration
// order.
func (e *Executor[S]) AddJob(phase dynamo.Phase, job Job[S]) error {
	if e.started {
		return dynamo.ErrRegistrationClosed
	}
	if !phase.Valid() || job == nil {
		return fmt.Errorf("add job to %s: %w", phase, dynamo.ErrInvalidConfig)
	}
	if phase == dynamo.Integrate && e.adapter != nil {
		return fmt.Errorf("integrate phase is driven by the installed integrator: %w", dynamo.ErrPhaseNotSchedulable)
	}
	e.jobs[phase] = append(e.jobs[phase], job)
	return nil
}

// SetIntegrator installs the adapter through which the state is integrated.
// RK4 is used unless SetMethod picks another method.
func (e *Executor[S]) SetIntegrator(
	load func(state *S, clock dynamo.Clock) []float64,
	derive func(state *S, clock dynamo.Clock) []float64,
	store func(state *S, y []float64),
) error {
	if e.started {
		return dynamo.ErrRegistrationClosed
	}
	if len(e.jobs[dynamo.Integrate]) > 0 {
		return fmt.Errorf("integrate phase already has user jobs: %w", dynamo.ErrPhaseNotSchedulable)
	}
	a := integrators.Adapter[S]{Load: load, Derive: derive, Store: store}
	if err := a.Validate(); err != nil {
		return err
	}
	e.adapter = &a
	if e.method == nil {
		e.method = integrators.NewRK4[S]()
	}
	return nil
}

// SetMethod replaces the integration method.
func (e *Executor[S]) SetMethod(m integrators.Method[S]) error {
	if e.started {
		return dynamo.ErrRegistrationClosed
	}
	if m == nil {
		return fmt.Errorf("nil integration method: %w", dynamo.ErrInvalidConfig)
	}
	e.method = m
	return nil
}

// SetRecorder attaches the sampler fed once per committed step.
func (e *Executor[S]) SetRecorder(r Sampler[S]) error {
	if e.started {
		return dynamo.ErrRegistrationClosed
	}
	e.recorder = r
	return nil
}

// SetCloner sets the deep copy used for checkpoints. Without it, states
// implementing Cloner are cloned through it and all others are copied by
// value.
func (e *Executor[S]) SetCloner(clone func(S) S) error {
	if e.started {
		return dynamo.ErrRegistrationClosed
	}
	e.clone = clone
	return nil
}

// AddEvent registers an event. Events require an installed integrator.
func (e *Executor[S]) AddEvent(name string, ev Event[S]) error {
	if e.started {
		return dynamo.ErrRegistrationClosed
	}
	if ev == nil {
		return fmt.Errorf("add event %q: %w", name, dynamo.ErrInvalidConfig)
	}
	e.events = append(e.events, namedEvent[S]{name: name, event: ev})
	return nil
}

// Clock returns the current clock.
func (e *Executor[S]) Clock() dynamo.Clock { return e.clock }

// EndTime returns the time the run stops at.
func (e *Executor[S]) EndTime() float64 { return e.endTime }

// Events returns the events applied so far, in the order they fired.
func (e *Executor[S]) Events() []EventRecord {
	out := make([]EventRecord, len(e.applied))
	copy(out, e.applied)
	return out
}

// Checkpoint returns a copy of the last committed state.
func (e *Executor[S]) Checkpoint() S {
	return e.copyOf(e.checkpoint)
}

// Stop ends the run after the step in progress. Shutdown jobs and the
// recorder flush still run. It is safe to call from hooks and from other
// goroutines.
func (e *Executor[S]) Stop() { e.stopped.Store(true) }

// Run executes the simulation once. Configuration problems found after the
// Init phase and recorder flush failures are returned; contract violations
// inside the integrator panic.
func (e *Executor[S]) Run(state *S) error {
	if e.started {
		return dynamo.ErrAlreadyRan
	}
	e.started = true

	if len(e.events) > 0 && e.adapter == nil {
		return fmt.Errorf("events need an installed integrator: %w", dynamo.ErrInvalidConfig)
	}

	e.runPhase(dynamo.Init, state)

	if e.adapter != nil {
		if len(e.adapter.Load(state, e.clock)) == 0 {
			return &dynamo.SimulationError{
				Step: e.clock.Step, Time: e.clock.T, Op: "integrator setup", Wrapped: dynamo.ErrEmptyVector,
			}
		}
	}
	for _, ne := range e.events {
		ne.event.Reset(state, e.clock.T)
	}
	e.checkpoint = e.copyOf(*state)

	for e.clock.T < e.endTime && !e.stopped.Load() {
		e.runPhase(dynamo.PreIntegrate, state)

		if e.adapter != nil {
			e.integrate(state)
		} else {
			e.runPhase(dynamo.Integrate, state)
		}

		e.runPhase(dynamo.PostIntegrate, state)

		e.clock = e.clock.Next()
		e.checkpoint = e.copyOf(*state)

		if e.recorder != nil {
			e.recorder.Sample(state, e.clock.T)
		}
		e.InvokeHook(HookCtx{Domain: e, Pos: HookPosStepCommitted, Item: e.clock})
	}

	e.runPhase(dynamo.Shutdown, state)

	if e.recorder != nil {
		if err := e.recorder.Flush(); err != nil {
			return fmt.Errorf("flush recorder: %w", err)
		}
	}
	return nil
}

func (e *Executor[S]) runPhase(phase dynamo.Phase, state *S) {
	for _, job := range e.jobs[phase] {
		job(state, e.clock)
	}
}

// integrate advances the state by one dt, stopping at every event that
// crosses inside the step.
func (e *Executor[S]) integrate(state *S) {
	dt := e.clock.Dt
	if len(e.events) == 0 {
		e.method.Step(state, *e.adapter, e.clock, dt)
		return
	}

	from := e.clock.T
	end := from + dt

	// PreIntegrate jobs may have moved the state since the last commit
	if len(e.jobs[dynamo.PreIntegrate]) > 0 {
		e.checkpoint = e.copyOf(*state)
	}
	for _, ne := range e.events {
		ne.event.Reset(state, from)
	}

	last := -1
	for fired := 0; ; fired++ {
		h := end - from
		e.method.Step(state, *e.adapter, e.clock.At(from), h)

		if fired >= maxEventsPerStep {
			e.logger.Warn("event limit reached, finishing step without events",
				"step", e.clock.Step, "t", from, "limit", maxEventsPerStep)
			return
		}

		idx, ttg := e.earliest(state, end, from)
		if idx < 0 {
			return
		}

		at, iterations, converged := e.locate(state, from, end, idx, ttg)

		// an estimate from the provisional end can land after the true root
		// of another event, so look for one that already changed sign
		for range e.events {
			j, jttg := e.crossedBefore(state, from, at, idx, last)
			if j < 0 {
				break
			}
			idx = j
			at, iterations, converged = e.locate(state, from, at, idx, jttg)
		}
		ne := e.events[idx]
		ne.event.Apply(state, e.clock.At(at))

		rec := EventRecord{
			Name:       ne.name,
			Time:       at,
			Step:       e.clock.Step,
			Iterations: iterations,
			Converged:  converged,
		}
		e.applied = append(e.applied, rec)
		if !converged {
			e.logger.Warn("event location did not converge, applied at best estimate",
				"event", ne.name, "t", at, "step", e.clock.Step, "iterations", iterations,
				"err", dynamo.ErrNoConvergence)
		} else {
			e.logger.Debug("event applied", "event", ne.name, "t", at, "iterations", iterations)
		}

		// the action may have changed what the other events measure
		for j, other := range e.events {
			if j != idx {
				other.event.Reset(state, at)
			}
		}
		e.checkpoint = e.copyOf(*state)
		e.InvokeHook(HookCtx{Domain: e, Pos: HookPosEventApplied, Item: rec})
		last = idx

		if end-at <= 1e-12*dt {
			return
		}
		from = at
	}
}

// earliest samples every event at the provisional end of the interval and
// returns the one with the smallest time to go, or -1.
func (e *Executor[S]) earliest(state *S, end, from float64) (int, float64) {
	idx := -1
	best := math.Inf(1)
	for i, ne := range e.events {
		ttg := ne.event.TimeToGo(state, end, from)
		if math.IsNaN(ttg) || math.IsInf(ttg, 1) {
			continue
		}
		if ttg < best {
			best, idx = ttg, i
		}
	}
	return idx, best
}

// crossedBefore re-seeds every event except the located one and the one
// applied at from, using the checkpoint, and samples them at the located
// time. It returns the first event that changed sign inside [from, at],
// with its bracket open, or -1. The state is left at time at.
func (e *Executor[S]) crossedBefore(state *S, from, at float64, located, last int) (int, float64) {
	seed := e.copyOf(e.checkpoint)
	for i, ne := range e.events {
		if i == located || i == last {
			continue
		}
		ne.event.Reset(&seed, from)
		ttg := ne.event.TimeToGo(state, at, from)
		if math.IsNaN(ttg) || math.IsInf(ttg, 1) {
			continue
		}
		return i, ttg
	}
	return -1, 0
}

// locate rolls back to the checkpoint and sub-steps to successive false
// position estimates until the event converges or the budget runs out. The
// state is left at the returned time.
func (e *Executor[S]) locate(state *S, from, end float64, idx int, ttg float64) (float64, int, bool) {
	ev := e.events[idx].event
	target := clamp(from+ttg, from, end)
	at := target

	for iter := 1; iter <= e.maxIterations; iter++ {
		*state = e.copyOf(e.checkpoint)
		if h := target - from; h > 0 {
			e.method.Step(state, *e.adapter, e.clock.At(from), h)
		}
		at = target

		next := ev.TimeToGo(state, at, from)
		if ev.Converged() {
			return at, iter, true
		}
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return at, iter, false
		}
		target = clamp(from+next, from, end)
	}
	return at, e.maxIterations, false
}

func (e *Executor[S]) copyOf(s S) S {
	if e.clone != nil {
		return e.clone(s)
	}
	if c, ok := any(s).(Cloner[S]); ok {
		return c.Clone()
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
