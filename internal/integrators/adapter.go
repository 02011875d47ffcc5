package integrators

import (
	"fmt"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// Adapter exposes an arbitrary simulation state to an integrator as a flat
// vector. Load and Store must agree with Derive on the vector length for the
// lifetime of one executor.
//
// Store receives a slice that the integrator reuses between stages, so it
// must copy the values out rather than keep the slice.
type Adapter[S any] struct {
	Load   func(state *S, clock dynamo.Clock) []float64
	Derive func(state *S, clock dynamo.Clock) []float64
	Store  func(state *S, y []float64)
}

// Validate reports a missing adapter function.
func (a Adapter[S]) Validate() error {
	switch {
	case a.Load == nil:
		return fmt.Errorf("adapter load function is nil: %w", dynamo.ErrInvalidConfig)
	case a.Derive == nil:
		return fmt.Errorf("adapter derivative function is nil: %w", dynamo.ErrInvalidConfig)
	case a.Store == nil:
		return fmt.Errorf("adapter store function is nil: %w", dynamo.ErrInvalidConfig)
	}
	return nil
}

// Method advances a state by one step of size h through an adapter. On
// return the state holds exactly the step result.
type Method[S any] interface {
	Name() string
	Step(state *S, a Adapter[S], clock dynamo.Clock, h float64)
}

// Lookup returns a fresh integration method by name.
func Lookup[S any](name string) (Method[S], error) {
	switch name {
	case "rk4":
		return NewRK4[S](), nil
	case "euler":
		return NewEuler[S](), nil
	}
	return nil, fmt.Errorf("unknown integrator: %s", name)
}

// Names lists the methods known to Lookup.
func Names() []string {
	return []string{"euler", "rk4"}
}

func checkLen(v []float64, n int, clock dynamo.Clock, op string) {
	if len(v) != n {
		panic(&dynamo.SimulationError{
			Step:    clock.Step,
			Time:    clock.T,
			Op:      op,
			Wrapped: fmt.Errorf("got %d values, want %d: %w", len(v), n, dynamo.ErrDimensionMismatch),
		})
	}
}
