package integrators

import "github.com/san-kum/phasesim/internal/dynamo"

// Euler is the explicit first order method. It is mostly useful as a
// baseline when comparing against RK4.
type Euler[S any] struct {
	scratch []float64
}

func NewEuler[S any]() *Euler[S] {
	return &Euler[S]{}
}

func (e *Euler[S]) Name() string { return "euler" }

func (e *Euler[S]) Step(state *S, a Adapter[S], clock dynamo.Clock, h float64) {
	t0 := clock.Stage(0, h)
	y0 := a.Load(state, t0)
	n := len(y0)
	if n == 0 {
		panic(&dynamo.SimulationError{Step: clock.Step, Time: clock.T, Op: "euler load", Wrapped: dynamo.ErrEmptyVector})
	}
	dy := a.Derive(state, t0)
	checkLen(dy, n, t0, "euler derivative")

	if len(e.scratch) != n {
		e.scratch = make([]float64, n)
	}
	for i := range y0 {
		e.scratch[i] = y0[i] + h*dy[i]
	}
	a.Store(state, e.scratch)
}
