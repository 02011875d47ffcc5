package integrators

import "github.com/san-kum/phasesim/internal/dynamo"

// RK4 is the classical fourth order Runge-Kutta method. Scratch buffers are
// kept between steps, so one RK4 value must not be shared between
// executors running concurrently.
type RK4[S any] struct {
	y0, k1, k2, k3, k4 []float64
	scratch            []float64
}

func NewRK4[S any]() *RK4[S] {
	return &RK4[S]{}
}

func (r *RK4[S]) Name() string { return "rk4" }

func (r *RK4[S]) ensureScratch(n int) {
	if len(r.k1) != n {
		r.y0 = make([]float64, n)
		r.k1 = make([]float64, n)
		r.k2 = make([]float64, n)
		r.k3 = make([]float64, n)
		r.k4 = make([]float64, n)
		r.scratch = make([]float64, n)
	}
}

func (r *RK4[S]) Step(state *S, a Adapter[S], clock dynamo.Clock, h float64) {
	t0 := clock.Stage(0, h)
	tHalf := clock.Stage(0.5*h, h)
	tFull := clock.Stage(h, h)

	y0 := a.Load(state, t0)
	n := len(y0)
	if n == 0 {
		panic(&dynamo.SimulationError{Step: clock.Step, Time: clock.T, Op: "rk4 load", Wrapped: dynamo.ErrEmptyVector})
	}
	r.ensureScratch(n)
	copy(r.y0, y0)

	// the state already holds y0, so k1 needs no store
	k1 := a.Derive(state, t0)
	checkLen(k1, n, t0, "rk4 k1")
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = r.y0[i] + 0.5*h*r.k1[i]
	}
	a.Store(state, r.scratch)
	k2 := a.Derive(state, tHalf)
	checkLen(k2, n, tHalf, "rk4 k2")
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = r.y0[i] + 0.5*h*r.k2[i]
	}
	a.Store(state, r.scratch)
	k3 := a.Derive(state, tHalf)
	checkLen(k3, n, tHalf, "rk4 k3")
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = r.y0[i] + h*r.k3[i]
	}
	a.Store(state, r.scratch)
	k4 := a.Derive(state, tFull)
	checkLen(k4, n, tFull, "rk4 k4")
	copy(r.k4, k4)

	h6 := h / 6.0
	for i := 0; i < n; i++ {
		r.scratch[i] = r.y0[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}
	a.Store(state, r.scratch)
}

// RK4Vector advances a bare vector by one RK4 step. It is meant for
// Integrate jobs that step their own vectors instead of installing an
// adapter on the executor.
func RK4Vector(y []float64, h float64, f func(y []float64) []float64) []float64 {
	v := dynamo.Vector(y)
	k1 := dynamo.Vector(f(v.Clone()))
	k2 := dynamo.Vector(f(v.Axpy(0.5*h, k1)))
	k3 := dynamo.Vector(f(v.Axpy(0.5*h, k2)))
	k4 := dynamo.Vector(f(v.Axpy(h, k3)))

	slope := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return v.Axpy(h/6, slope)
}
