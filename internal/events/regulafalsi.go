package events

import (
	"math"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// NoEvent is returned by TimeToGo when no qualifying crossing is pending.
var NoEvent = math.Inf(1)

// DefaultTolerance is the error magnitude under which a crossing counts as
// located.
const DefaultTolerance = 1e-9

// ErrorFunc maps a state to the scalar whose zero crossing marks the event.
type ErrorFunc[S any] func(state *S) float64

// Action mutates the state at the located event time.
type Action[S any] func(state *S, clock dynamo.Clock)

type settings struct {
	tolerance float64
	mode      CrossingMode
}

// Option configures a RegulaFalsi detector.
type Option func(*settings)

// WithTolerance sets the convergence tolerance on |error|.
func WithTolerance(tol float64) Option {
	return func(s *settings) { s.tolerance = tol }
}

// WithMode sets which crossing directions trigger the event.
func WithMode(mode CrossingMode) Option {
	return func(s *settings) { s.mode = mode }
}

type sample struct {
	t, e float64
}

// RegulaFalsi detects and locates zero crossings of an error function by
// false position. Once a crossing is bracketed it switches to refinement,
// using the Illinois modification so that one retained endpoint cannot
// stall convergence.
type RegulaFalsi[S any] struct {
	errFn     ErrorFunc[S]
	action    Action[S]
	tolerance float64
	mode      CrossingMode

	prev     sample
	hasPrev  bool
	prevSign int
	last     float64

	bracketing bool
	lo, hi     sample
	side       int
	crossing   int

	applied int
}

// NewRegulaFalsi builds a detector. A nil action makes the event a pure
// marker: it is still located and recorded by the executor.
func NewRegulaFalsi[S any](errFn ErrorFunc[S], action Action[S], opts ...Option) *RegulaFalsi[S] {
	cfg := settings{tolerance: DefaultTolerance, mode: Any}
	for _, opt := range opts {
		opt(&cfg)
	}
	if errFn == nil {
		panic("events: error function may not be nil")
	}
	if cfg.tolerance <= 0 || math.IsNaN(cfg.tolerance) {
		panic("events: tolerance must be positive")
	}
	return &RegulaFalsi[S]{
		errFn:     errFn,
		action:    action,
		tolerance: cfg.tolerance,
		mode:      cfg.mode,
		last:      math.NaN(),
	}
}

// Mode returns the crossing directions that trigger the event.
func (d *RegulaFalsi[S]) Mode() CrossingMode { return d.mode }

// Tolerance returns the error magnitude under which a crossing is located.
func (d *RegulaFalsi[S]) Tolerance() float64 { return d.tolerance }

// Applied returns how many times the event has fired.
func (d *RegulaFalsi[S]) Applied() int { return d.applied }

// Reset drops any bracket and seeds the detector with the error at time t.
// A sample within tolerance of zero keeps the previously known side, so a
// state resting on the surface does not arm a spurious crossing.
func (d *RegulaFalsi[S]) Reset(state *S, t float64) {
	e := d.errFn(state)
	d.bracketing = false
	s := sign(e)
	if d.hasPrev && math.Abs(e) < d.tolerance {
		s = 0
	}
	d.record(t, e, s)
}

// TimeToGo samples the error at time now and returns the estimated time
// from stepStart to a qualifying crossing, or NoEvent.
//
// Without a bracket, the sample is compared with the previous one. A sign
// change in the configured direction opens a bracket; any other outcome,
// including a flip in the wrong direction, just replaces the stored sample.
// With a bracket open, the sample narrows it and a refined estimate is
// returned.
func (d *RegulaFalsi[S]) TimeToGo(state *S, now, stepStart float64) float64 {
	e := d.errFn(state)
	d.last = e

	if d.bracketing {
		return d.refine(now, e) - stepStart
	}

	cur := sign(e)
	if !d.hasPrev || d.prevSign == 0 || cur == d.prevSign {
		d.record(now, e, cur)
		return NoEvent
	}

	// resting on the surface is not a new crossing
	if cur == 0 && math.Abs(d.prev.e) < d.tolerance {
		d.record(now, e, cur)
		return NoEvent
	}

	dir := -d.prevSign
	if !d.mode.accepts(dir) {
		d.record(now, e, cur)
		return NoEvent
	}

	d.bracketing = true
	d.crossing = dir
	d.side = 0
	d.lo = d.prev
	d.hi = sample{t: now, e: e}
	return d.estimate() - stepStart
}

// Converged reports whether the last sample is within tolerance of the
// root, or the bracket has shrunk below the resolution of float64 time.
func (d *RegulaFalsi[S]) Converged() bool {
	if math.Abs(d.last) < d.tolerance {
		return true
	}
	if !d.bracketing {
		return false
	}
	width := d.hi.t - d.lo.t
	return width <= 4*epsilon*math.Max(1, math.Abs(d.hi.t))
}

// Apply fires the event action and re-seeds the detector from the
// post-event state. A post-event error within tolerance, or one sampled
// after an unconverged search, is taken to be on the far side of the
// crossing so the same crossing is not reported again.
func (d *RegulaFalsi[S]) Apply(state *S, clock dynamo.Clock) {
	located := d.Converged()
	if d.action != nil {
		d.action(state, clock)
	}
	d.applied++

	e := d.errFn(state)
	post := sign(e)
	if post == 0 || math.Abs(e) < d.tolerance || !located {
		post = d.crossing
	}
	d.bracketing = false
	d.crossing = 0
	d.record(clock.T, e, post)
}

func (d *RegulaFalsi[S]) record(t, e float64, s int) {
	d.prev = sample{t: t, e: e}
	d.hasPrev = true
	if s != 0 {
		d.prevSign = s
	}
	d.last = e
}

func (d *RegulaFalsi[S]) refine(now, e float64) float64 {
	s := sample{t: now, e: e}
	switch {
	case e == 0:
		d.lo, d.hi = s, s
		return now
	case sign(e) == sign(d.lo.e):
		d.lo = s
		if d.side == -1 {
			d.hi.e /= 2
		}
		d.side = -1
	default:
		d.hi = s
		if d.side == 1 {
			d.lo.e /= 2
		}
		d.side = 1
	}
	return d.estimate()
}

// estimate is the false position root of the current bracket, clamped to it.
func (d *RegulaFalsi[S]) estimate() float64 {
	lo, hi := d.lo, d.hi
	if hi.e == lo.e {
		return hi.t
	}
	root := lo.t - lo.e*(hi.t-lo.t)/(hi.e-lo.e)
	return math.Min(math.Max(root, lo.t), hi.t)
}

const epsilon = 2.220446049250313e-16

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
