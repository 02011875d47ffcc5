package sim

import "github.com/san-kum/phasesim/internal/dynamo"

// Job is a user callback bound to a phase. Jobs may capture their own
// mutable state; that is the only memory carried across steps besides the
// simulation state.
type Job[S any] func(state *S, clock dynamo.Clock)

// Sampler records one row per committed step and serializes the rows when
// the run ends.
type Sampler[S any] interface {
	Sample(state *S, t float64)
	Flush() error
}

// Event is a discrete state change located at the zero crossing of an
// error function. See events.RegulaFalsi for the standard implementation.
type Event[S any] interface {
	// Reset drops any pending search and samples the event at time t.
	Reset(state *S, t float64)
	// TimeToGo samples the event at time now and returns the estimated time
	// from stepStart to a qualifying crossing, or +Inf.
	TimeToGo(state *S, now, stepStart float64) float64
	// Converged reports whether the last sample located the crossing.
	Converged() bool
	// Apply fires the event at clock.T and prepares the next search.
	Apply(state *S, clock dynamo.Clock)
}

// Cloner is implemented by states that need a deep copy for checkpoints,
// typically because they hold slices, maps or pointers.
type Cloner[S any] interface {
	Clone() S
}

// EventRecord describes one applied event.
type EventRecord struct {
	Name       string
	Time       float64
	Step       uint64
	Iterations int
	Converged  bool
}
