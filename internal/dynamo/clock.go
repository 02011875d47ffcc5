package dynamo

import "fmt"

// Clock is the time stamp handed to every job and integrator stage.
type Clock struct {
	T    float64
	Dt   float64
	Step uint64
}

// NewClock returns a clock at t=0 with the given step size.
func NewClock(dt float64) Clock {
	return Clock{Dt: dt}
}

// Next returns the clock of the following step. T is rebuilt from the step
// count so that repeated calls do not drift.
func (c Clock) Next() Clock {
	step := c.Step + 1
	return Clock{T: c.Dt * float64(step), Dt: c.Dt, Step: step}
}

// Stage returns the clock seen by an integrator stage at T+offset when
// integrating with step h.
func (c Clock) Stage(offset, h float64) Clock {
	return Clock{T: c.T + offset, Dt: h, Step: c.Step}
}

// At returns a copy of the clock moved to time t, keeping step and Dt.
func (c Clock) At(t float64) Clock {
	c.T = t
	return c
}

func (c Clock) String() string {
	return fmt.Sprintf("step %d (t=%.4f, dt=%g)", c.Step, c.T, c.Dt)
}
