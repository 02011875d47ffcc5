package dynamo

import (
	"errors"
	"fmt"
)

// Configuration errors. These are programming mistakes and are reported at
// setup or on first use.
var (
	// ErrDimensionMismatch indicates integrator stages disagreeing on vector length.
	ErrDimensionMismatch = errors.New("phasesim: dimension mismatch between integrator stages")

	// ErrEmptyVector indicates an integrator installed over a zero-length state vector.
	ErrEmptyVector = errors.New("phasesim: integrator state vector is empty")

	// ErrRegistrationClosed indicates a job or event registered after Run started.
	ErrRegistrationClosed = errors.New("phasesim: registration closed, executor already running")

	// ErrPhaseNotSchedulable indicates user jobs on the Integrate phase while an integrator is installed.
	ErrPhaseNotSchedulable = errors.New("phasesim: phase not schedulable")

	// ErrAlreadyRan indicates a second call to Run on the same executor.
	ErrAlreadyRan = errors.New("phasesim: executor already ran")

	// ErrInvalidConfig indicates a bad parameter such as a non-positive step.
	ErrInvalidConfig = errors.New("phasesim: invalid configuration")

	// ErrUnsorted indicates lookup table abscissas that are not strictly increasing.
	ErrUnsorted = errors.New("phasesim: breakpoints not strictly increasing")
)

// Domain and numerical errors.
var (
	// ErrOutOfRange indicates a lookup outside a table's domain.
	ErrOutOfRange = errors.New("phasesim: value outside table range")

	// ErrNoConvergence indicates an event root search that ran out of iterations.
	ErrNoConvergence = errors.New("phasesim: event location did not converge")

	// ErrInvalidState indicates NaN or Inf in a state vector.
	ErrInvalidState = errors.New("phasesim: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an error with the step it happened at.
type SimulationError struct {
	Step    uint64
	Time    float64
	Op      string
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s at step %d (t=%.4f): %v", e.Op, e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
