// Package dynamo provides the shared primitives of the phasesim kernel.
//
// The package defines the types every other package agrees on:
//
//   - [Clock]: simulation time, step size and step count
//   - [Phase]: the fixed, ordered stages of a simulation step
//   - [Vector]: the flattened degrees of freedom an integrator advances
//   - [SimulationError]: an error carrying the step and time it happened at
//
// # Clock invariant
//
// The executor never accumulates time. After every committed step the clock
// is rebuilt from the step count, so T == Dt*Step holds exactly:
//
//	c := dynamo.NewClock(0.01)
//	for i := 0; i < 1000; i++ {
//	    c = c.Next()
//	}
//	// c.T == 0.01 * 1000
package dynamo
