// Package sim runs a simulation through time in fixed steps.
//
// An [Executor] owns the clock and a table of jobs per [dynamo.Phase]. A run
// executes the Init jobs once, then repeats PreIntegrate, integration,
// PostIntegrate and a commit until the end time, and finally runs Shutdown
// and flushes the recorder.
//
// Integration is delegated to an [integrators.Method] through a three
// function adapter, so the executor never looks inside the state. Events
// registered with [Executor.AddEvent] are located inside the step by rolling
// back to the checkpoint and sub-stepping to the crossing time.
//
// # Example
//
//	exec, _ := sim.New[Ball](0.01, 10)
//	_ = exec.SetIntegrator(loadBall, deriveBall, storeBall)
//	_ = exec.AddEvent("ground", events.NewRegulaFalsi(height, bounce,
//	    events.WithMode(events.Decreasing)))
//	err := exec.Run(&ball)
//
// # Thread Safety
//
// An Executor runs everything on the calling goroutine and is NOT safe for
// concurrent use. Independent executors may run in parallel.
package sim
