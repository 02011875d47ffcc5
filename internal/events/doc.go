// Package events locates discrete events inside a fixed integration step.
//
// An event is declared as a scalar error function of the simulation state.
// Its zero crossing marks the event time. [RegulaFalsi] brackets a sign
// change between two samples and estimates the crossing by false position;
// the executor sub-steps to the estimate, re-samples and repeats until the
// error is within tolerance, then calls Apply exactly there.
//
//	ground := events.NewRegulaFalsi(
//	    func(s *Ball) float64 { return s.Y },
//	    func(s *Ball, c dynamo.Clock) { s.VY = -0.8 * s.VY },
//	    events.WithMode(events.Decreasing),
//	    events.WithTolerance(1e-9),
//	)
package events
