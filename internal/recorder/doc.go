// Package recorder captures named scalar channels of a simulation state once
// per committed step and writes them out as CSV when the run ends.
//
//	rec := recorder.New[Cannon]("cannon.csv")
//	rec.Track("pos_x", func(c *Cannon) float64 { return c.X })
//	exec.SetRecorder(rec)
package recorder
