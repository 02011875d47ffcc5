// Package viz renders running scenarios in the terminal.
//
// [Model] is a Bubble Tea program fed by a scenario run: every committed
// sample arrives as a [SampleMsg], every applied event as an [EventMsg] and
// the end of the run as a [DoneMsg]. The trajectory is drawn on a braille
// [Canvas]; one channel at a time is charted with asciigraph.
//
// # Key Bindings
//
//	Space - Freeze/unfreeze the display
//	Tab   - Cycle the charted channel
//	Q     - Quit
package viz
