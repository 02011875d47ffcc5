package viz

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/phasesim/internal/experiment"
	"github.com/san-kum/phasesim/internal/sim"
)

// Sender is the part of *tea.Program a run needs to report to the view.
type Sender interface {
	Send(msg tea.Msg)
}

// Observer forwards samples to the view. A positive pace sleeps after each
// sample so the run plays back at a watchable speed.
func Observer(s Sender, pace time.Duration) experiment.Observer {
	return func(t float64, names []string, row []float64) {
		s.Send(SampleMsg{
			T:     t,
			Names: names,
			Row:   append([]float64(nil), row...),
		})
		if pace > 0 {
			time.Sleep(pace)
		}
	}
}

// EventHook forwards applied events to the view.
func EventHook(s Sender) sim.Hook {
	return sim.HookFunc(func(ctx sim.HookCtx) {
		if ctx.Pos != sim.HookPosEventApplied {
			return
		}
		if rec, ok := ctx.Item.(sim.EventRecord); ok {
			s.Send(EventMsg(rec))
		}
	})
}
