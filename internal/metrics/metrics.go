package metrics

import (
	"fmt"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/recorder"
)

// Metric reduces one recorded channel to a single number.
type Metric interface {
	Name() string
	Channel() string
	Observe(t, v float64)
	Value() float64
	Reset()
}

// Evaluate feeds every sample of the table to the metrics and returns their
// values by name.
func Evaluate(table *recorder.Table, ms ...Metric) (map[string]float64, error) {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		col, ok := table.Column(m.Channel())
		if !ok {
			return nil, fmt.Errorf("metric %s: channel %q not recorded: %w", m.Name(), m.Channel(), dynamo.ErrInvalidConfig)
		}
		m.Reset()
		for i, v := range col {
			m.Observe(table.Times[i], v)
		}
		out[m.Name()] = m.Value()
	}
	return out, nil
}
