package metrics

import "math"

// Drift is the largest relative departure of a channel from its first
// sample, typically a conserved quantity such as energy.
type Drift struct {
	name     string
	channel  string
	initial  float64
	maxDrift float64
	samples  int
}

func NewDrift(name, channel string) *Drift {
	return &Drift{name: name, channel: channel}
}

func (d *Drift) Name() string    { return d.name }
func (d *Drift) Channel() string { return d.channel }

func (d *Drift) Observe(t, v float64) {
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(v-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *Drift) Value() float64 { return d.maxDrift }

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
