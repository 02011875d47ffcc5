package metrics

import "math"

// Peak is the largest sample, or 0 with no samples.
type Peak struct {
	name    string
	channel string
	max     float64
	samples int
}

func NewPeak(name, channel string) *Peak {
	return &Peak{name: name, channel: channel}
}

func (p *Peak) Name() string    { return p.name }
func (p *Peak) Channel() string { return p.channel }

func (p *Peak) Observe(t, v float64) {
	if p.samples == 0 {
		p.max = v
	}
	p.max = math.Max(p.max, v)
	p.samples++
}

func (p *Peak) Value() float64 { return p.max }

func (p *Peak) Reset() {
	p.max = 0
	p.samples = 0
}
