package metrics

import "math"

// Stability is the fraction of samples whose magnitude stays within the
// threshold. It is 1 with no samples.
type Stability struct {
	name       string
	channel    string
	threshold  float64
	violations int
	samples    int
}

func NewStability(name, channel string, threshold float64) *Stability {
	return &Stability{name: name, channel: channel, threshold: threshold}
}

func (s *Stability) Name() string    { return s.name }
func (s *Stability) Channel() string { return s.channel }

func (s *Stability) Observe(t, v float64) {
	s.samples++
	if math.Abs(v) > s.threshold {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
