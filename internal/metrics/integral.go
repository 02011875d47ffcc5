package metrics

// Integral is the trapezoidal integral of a channel over the sample times.
type Integral struct {
	name    string
	channel string
	sum     float64
	lastT   float64
	lastV   float64
	samples int
}

func NewIntegral(name, channel string) *Integral {
	return &Integral{name: name, channel: channel}
}

func (in *Integral) Name() string    { return in.name }
func (in *Integral) Channel() string { return in.channel }

func (in *Integral) Observe(t, v float64) {
	if in.samples > 0 {
		in.sum += 0.5 * (v + in.lastV) * (t - in.lastT)
	}
	in.lastT, in.lastV = t, v
	in.samples++
}

func (in *Integral) Value() float64 { return in.sum }

func (in *Integral) Reset() {
	*in = Integral{name: in.name, channel: in.channel}
}
