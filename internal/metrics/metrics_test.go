package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/phasesim/internal/dynamo"
	"github.com/san-kum/phasesim/internal/recorder"
)

func table() *recorder.Table {
	return &recorder.Table{
		Names: []string{"energy", "thrust"},
		Times: []float64{0, 1, 2, 3},
		Rows: [][]float64{
			{10, 0},
			{10.5, 2},
			{9, 2},
			{10, 0},
		},
	}
}

func TestEvaluate(t *testing.T) {
	got, err := Evaluate(table(),
		NewPeak("max_energy", "energy"),
		NewDrift("energy_drift", "energy"),
		NewIntegral("impulse", "thrust"),
		NewStability("quiet", "thrust", 1),
	)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]float64{
		"max_energy":   10.5,
		"energy_drift": 0.1,
		"impulse":      4,
		"quiet":        0.5,
	}
	for k, v := range want {
		if math.Abs(got[k]-v) > 1e-12 {
			t.Errorf("%s: expected %g, got %g", k, v, got[k])
		}
	}
}

func TestEvaluateUnknownChannel(t *testing.T) {
	_, err := Evaluate(table(), NewPeak("p", "altitude"))
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestEvaluateResets(t *testing.T) {
	p := NewPeak("p", "energy")
	p.Observe(0, 100)

	got, err := Evaluate(table(), p)
	if err != nil {
		t.Fatal(err)
	}
	if got["p"] != 10.5 {
		t.Errorf("stale sample survived evaluation: %g", got["p"])
	}
}

func TestPeakOfNegativeChannel(t *testing.T) {
	p := NewPeak("p", "x")
	p.Observe(0, -3)
	p.Observe(1, -2)
	if p.Value() != -2 {
		t.Errorf("expected -2, got %g", p.Value())
	}
}

func TestEmptyMetrics(t *testing.T) {
	if NewStability("s", "x", 1).Value() != 1 {
		t.Error("stability without samples should be 1")
	}
	if NewDrift("d", "x").Value() != 0 {
		t.Error("drift without samples should be 0")
	}
	if NewIntegral("i", "x").Value() != 0 {
		t.Error("integral without samples should be 0")
	}
}
