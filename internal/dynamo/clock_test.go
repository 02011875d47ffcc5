package dynamo

import (
	"errors"
	"testing"
)

func TestClockNextDoesNotDrift(t *testing.T) {
	for _, dt := range []float64{0.1, 0.01, 0.003, 1.0 / 3.0} {
		c := NewClock(dt)
		for i := 0; i < 100000; i++ {
			c = c.Next()
			if c.T != dt*float64(c.Step) {
				t.Fatalf("dt=%g step %d: t=%v, want %v", dt, c.Step, c.T, dt*float64(c.Step))
			}
		}
	}
}

func TestClockStage(t *testing.T) {
	c := Clock{T: 2.0, Dt: 0.1, Step: 20}
	s := c.Stage(0.5, 0.05)

	if s.T != 2.5 {
		t.Errorf("stage time = %v, want 2.5", s.T)
	}
	if s.Dt != 0.05 {
		t.Errorf("stage dt = %v, want 0.05", s.Dt)
	}
	if s.Step != 20 {
		t.Errorf("stage step = %d, want 20", s.Step)
	}
	if c.T != 2.0 {
		t.Error("Stage must not modify the receiver")
	}
}

func TestPhaseOrderAndNames(t *testing.T) {
	phases := Phases()
	if len(phases) != NumPhases {
		t.Fatalf("expected %d phases, got %d", NumPhases, len(phases))
	}
	for i, p := range phases {
		if int(p) != i {
			t.Errorf("phase %s has ordinal %d, want %d", p, int(p), i)
		}
		back, err := ParsePhase(p.String())
		if err != nil || back != p {
			t.Errorf("ParsePhase(%q) = %v, %v", p.String(), back, err)
		}
	}
}

func TestParsePhaseUnknown(t *testing.T) {
	_, err := ParsePhase("teardown")
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if Phase(42).Valid() {
		t.Error("phase 42 should not be valid")
	}
}
