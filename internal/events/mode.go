package events

import (
	"fmt"

	"github.com/san-kum/phasesim/internal/dynamo"
)

// CrossingMode filters which sign transitions count as an event.
type CrossingMode int

const (
	// Any accepts both directions.
	Any CrossingMode = iota
	// Increasing accepts negative to positive transitions.
	Increasing
	// Decreasing accepts positive to negative transitions.
	Decreasing
)

func (m CrossingMode) String() string {
	switch m {
	case Any:
		return "any"
	case Increasing:
		return "increasing"
	case Decreasing:
		return "decreasing"
	}
	return fmt.Sprintf("crossing(%d)", int(m))
}

// accepts reports whether a crossing in direction dir (+1 rising, -1
// falling) qualifies.
func (m CrossingMode) accepts(dir int) bool {
	switch m {
	case Increasing:
		return dir > 0
	case Decreasing:
		return dir < 0
	}
	return dir != 0
}

// ParseCrossingMode converts a mode name back to a CrossingMode.
func ParseCrossingMode(name string) (CrossingMode, error) {
	switch name {
	case "any", "":
		return Any, nil
	case "increasing", "rising":
		return Increasing, nil
	case "decreasing", "falling":
		return Decreasing, nil
	}
	return Any, fmt.Errorf("unknown crossing mode %q: %w", name, dynamo.ErrInvalidConfig)
}
