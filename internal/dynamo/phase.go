package dynamo

import "fmt"

// Phase is a stage of a simulation step. Phases run in declaration order.
type Phase int

const (
	Init Phase = iota
	PreIntegrate
	Integrate
	PostIntegrate
	Shutdown

	// NumPhases is the size of the phase set.
	NumPhases = int(Shutdown) + 1
)

var phaseNames = [NumPhases]string{
	Init:          "init",
	PreIntegrate:  "pre-integrate",
	Integrate:     "integrate",
	PostIntegrate: "post-integrate",
	Shutdown:      "shutdown",
}

func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Valid reports whether p is one of the declared phases.
func (p Phase) Valid() bool {
	return p >= Init && p <= Shutdown
}

// Phases lists every phase in execution order.
func Phases() []Phase {
	return []Phase{Init, PreIntegrate, Integrate, PostIntegrate, Shutdown}
}

// ParsePhase converts a phase name back to a Phase.
func ParsePhase(name string) (Phase, error) {
	for i, n := range phaseNames {
		if n == name {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q: %w", name, ErrInvalidConfig)
}
