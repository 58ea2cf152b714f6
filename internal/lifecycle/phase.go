// Package lifecycle plans and executes the devcontainer provisioning
// state machine: a fixed sequence of phases walked strictly in order
// against a provider backend.
package lifecycle

import "fmt"

// Phase is one named stage of the lifecycle state machine.
type Phase int

const (
	PhaseResolve Phase = iota
	PhaseBuild
	PhaseCreate
	PhaseStart
	PhasePostCreate
	PhasePostAttach
)

// Phases lists every phase in execution order.
var Phases = [...]Phase{
	PhaseResolve,
	PhaseBuild,
	PhaseCreate,
	PhaseStart,
	PhasePostCreate,
	PhasePostAttach,
}

func (p Phase) String() string {
	switch p {
	case PhaseResolve:
		return "resolve"
	case PhaseBuild:
		return "build"
	case PhaseCreate:
		return "create"
	case PhaseStart:
		return "start"
	case PhasePostCreate:
		return "postCreate"
	case PhasePostAttach:
		return "postAttach"
	}
	return "unknown"
}

// MarshalText lets phases serialize as their wire names.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses a wire name back into a phase.
func (p *Phase) UnmarshalText(text []byte) error {
	for _, candidate := range Phases {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown lifecycle phase %q", text)
}
