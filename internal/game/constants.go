package game

import (
	"fmt"
	"time"
)

// Fixed protocol amounts.
const (
	BlindAmount   = 10
	CallAmount    = BlindAmount
	StartingChips = 1000
	HoleDiceCount = 2
)

// Default pacing and seating limits.
const (
	DefaultBotDelay   = 1500 * time.Millisecond
	DefaultPhaseDelay = 1000 * time.Millisecond
	DefaultMinPlayers = 2
	DefaultMaxSeats   = 8
)

// Phase is the stage of a round.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePreFlop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
)

var phaseNames = [...]string{
	PhaseIdle:     "IDLE",
	PhasePreFlop:  "PRE_FLOP",
	PhaseFlop:     "FLOP",
	PhaseTurn:     "TURN",
	PhaseRiver:    "RIVER",
	PhaseShowdown: "SHOWDOWN",
}

func (p Phase) String() string {
	if p < PhaseIdle || p > PhaseShowdown {
		return "UNKNOWN"
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	if p < PhaseIdle || p > PhaseShowdown {
		return nil, fmt.Errorf("invalid phase: %d", int(p))
	}
	return []byte(phaseNames[p]), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %q", string(text))
}

// IsBetting reports whether players act during this phase.
func (p Phase) IsBetting() bool {
	return p >= PhasePreFlop && p <= PhaseRiver
}

// CommunityDice is the number of community dice visible in the phase.
func (p Phase) CommunityDice() int {
	switch p {
	case PhaseFlop:
		return 3
	case PhaseTurn:
		return 4
	case PhaseRiver, PhaseShowdown:
		return 5
	default:
		return 0
	}
}

// Action is a betting decision.
type Action int

const (
	Fold Action = iota
	Check
	Call
)

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Call:
		return "call"
	default:
		return "unknown"
	}
}

// ParseAction parses the wire form of an action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}
