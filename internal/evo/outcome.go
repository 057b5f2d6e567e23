package evo

import (
	"fmt"
	"strings"
)

// Outcome is the user's answer to one pairwise comparison.
type Outcome int

const (
	// OutcomeNone means no decision yet. It is never accepted by the engine.
	OutcomeNone Outcome = iota
	LeftPreferred
	RightPreferred
)

func (o Outcome) Valid() bool {
	return o == LeftPreferred || o == RightPreferred
}

func (o Outcome) String() string {
	switch o {
	case LeftPreferred:
		return "left"
	case RightPreferred:
		return "right"
	default:
		return "none"
	}
}

// ParseOutcome accepts left|l|right|r, case-insensitively.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return LeftPreferred, nil
	case "right", "r":
		return RightPreferred, nil
	default:
		return OutcomeNone, fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// Pair is the comparison currently shown to the user. Left is the element
// under scan, Right is the pivot of the active range.
type Pair struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}
