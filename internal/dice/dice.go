// Package dice implements the d20 risk check that precedes every narrated turn.
package dice

import (
	"errors"
	"fmt"

	"github.com/qninhdt/aethelgard/server/internal/random"
)

// Sides is the die used for risk checks.
const Sides = 20

// ErrOutOfRange indicates a roll outside [1, Sides].
var ErrOutOfRange = errors.New("roll must be between 1 and 20")

// Outcome classifies a settled roll.
type Outcome int

const (
	OutcomeUnspecified Outcome = iota
	OutcomeCriticalFailure
	OutcomePartial
	OutcomeSuccess
	OutcomeCriticalSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCriticalFailure:
		return "critical failure"
	case OutcomePartial:
		return "failure or partial success with a cost"
	case OutcomeSuccess:
		return "success"
	case OutcomeCriticalSuccess:
		return "critical success"
	default:
		return "unspecified"
	}
}

// Classify maps a roll to its outcome tier.
func Classify(roll int) Outcome {
	switch {
	case roll == Sides:
		return OutcomeCriticalSuccess
	case roll == 1:
		return OutcomeCriticalFailure
	case roll >= 2 && roll <= 9:
		return OutcomePartial
	case roll >= 10 && roll < Sides:
		return OutcomeSuccess
	default:
		return OutcomeUnspecified
	}
}

// Validate checks that roll is a face of the die.
func Validate(roll int) error {
	if roll < 1 || roll > Sides {
		return fmt.Errorf("%w: got %d", ErrOutOfRange, roll)
	}
	return nil
}

// Roller produces fresh rolls from an injected source.
type Roller struct {
	src random.Source
}

// NewRoller creates a roller over src.
func NewRoller(src random.Source) *Roller {
	return &Roller{src: src}
}

// Roll returns a value uniformly distributed in [1, 20].
func (r *Roller) Roll() int {
	return r.src.IntN(Sides) + 1
}

// Annotate appends the settled roll to the player's action text in the form
// the narrator expects.
func Annotate(action string, roll int) string {
	return fmt.Sprintf("%s (Dice roll [d20]: %d - %s)", action, roll, Classify(roll))
}
