// Package steps describes the onboarding wizard's steps: their numbers, the
// typed patch each one accepts, and the field rules shared by the server
// (request validation) and the client (required-field checks, CLI prompts).
package steps

import (
	"strconv"

	"github.com/dmitrijs2005/onboarding/internal/common"
)

// Number identifies a wizard step.
type Number int

const (
	First Number = 1
	Last  Number = 5
)

const (
	Profile   Number = 1
	Goal      Number = 2
	Intro     Number = 3
	Interests Number = 4
	Career    Number = 5
)

// Valid reports whether n lies inside the wizard range.
func (n Number) Valid() bool {
	return n >= First && n <= Last
}

func (n Number) String() string {
	return strconv.Itoa(int(n))
}

// Key is the form-entry map key the step is stored under.
func (n Number) Key() string {
	return n.String()
}

// Parse converts a path segment or a stored map key into a Number.
// Non-numeric input and numbers outside the range are ValidationErrors.
func Parse(s string) (Number, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, common.NewValidationError("stepNumber", "must be an integer, got %q", s)
	}
	n := Number(v)
	if err := Check(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Check returns a ValidationError when n is outside the wizard range.
func Check(n Number) error {
	if !n.Valid() {
		return common.NewValidationError("stepNumber", "must be between %d and %d, got %d", First, Last, n)
	}
	return nil
}

// All lists every step in order.
func All() []Number {
	out := make([]Number, 0, Last-First+1)
	for n := First; n <= Last; n++ {
		out = append(out, n)
	}
	return out
}

// Title is the human-readable name of the step.
func (n Number) Title() string {
	switch n {
	case Profile:
		return "Tell us about yourself"
	case Goal:
		return "What is your main goal?"
	case Intro:
		return "How it works"
	case Interests:
		return "Pick your skills"
	case Career:
		return "Career"
	default:
		return "Unknown step"
	}
}
