package ode

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedEquation is returned by Dsolve when the input has no
// derivative of the unknown function (order 0) or when no registered
// hint recognizes its structural form.
var ErrUnsupportedEquation = errors.New("ode: unsupported equation")

// HintNotApplicableError is returned when an explicitly requested hint
// is not in the classification result for the equation.
type HintNotApplicableError struct {
	Hint       string
	Applicable []string
}

func (e *HintNotApplicableError) Error() string {
	if len(e.Applicable) == 0 {
		return fmt.Sprintf("ode: hint %q does not apply (no hint matches this equation)", e.Hint)
	}
	return fmt.Sprintf("ode: hint %q does not apply; applicable hints: %s",
		e.Hint, strings.Join(e.Applicable, ", "))
}

// SolvingFailedError is returned when every attempted hint procedure
// failed. Reasons maps each attempted hint name to why it could not
// complete, so a failed Dsolve names what was tried.
type SolvingFailedError struct {
	Reasons map[string]string
}

func (e *SolvingFailedError) Error() string {
	names := make([]string, 0, len(e.Reasons))
	for name := range e.Reasons {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Reasons[name]
	}
	return "ode: solving failed (" + strings.Join(parts, "; ") + ")"
}

func solvingFailed(hint, reason string) *SolvingFailedError {
	return &SolvingFailedError{Reasons: map[string]string{hint: reason}}
}
