package ode

import "fmt"

// ============================================================
// Classifier
// ============================================================

// Classify returns the names of every solving strategy whose
// structural predicate accepts eq, treated as an ordinary differential
// equation in the unknown function fn of the variable v. The list is
// ordered: closed-form hints in registry preference order, then their
// _Integral variants, then the meta-hints ("best", "all", and
// "all_Integral" when at least one _Integral variant matched).
//
// An empty, nil-error result means the equation is a genuine ODE that
// no registered strategy recognizes. An input without any derivative
// of fn is not an ODE and returns ErrUnsupportedEquation.
func Classify(eq *Equation, fn, v string) ([]string, error) {
	ctx := newODEContext(eq, fn, v)
	if ctx.order == 0 {
		return nil, fmt.Errorf("%w: no derivative of %s(%s) in %s",
			ErrUnsupportedEquation, fn, v, eq.String())
	}
	names, _ := std.classifyWithInfo(ctx)
	return names, nil
}
