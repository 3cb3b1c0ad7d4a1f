package ode

import "fmt"

// ============================================================
// Dispatcher
// ============================================================

// Result is the outcome of a Dsolve call. Hint names the strategy
// whose solutions populate Solutions; under the meta-hints "all" and
// "all_Integral", All additionally maps every successful strategy to
// its solutions and Hint names the winner that Solutions came from.
type Result struct {
	Hint      string
	Solutions []*Equation
	All       map[string][]*Equation
}

// Dsolve solves eq as an ODE in fn(v) using the named strategy. The
// empty hint defaults to "best". Concrete hint names run exactly that
// strategy; "best" runs every applicable closed-form strategy and
// returns the simplest result; "all" and "all_Integral" run every
// applicable strategy and collect the results.
//
// Errors distinguish three situations: ErrUnsupportedEquation (not an
// ODE, or nothing matches), HintNotApplicableError (the named strategy
// does not match this equation) and SolvingFailedError (strategies
// matched but every attempted procedure failed).
func Dsolve(eq *Equation, fn, v, hint string) (*Result, error) {
	ctx := newODEContext(eq, fn, v)
	if ctx.order == 0 {
		return nil, fmt.Errorf("%w: no derivative of %s(%s) in %s",
			ErrUnsupportedEquation, fn, v, eq.String())
	}
	names, infos := std.classifyWithInfo(ctx)
	if hint == "" {
		hint = HintBest
	}
	switch hint {
	case HintBest:
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: no strategy matches %s",
				ErrUnsupportedEquation, eq.String())
		}
		return solveBest(ctx, names, infos)
	case HintAll:
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: no strategy matches %s",
				ErrUnsupportedEquation, eq.String())
		}
		return solveMulti(ctx, names, infos, false)
	case HintAllIntegral:
		if !containsName(names, HintAllIntegral) {
			return nil, &HintNotApplicableError{Hint: hint, Applicable: names}
		}
		return solveMulti(ctx, names, infos, true)
	}
	if !containsName(names, hint) {
		return nil, &HintNotApplicableError{Hint: hint, Applicable: names}
	}
	h, leave, _ := std.lookup(hint)
	sols, err := h.solve(ctx, infos[hint], leave)
	if err != nil {
		return nil, solvingFailed(hint, err.Error())
	}
	return &Result{Hint: hint, Solutions: sols}, nil
}

// solutionSize is the ranking metric for "best": total node count over
// every equation of a strategy's output. Smaller is simpler; ties keep
// registration order.
func solutionSize(sols []*Equation) int {
	total := 0
	for _, s := range sols {
		total += exprSize(s.LHS) + exprSize(s.RHS)
	}
	return total
}

// closedFormNames filters a classification list down to the concrete
// closed-form hints, dropping _Integral variants and meta-hints.
func closedFormNames(names []string) []string {
	out := []string{}
	for _, n := range names {
		switch n {
		case HintBest, HintAll, HintAllIntegral:
			continue
		}
		if _, isIntegral, ok := std.lookup(n); ok && !isIntegral {
			out = append(out, n)
		}
	}
	return out
}

func solveBest(ctx *odeContext, names []string, infos map[string]*matchInfo) (*Result, error) {
	reasons := map[string]string{}
	var best *Result
	bestSize := 0
	for _, name := range closedFormNames(names) {
		h, _, _ := std.lookup(name)
		sols, err := h.solve(ctx, infos[name], false)
		if err != nil {
			reasons[name] = err.Error()
			continue
		}
		size := solutionSize(sols)
		if best == nil || size < bestSize {
			best = &Result{Hint: name, Solutions: sols}
			bestSize = size
		}
	}
	if best == nil {
		return nil, &SolvingFailedError{Reasons: reasons}
	}
	return best, nil
}

// solveMulti implements "all" and "all_Integral". With integralOnly
// set, each strategy that has an _Integral variant runs in that form
// instead of its closed form.
func solveMulti(ctx *odeContext, names []string, infos map[string]*matchInfo, integralOnly bool) (*Result, error) {
	reasons := map[string]string{}
	all := map[string][]*Equation{}
	meta := HintAll

	run := []string{}
	if integralOnly {
		meta = HintAllIntegral
		for _, name := range closedFormNames(names) {
			if containsName(names, name+integralSuffix) {
				run = append(run, name+integralSuffix)
			} else {
				run = append(run, name)
			}
		}
	} else {
		for _, name := range names {
			switch name {
			case HintBest, HintAll, HintAllIntegral:
				continue
			}
			run = append(run, name)
		}
	}

	var winner string
	winnerSize := 0
	for _, name := range run {
		h, leave, ok := std.lookup(name)
		if !ok {
			continue
		}
		sols, err := h.solve(ctx, infos[name], leave)
		if err != nil {
			reasons[name] = err.Error()
			continue
		}
		all[name] = sols
		// rank only closed forms against each other; under
		// all_Integral everything competes
		if !integralOnly && leave {
			continue
		}
		size := solutionSize(sols)
		if winner == "" || size < winnerSize {
			winner, winnerSize = name, size
		}
	}
	if len(all) == 0 {
		return nil, &SolvingFailedError{Reasons: reasons}
	}
	if winner == "" {
		// only _Integral strategies succeeded under "all"
		for _, name := range run {
			if _, ok := all[name]; ok {
				winner = name
				break
			}
		}
	}
	return &Result{Hint: meta, Solutions: all[winner], All: all}, nil
}
