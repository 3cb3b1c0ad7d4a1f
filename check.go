package ode

// ============================================================
// Solution Verifier
// ============================================================

// Verdict is the outcome of CheckSolution. Simplification is
// incomplete, so a residual that fails to collapse proves nothing:
// only a residual that is literally zero confirms, and only a residual
// that is a nonzero constant refutes.
type Verdict int

const (
	Undetermined Verdict = iota
	Confirmed
	Refuted
)

func (v Verdict) String() string {
	switch v {
	case Confirmed:
		return "confirmed"
	case Refuted:
		return "refuted"
	default:
		return "undetermined"
	}
}

// CheckSolution substitutes sol into eq and reports whether the
// residual vanishes. Explicit solutions (fn isolated on the left, no
// fn on the right) are substituted directly, with derivatives computed
// from the right-hand side. Implicit solutions are checked by total
// differentiation against the first-order normal form; implicit
// solutions of higher-order equations come back Undetermined.
//
// The returned expression is the simplified residual the verdict was
// judged on.
func CheckSolution(eq *Equation, fn, v string, sol *Equation) (Verdict, Expr) {
	if g, ok := explicitRHS(sol, fn, v); ok {
		return checkExplicit(eq, fn, v, g)
	}
	return checkImplicit(eq, fn, v, sol)
}

// explicitRHS recognizes sol as fn = g with g free of the unknown.
func explicitRHS(sol *Equation, fn, v string) (Expr, bool) {
	lhs := sol.LHS
	if d, ok := lhs.(*Deriv); ok && d.fn == fn && d.v == v && d.order == 0 {
		lhs = S(fn)
	}
	s, ok := lhs.(*Sym)
	if !ok || s.name != fn {
		return nil, false
	}
	if !freeOf(sol.RHS, fn) {
		return nil, false
	}
	if _, hasDeriv := maxDerivOrder(sol.RHS, fn, v); hasDeriv {
		return nil, false
	}
	return sol.RHS, true
}

func checkExplicit(eq *Equation, fn, v string, g Expr) (Verdict, Expr) {
	r := replaceDeriv(eq.Residual(), fn, v, func(k int) Expr {
		return DiffN(g, v, k)
	})
	r = Sub(r, fn, g)
	r = DeepSimplify(Canonicalize(r))
	return judgeResidual(r)
}

// checkImplicit handles sol of the form h(x, y) = c for a first-order
// equation y' = f(x, y): along any solution curve the total derivative
// dh/dx + dh/dy * f must vanish identically.
func checkImplicit(eq *Equation, fn, v string, sol *Equation) (Verdict, Expr) {
	ctx := newODEContext(eq, fn, v)
	if ctx.order != 1 || ctx.f == nil {
		return Undetermined, nil
	}
	r := AddOf(sol.LHS, MulOf(N(-1), sol.RHS)).Simplify()
	total := AddOf(Diff(r, v), MulOf(Diff(r, fn), ctx.f))
	total = DeepSimplify(Canonicalize(total))
	return judgeResidual(total)
}

func judgeResidual(r Expr) (Verdict, Expr) {
	if isZeroNum(r) {
		return Confirmed, r
	}
	if n, ok := r.(*Num); ok {
		return Refuted, n
	}
	cleared := clearDenominators(r)
	if isZeroNum(cleared) {
		return Confirmed, cleared
	}
	return Undetermined, r
}

// clearDenominators multiplies out every negative power appearing in
// the residual's terms and re-expands, catching cancellations the
// term-wise simplifier misses (x*x^-1 buried inside a sum of
// fractions).
func clearDenominators(e Expr) Expr {
	mults := map[string]Expr{}
	pows := map[string]*Num{}
	collect := func(f Expr) {
		p, ok := f.(*Pow)
		if !ok {
			return
		}
		n, ok := p.exp.(*Num)
		if !ok || !n.IsNegative() || !n.IsInteger() {
			return
		}
		key := p.base.String()
		need := numNeg(n)
		if have, seen := pows[key]; !seen || numCmp(need, have) > 0 {
			pows[key] = need
			mults[key] = p.base
		}
	}
	for _, term := range termsOf(e) {
		for _, f := range factorsOf(term) {
			collect(f)
		}
	}
	if len(pows) == 0 {
		return e
	}
	factors := []Expr{e}
	for key, base := range mults {
		factors = append(factors, PowOf(base, pows[key]))
	}
	return DeepSimplify(Canonicalize(MulOf(factors...)))
}
