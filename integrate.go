package ode

// Rule-based symbolic integration. Every hint procedure funnels its
// quadratures through Integrate; a false return is never an error
// here, it becomes SolvingFailed (or an unevaluated Integral node for
// the _Integral hint variants) at the dispatch layer.

// Integrate returns an antiderivative of expr with respect to v, and
// whether one was found by the rule set. No constant is attached; the
// callers add their own constants of integration.
func Integrate(expr Expr, v string) (Expr, bool) {
	return integrate(Canonicalize(expr), v)
}

func integrate(expr Expr, v string) (Expr, bool) {
	if freeOf(expr, v) {
		return MulOf(expr, S(v)), true
	}
	switch t := expr.(type) {
	case *Sym:
		// t.name == v, the free case is handled above
		return MulOf(F(1, 2), PowOf(S(v), N(2))), true

	case *Pow:
		return integratePow(t, v)

	case *Func:
		return integrateFunc(t, v)

	case *Mul:
		return integrateMul(t, v)

	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			intT, ok := integrate(term, v)
			if !ok {
				return nil, false
			}
			terms[i] = intT
		}
		return AddOf(terms...).Simplify(), true
	}
	return nil, false
}

// linearParts decomposes e as a + b*v with a, b free of v.
func linearParts(e Expr, v string) (a, b Expr, ok bool) {
	coeffs := PolyCoeffs(e, v)
	a, b = Expr(N(0)), Expr(N(0))
	for deg, c := range coeffs {
		switch deg {
		case 0:
			a = c
		case 1:
			b = c
		default:
			return nil, nil, false
		}
	}
	if !freeOf(a, v) || !freeOf(b, v) {
		return nil, nil, false
	}
	if isZeroNum(b) {
		return nil, nil, false
	}
	return a, b, true
}

// integratePow handles (a+b*v)^n for rational n, and c^(a+b*v) for a
// numeric base.
func integratePow(p *Pow, v string) (Expr, bool) {
	if en, ok := p.exp.(*Num); ok {
		if _, b, ok2 := linearParts(p.base, v); ok2 {
			if en.IsNegOne() {
				return MulOf(PowOf(b, N(-1)), LnOf(p.base)), true
			}
			next := numAdd(en, N(1))
			return MulOf(numRecip(next), PowOf(b, N(-1)), PowOf(p.base, next)).Simplify(), true
		}
		return nil, false
	}
	if bn, ok := p.base.(*Num); ok && bn.IsPositive() && !bn.IsOne() {
		if _, b, ok2 := linearParts(p.exp, v); ok2 {
			return MulOf(PowOf(b, N(-1)), PowOf(LnOf(bn), N(-1)), PowOf(bn, p.exp)).Simplify(), true
		}
	}
	return nil, false
}

// integrateFunc handles sin, cos and exp of a linear argument, and
// ln of the bare variable.
func integrateFunc(f *Func, v string) (Expr, bool) {
	switch f.name {
	case "sin", "cos", "exp":
		_, b, ok := linearParts(f.arg, v)
		if !ok {
			return nil, false
		}
		recip := PowOf(b, N(-1))
		switch f.name {
		case "sin":
			return MulOf(N(-1), recip, CosOf(f.arg)).Simplify(), true
		case "cos":
			return MulOf(recip, SinOf(f.arg)).Simplify(), true
		default:
			return MulOf(recip, ExpOf(f.arg)).Simplify(), true
		}
	case "ln":
		if sym, ok := f.arg.(*Sym); ok && sym.name == v {
			return AddOf(MulOf(S(v), LnOf(S(v))), MulOf(N(-1), S(v))), true
		}
	}
	return nil, false
}

func integrateMul(m *Mul, v string) (Expr, bool) {
	free := []Expr{}
	dep := []Expr{}
	for _, f := range m.factors {
		if freeOf(f, v) {
			free = append(free, f)
		} else {
			dep = append(dep, f)
		}
	}
	if len(dep) == 0 {
		return MulOf(append(append([]Expr{}, free...), S(v))...), true
	}
	var inner Expr
	if len(dep) == 1 {
		inner = dep[0]
	} else {
		inner = MulOf(dep...)
	}
	if len(free) > 0 {
		// pull constants out in front
		if _, stillMul := inner.(*Mul); !stillMul || len(dep) == 1 {
			intInner, ok := integrate(inner, v)
			if !ok {
				return nil, false
			}
			return MulOf(append(append([]Expr{}, free...), intInner)...).Simplify(), true
		}
	}
	if im, ok := inner.(*Mul); ok {
		result, ok2 := integrateByParts(im, v)
		if !ok2 {
			return nil, false
		}
		if len(free) > 0 {
			return MulOf(append(append([]Expr{}, free...), result)...).Simplify(), true
		}
		return result, true
	}
	return integrate(inner, v)
}

// integrateByParts handles poly(v)*exp(a+b*v) by repeated reduction of
// the polynomial degree.
func integrateByParts(m *Mul, v string) (Expr, bool) {
	var expFactor *Func
	polyFactors := []Expr{}
	for _, f := range m.factors {
		if fn, ok := f.(*Func); ok && fn.name == "exp" && expFactor == nil && !freeOf(fn.arg, v) {
			expFactor = fn
			continue
		}
		polyFactors = append(polyFactors, f)
	}
	if expFactor == nil {
		return nil, false
	}
	_, b, ok := linearParts(expFactor.arg, v)
	if !ok {
		return nil, false
	}
	poly := Canonicalize(MulOf(polyFactors...))
	if !isPolyIn(poly, v) {
		return nil, false
	}
	return byPartsExp(poly, expFactor, b, v, Degree(poly, v)+1)
}

func byPartsExp(poly Expr, e *Func, b Expr, v string, fuel int) (Expr, bool) {
	if fuel <= 0 {
		return nil, false
	}
	recip := PowOf(b, N(-1))
	if freeOf(poly, v) {
		return MulOf(poly, recip, e).Simplify(), true
	}
	dPoly := Diff(poly, v)
	rest, ok := byPartsExp(dPoly, e, b, v, fuel-1)
	if !ok {
		return nil, false
	}
	return AddOf(MulOf(poly, recip, e), MulOf(N(-1), recip, rest)).Simplify(), true
}

// isPolyIn reports whether e is a polynomial in v with coefficients
// free of v.
func isPolyIn(e Expr, v string) bool {
	for deg, c := range PolyCoeffs(e, v) {
		if deg < 0 || !freeOf(c, v) {
			return false
		}
	}
	return true
}
