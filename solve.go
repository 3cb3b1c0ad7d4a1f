package ode

import (
	"fmt"
	"math/big"
	"sort"
)

// ============================================================
// Shared solving machinery
// ============================================================

func constSym(i int) Expr { return S(fmt.Sprintf("C%d", i)) }

// quadrature integrates e with respect to v, or wraps it in an
// unevaluated Integral node when the caller is running an _Integral
// hint variant.
func quadrature(e Expr, v string, leave bool) (Expr, error) {
	if leave {
		return IntegralOf(e, v), nil
	}
	if r, ok := Integrate(e, v); ok {
		return r, nil
	}
	return nil, fmt.Errorf("cannot integrate %s with respect to %s", e.String(), v)
}

// ============================================================
// separable: y' = g(x)*h(y)
// ============================================================

// Integral(1/h(y), y) = Integral(g(x), x) + C1
func solveSeparable(ctx *odeContext, info *matchInfo, leave bool) ([]*Equation, error) {
	x, y := ctx.v, ctx.fn
	lhs, err := quadrature(PowOf(info.sepY, N(-1)), y, leave)
	if err != nil {
		return nil, err
	}
	rhs, err := quadrature(info.sepX, x, leave)
	if err != nil {
		return nil, err
	}
	return []*Equation{Eq(lhs, AddOf(rhs, constSym(1)))}, nil
}

// ============================================================
// 1st_linear: y' + P(x)*y = Q(x)
// ============================================================

// linearSolution runs the integrating-factor method and returns the
// explicit right-hand side for the unknown: (Integral(mu*Q) + C) / mu
// with mu = exp(Integral(P)). Bernoulli reuses it after reduction.
func linearSolution(p, q Expr, x string, c Expr, leave bool) (Expr, error) {
	ip, err := quadrature(p, x, leave)
	if err != nil {
		return nil, err
	}
	mu := ExpOf(ip)
	iq, err := quadrature(MulOf(mu, q).Simplify(), x, leave)
	if err != nil {
		return nil, err
	}
	return MulOf(AddOf(iq, c), PowOf(mu, N(-1))).Simplify(), nil
}

func solveFirstLinear(ctx *odeContext, info *matchInfo, leave bool) ([]*Equation, error) {
	rhs, err := linearSolution(info.p, info.q, ctx.v, constSym(1), leave)
	if err != nil {
		return nil, err
	}
	return []*Equation{Eq(S(ctx.fn), rhs)}, nil
}

// ============================================================
// Bernoulli: y' + P(x)*y = Q(x)*y^n
// ============================================================

// The substitution w = y^(1-n) reduces the equation to the linear form
// w' + (1-n)*P*w = (1-n)*Q.
func solveBernoulli(ctx *odeContext, info *matchInfo, leave bool) ([]*Equation, error) {
	t := numSub(N(1), info.nExp) // 1-n, nonzero since n != 1
	w, err := linearSolution(MulOf(t, info.p).Simplify(), MulOf(t, info.q).Simplify(),
		ctx.v, constSym(1), leave)
	if err != nil {
		return nil, err
	}
	return []*Equation{Eq(S(ctx.fn), PowOf(w, numRecip(t)))}, nil
}

// ============================================================
// 1st_exact: M(x,y) + N(x,y)*y' = 0 with dM/dy == dN/dx
// ============================================================

// The potential F with dF/dx = M and dF/dy = N gives the implicit
// solution F(x, y) = C1.
func solveExact(ctx *odeContext, info *matchInfo, leave bool) ([]*Equation, error) {
	x, y := ctx.v, ctx.fn
	if leave {
		// F = Integral(M, x) + Integral(N - d/dy Integral(M, x), y),
		// kept as nested unevaluated integrals
		ff := IntegralOf(ctx.m, x)
		rest := AddOf(ctx.n, MulOf(N(-1), Diff(ff, y))).Simplify()
		return []*Equation{Eq(AddOf(ff, IntegralOf(rest, y)), constSym(1))}, nil
	}
	ff, ok := Integrate(ctx.m, x)
	if !ok {
		return nil, fmt.Errorf("cannot integrate %s with respect to %s", ctx.m.String(), x)
	}
	rest := Canonicalize(AddOf(ctx.n, MulOf(N(-1), Diff(ff, y))))
	if !freeOf(rest, x) {
		return nil, fmt.Errorf("potential remainder %s still depends on %s", rest.String(), x)
	}
	g, ok := Integrate(rest, y)
	if !ok {
		return nil, fmt.Errorf("cannot integrate %s with respect to %s", rest.String(), y)
	}
	return []*Equation{Eq(AddOf(ff, g).Simplify(), constSym(1))}, nil
}

// ============================================================
// 1st_homogeneous_coeff: M, N homogeneous of equal degree
// ============================================================

// substitutionVar picks a name for the reduction variable that does
// not collide with any symbol of the equation.
func substitutionVar(ctx *odeContext) string {
	free := FreeSymbols(ctx.expr)
	for i := 1; ; i++ {
		name := fmt.Sprintf("u%d", i)
		if _, taken := free[name]; !taken {
			return name
		}
	}
}

// solveHomogeneousDepDivIndep substitutes y = u*x. With y' = F(y/x)
// the equation separates to du/(F(u)-u) = dx/x, so
// Integral(1/(F(u)-u), u)|u=y/x = ln(x) + C1.
func solveHomogeneousDepDivIndep(ctx *odeContext, info *matchInfo, _ bool) ([]*Equation, error) {
	x, y, u := ctx.v, ctx.fn, substitutionVar(ctx)
	fu := Canonicalize(Sub(ctx.f, y, MulOf(S(u), S(x))))
	if !freeOf(fu, x) || !freeOf(fu, y) {
		return nil, fmt.Errorf("substituting %s = %s*%s did not eliminate %s", y, u, x, x)
	}
	den := Canonicalize(AddOf(fu, MulOf(N(-1), S(u))))
	if isZeroNum(den) {
		return nil, fmt.Errorf("degenerate reduction: %s' = %s/%s solves itself", y, y, x)
	}
	iu, ok := Integrate(PowOf(den, N(-1)), u)
	if !ok {
		return nil, fmt.Errorf("cannot integrate 1/(%s) with respect to %s", den.String(), u)
	}
	lhs := Sub(iu, u, MulOf(S(y), PowOf(S(x), N(-1)))).Simplify()
	return []*Equation{Eq(lhs, AddOf(LnOf(S(x)), constSym(1)))}, nil
}

// solveHomogeneousIndepDivDep substitutes x = u*y in the inverted
// equation dx/dy = 1/F, giving
// Integral(1/(G(u)-u), u)|u=x/y = ln(y) + C1.
func solveHomogeneousIndepDivDep(ctx *odeContext, info *matchInfo, _ bool) ([]*Equation, error) {
	x, y, u := ctx.v, ctx.fn, substitutionVar(ctx)
	g := Canonicalize(PowOf(ctx.f, N(-1)))
	gu := Canonicalize(Sub(g, x, MulOf(S(u), S(y))))
	if !freeOf(gu, x) || !freeOf(gu, y) {
		return nil, fmt.Errorf("substituting %s = %s*%s did not eliminate %s", x, u, y, y)
	}
	den := Canonicalize(AddOf(gu, MulOf(N(-1), S(u))))
	if isZeroNum(den) {
		return nil, fmt.Errorf("degenerate reduction: d%s/d%s = %s/%s solves itself", x, y, x, y)
	}
	iu, ok := Integrate(PowOf(den, N(-1)), u)
	if !ok {
		return nil, fmt.Errorf("cannot integrate 1/(%s) with respect to %s", den.String(), u)
	}
	lhs := Sub(iu, u, MulOf(S(x), PowOf(S(y), N(-1)))).Simplify()
	return []*Equation{Eq(lhs, AddOf(LnOf(S(y)), constSym(1)))}, nil
}

// ============================================================
// Liouville: y'' + g(y)*y'^2 + h(x)*y' = 0
// ============================================================

// Integral(exp(Integral(g, y)), y) = C1 + C2*Integral(exp(-Integral(h, x)), x)
func solveLiouville(ctx *odeContext, info *matchInfo, leave bool) ([]*Equation, error) {
	x, y := ctx.v, ctx.fn
	ig, err := quadrature(info.gy, y, leave)
	if err != nil {
		return nil, err
	}
	lhs, err := quadrature(ExpOf(ig), y, leave)
	if err != nil {
		return nil, err
	}
	ih, err := quadrature(info.hx, x, leave)
	if err != nil {
		return nil, err
	}
	inner, err := quadrature(ExpOf(MulOf(N(-1), ih).Simplify()), x, leave)
	if err != nil {
		return nil, err
	}
	rhs := AddOf(constSym(1), MulOf(constSym(2), inner))
	return []*Equation{Eq(lhs, rhs)}, nil
}

// ============================================================
// nth_linear_constant_coeff_homogeneous
// ============================================================

// charRoot is one root of the characteristic polynomial. A real root
// has im == nil; a complex conjugate pair is recorded once with im the
// positive imaginary part.
type charRoot struct {
	re   Expr
	im   Expr
	mult int
}

func solveNthLinearConstCoeff(ctx *odeContext, info *matchInfo, _ bool) ([]*Equation, error) {
	roots, err := charRoots(info.coeffs)
	if err != nil {
		return nil, err
	}
	x := S(ctx.v)
	terms := []Expr{}
	ci := 1
	for _, r := range roots {
		for j := 0; j < r.mult; j++ {
			factors := []Expr{}
			if j > 0 {
				factors = append(factors, PowOf(x, N(int64(j))))
			}
			if r.im == nil {
				expo := ExpOf(MulOf(r.re, x).Simplify())
				terms = append(terms, MulOf(append([]Expr{constSym(ci), expo}, factors...)...))
				ci++
				continue
			}
			expo := ExpOf(MulOf(r.re, x).Simplify())
			arg := MulOf(r.im, x).Simplify()
			cosT := MulOf(append([]Expr{constSym(ci), expo, CosOf(arg)}, factors...)...)
			sinT := MulOf(append([]Expr{constSym(ci + 1), expo, SinOf(arg)}, factors...)...)
			terms = append(terms, cosT, sinT)
			ci += 2
		}
	}
	return []*Equation{Eq(S(ctx.fn), AddOf(terms...).Simplify())}, nil
}

// charRoots factors the characteristic polynomial sum(coeffs[k]*r^k)
// over the rationals by trial of rational-root candidates with
// deflation, then solves a leftover linear or quadratic factor
// exactly. A leftover factor of degree 3 or more fails the hint.
func charRoots(coeffs []*Num) ([]charRoot, error) {
	work := make([]*Num, len(coeffs))
	copy(work, coeffs)

	counts := map[string]*charRoot{}
	order := []string{}
	record := func(r charRoot) {
		key := r.re.String()
		if r.im != nil {
			key += "+i*" + r.im.String()
		}
		if have, ok := counts[key]; ok {
			have.mult += r.mult
			return
		}
		rr := r
		counts[key] = &rr
		order = append(order, key)
	}

	// strip zero roots
	for len(work) > 1 && work[0].IsZero() {
		record(charRoot{re: N(0), mult: 1})
		work = work[1:]
	}

	// rational-root trial with deflation
	for len(work) > 3 {
		r, ok := findRationalRoot(work)
		if !ok {
			return nil, fmt.Errorf("characteristic polynomial of degree %d has no rational root", len(work)-1)
		}
		record(charRoot{re: r, mult: 1})
		work = deflate(work, r)
	}

	switch len(work) {
	case 1:
		// fully deflated
	case 2:
		record(charRoot{re: numNeg(numDiv(work[0], work[1])), mult: 1})
	case 3:
		a, b, c := work[2], work[1], work[0]
		disc := numSub(numMul(b, b), numMul(numMul(N(4), a), c))
		twoA := numMul(N(2), a)
		negB := numNeg(b)
		switch {
		case disc.IsZero():
			record(charRoot{re: numDiv(negB, twoA), mult: 2})
		case disc.IsPositive():
			if s, ok := ratSqrt(disc); ok {
				record(charRoot{re: numDiv(numAdd(negB, s), twoA), mult: 1})
				record(charRoot{re: numDiv(numSub(negB, s), twoA), mult: 1})
			} else {
				half := numRecip(twoA)
				root := SqrtOf(disc)
				record(charRoot{re: AddOf(MulOf(negB, half), MulOf(half, root)).Simplify(), mult: 1})
				record(charRoot{re: AddOf(MulOf(negB, half), MulOf(numNeg(half), root)).Simplify(), mult: 1})
			}
		default:
			var im Expr
			if s, ok := ratSqrt(numNeg(disc)); ok {
				im = numDiv(s, twoA)
				if n, isNum := im.(*Num); isNum && n.IsNegative() {
					im = numNeg(n)
				}
			} else {
				im = MulOf(numRecip(twoA), SqrtOf(numNeg(disc))).Simplify()
			}
			record(charRoot{re: numDiv(negB, twoA), im: im, mult: 1})
		}
	}

	roots := make([]charRoot, 0, len(order))
	for _, key := range order {
		roots = append(roots, *counts[key])
	}
	sort.SliceStable(roots, func(i, j int) bool { return rootLess(roots[i], roots[j]) })
	return roots, nil
}

// rootLess orders real roots before complex pairs, numeric values
// ascending, everything else by canonical string.
func rootLess(a, b charRoot) bool {
	if (a.im == nil) != (b.im == nil) {
		return a.im == nil
	}
	an, aNum := a.re.(*Num)
	bn, bNum := b.re.(*Num)
	if aNum && bNum {
		if c := numCmp(an, bn); c != 0 {
			return c < 0
		}
	} else if aNum != bNum {
		return aNum
	}
	return a.re.String() < b.re.String()
}

// findRationalRoot tries p/q with p dividing the constant term and q
// dividing the leading coefficient, after clearing denominators.
func findRationalRoot(coeffs []*Num) (*Num, bool) {
	lcm := big.NewInt(1)
	for _, c := range coeffs {
		d := c.Rat().Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Div(new(big.Int).Mul(lcm, d), g)
	}
	ints := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		r := new(big.Rat).Mul(c.Rat(), new(big.Rat).SetInt(lcm))
		ints[i] = new(big.Int).Set(r.Num())
	}
	lead := ints[len(ints)-1]
	low := ints[0]
	if low.Sign() == 0 {
		return N(0), true
	}
	for _, p := range divisorCandidates(low) {
		for _, q := range divisorCandidates(lead) {
			for _, sign := range []int64{1, -1} {
				cand := &Num{val: new(big.Rat).SetFrac(
					new(big.Int).Mul(p, big.NewInt(sign)), q)}
				if polyEvalZero(coeffs, cand) {
					return cand, true
				}
			}
		}
	}
	return nil, false
}

// divisorCandidates lists the positive divisors of n, capped so a
// huge coefficient does not blow up the search.
func divisorCandidates(n *big.Int) []*big.Int {
	abs := new(big.Int).Abs(n)
	if !abs.IsInt64() {
		return []*big.Int{big.NewInt(1), abs}
	}
	v := abs.Int64()
	out := []*big.Int{}
	for d := int64(1); d*d <= v; d++ {
		if v%d == 0 {
			out = append(out, big.NewInt(d))
			if d != v/d {
				out = append(out, big.NewInt(v/d))
			}
		}
	}
	return out
}

func polyEvalZero(coeffs []*Num, r *Num) bool {
	// Horner form
	acc := new(big.Rat)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, r.val)
		acc.Add(acc, coeffs[i].val)
	}
	return acc.Sign() == 0
}

// deflate divides the polynomial by (r - root) via synthetic division.
// The caller guarantees root actually is a root.
func deflate(coeffs []*Num, root *Num) []*Num {
	out := make([]*Num, len(coeffs)-1)
	carry := N(0)
	for i := len(coeffs) - 1; i >= 1; i-- {
		carry = numAdd(coeffs[i], numMul(root, carry))
		out[i-1] = carry
	}
	return out
}

// ratSqrt returns the exact rational square root of n when one exists.
func ratSqrt(n *Num) (*Num, bool) {
	if n.IsNegative() {
		return nil, false
	}
	num := n.Rat().Num()
	den := n.Rat().Denom()
	sn := new(big.Int).Sqrt(num)
	sd := new(big.Int).Sqrt(den)
	if new(big.Int).Mul(sn, sn).Cmp(num) != 0 || new(big.Int).Mul(sd, sd).Cmp(den) != 0 {
		return nil, false
	}
	return &Num{val: new(big.Rat).SetFrac(sn, sd)}, true
}
