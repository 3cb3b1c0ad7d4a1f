package ode

import (
	"strings"
)

// ============================================================
// Hint names
// ============================================================

const (
	HintSeparable              = "separable"
	HintExact                  = "1st_exact"
	HintFirstLinear            = "1st_linear"
	HintBernoulli              = "Bernoulli"
	HintHomogeneousDepDivIndep = "1st_homogeneous_coeff_subs_dep_div_indep"
	HintHomogeneousIndepDivDep = "1st_homogeneous_coeff_subs_indep_div_dep"
	HintNthLinearConstCoeff    = "nth_linear_constant_coeff_homogeneous"
	HintLiouville              = "Liouville"

	HintBest        = "best"
	HintAll         = "all"
	HintAllIntegral = "all_Integral"

	integralSuffix = "_Integral"
)

// ============================================================
// Shared equation analysis
// ============================================================

// odeContext is the shared analysis every predicate works from: the
// equation residual with derivative nodes replaced by plain placeholder
// symbols (y, y', y''), plus the first-order normal form when the
// equation is linear in y'. Built once per classification run.
type odeContext struct {
	eq    *Equation
	fn, v string
	order int

	expr Expr // algebraized residual
	m, n Expr // expr = m + n*y' when linear in y'; nil otherwise
	f    Expr // normal form rhs of y' = f(x,y); nil otherwise
}

// dsym names the placeholder symbol for the k-th derivative of fn.
func dsym(fn string, k int) string {
	return fn + strings.Repeat("'", k)
}

func newODEContext(eq *Equation, fn, v string) *odeContext {
	residual := eq.Residual()
	order, _ := maxDerivOrder(residual, fn, v)
	// canonicalize so factored inputs like x*(y'+1) expose their
	// coefficients to the polynomial analysis below
	expr := Canonicalize(replaceDeriv(residual, fn, v, func(k int) Expr {
		return S(dsym(fn, k))
	}))

	ctx := &odeContext{eq: eq, fn: fn, v: v, order: order, expr: expr}
	if order == 1 {
		d1 := dsym(fn, 1)
		coeffs := PolyCoeffs(expr, d1)
		linear := true
		for deg := range coeffs {
			if deg > 1 {
				linear = false
			}
		}
		m, hasM := coeffs[0]
		n, hasN := coeffs[1]
		if !hasM {
			m = N(0)
		}
		if linear && hasN && !isZeroNum(n) && freeOf(m, d1) && freeOf(n, d1) {
			ctx.m, ctx.n = m, n
			ctx.f = Canonicalize(MulOf(N(-1), m, PowOf(n, N(-1))))
		}
	}
	return ctx
}

// termsOf views e as a sum.
func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// factorsOf views e as a product.
func factorsOf(e Expr) []Expr {
	if m, ok := e.(*Mul); ok {
		return m.factors
	}
	return []Expr{e}
}

// ============================================================
// matchInfo — per-hint rewritten forms
// ============================================================

// matchInfo carries the intermediate rewritten form a predicate
// computed while matching, so the solving procedure does not redo the
// work. The classifier caches one per matched hint.
type matchInfo struct {
	p, q   Expr   // 1st_linear / Bernoulli: y' + p*y = q (*y^n)
	nExp   *Num   // Bernoulli exponent
	sepX   Expr   // separable: y' = sepX(x) * sepY(y)
	sepY   Expr
	gy, hx Expr   // Liouville: y'' + gy(y)*y'^2 + hx(x)*y' = 0
	coeffs []*Num // nth-linear: coeffs[k] multiplies y^(k)
}

// ============================================================
// Hint registry
// ============================================================

// Hint is a registered solving strategy: a name, the order range it
// targets, a structural predicate and a solving procedure. Predicates
// are pure and cheap relative to solving; procedures may fail, which
// the dispatcher treats as recoverable.
type Hint struct {
	name     string
	minOrder int
	maxOrder int // 0 means unbounded above
	match    func(*odeContext) *matchInfo
	solve    func(*odeContext, *matchInfo, bool) ([]*Equation, error)
	integral bool // also registered as a <name>_Integral variant
}

func (h Hint) Name() string { return h.name }

func (h Hint) ordersInclude(order int) bool {
	if order < h.minOrder {
		return false
	}
	return h.maxOrder == 0 || order <= h.maxOrder
}

// Registry is the fixed, ordered catalog of solving strategies. It is
// built once and never mutated; registration order is the base
// preference ranking used by classification and tie-breaking.
type Registry struct {
	hints []Hint
}

// DefaultRegistry builds the standard catalog.
func DefaultRegistry() *Registry {
	return &Registry{hints: []Hint{
		{name: HintSeparable, minOrder: 1, maxOrder: 1, match: matchSeparable, solve: solveSeparable, integral: true},
		{name: HintExact, minOrder: 1, maxOrder: 1, match: matchExact, solve: solveExact, integral: true},
		{name: HintFirstLinear, minOrder: 1, maxOrder: 1, match: matchFirstLinear, solve: solveFirstLinear, integral: true},
		{name: HintBernoulli, minOrder: 1, maxOrder: 1, match: matchBernoulli, solve: solveBernoulli, integral: true},
		{name: HintHomogeneousDepDivIndep, minOrder: 1, maxOrder: 1, match: matchHomogeneous, solve: solveHomogeneousDepDivIndep},
		{name: HintHomogeneousIndepDivDep, minOrder: 1, maxOrder: 1, match: matchHomogeneous, solve: solveHomogeneousIndepDivDep},
		{name: HintNthLinearConstCoeff, minOrder: 1, match: matchNthLinearConstCoeff, solve: solveNthLinearConstCoeff},
		{name: HintLiouville, minOrder: 2, maxOrder: 2, match: matchLiouville, solve: solveLiouville, integral: true},
	}}
}

// std is the process-wide registry: write-once at initialization,
// read-only afterward.
var std = DefaultRegistry()

// Hints returns the concrete hints in registration order.
func (r *Registry) Hints() []Hint { return r.hints }

func (r *Registry) lookup(name string) (Hint, bool, bool) {
	base := strings.TrimSuffix(name, integralSuffix)
	wantIntegral := base != name
	for _, h := range r.hints {
		if h.name == base {
			if wantIntegral && !h.integral {
				return Hint{}, false, false
			}
			return h, wantIntegral, true
		}
	}
	return Hint{}, false, false
}

// ============================================================
// Predicates
// ============================================================

// matchSeparable accepts y' = g(x)*h(y): every factor of the normal
// form depends on at most one of the two variables.
func matchSeparable(ctx *odeContext) *matchInfo {
	if ctx.f == nil {
		return nil
	}
	x, y := ctx.v, ctx.fn
	gx, hy := []Expr{}, []Expr{}
	for _, f := range factorsOf(ctx.f) {
		switch {
		case freeOf(f, y):
			gx = append(gx, f)
		case freeOf(f, x):
			hy = append(hy, f)
		default:
			return nil
		}
	}
	if len(hy) == 0 {
		// no y dependence at all: y' = g(x), take h = 1
		hy = append(hy, N(1))
	}
	return &matchInfo{
		sepX: MulOf(append([]Expr{N(1)}, gx...)...).Simplify(),
		sepY: MulOf(append([]Expr{N(1)}, hy...)...).Simplify(),
	}
}

// matchExact accepts M(x,y) + N(x,y)*y' = 0 with dM/dy == dN/dx.
func matchExact(ctx *odeContext) *matchInfo {
	if ctx.m == nil || ctx.n == nil {
		return nil
	}
	x, y := ctx.v, ctx.fn
	if isZeroNum(ctx.m) {
		return nil
	}
	diff := Canonicalize(AddOf(Diff(ctx.m, y), MulOf(N(-1), Diff(ctx.n, x))))
	if !isZeroNum(diff) {
		return nil
	}
	// a closedness test alone would also accept pure quadratures;
	// require genuine y dependence so the hint earns its name
	if freeOf(ctx.m, y) && freeOf(ctx.n, y) {
		return nil
	}
	return &matchInfo{}
}

// matchFirstLinear accepts y' + P(x)*y = Q(x).
func matchFirstLinear(ctx *odeContext) *matchInfo {
	if ctx.f == nil {
		return nil
	}
	y := ctx.fn
	coeffs := PolyCoeffs(ctx.f, y)
	for deg := range coeffs {
		if deg > 1 {
			return nil
		}
	}
	c0, c1 := coeffs[0], coeffs[1]
	if c0 == nil {
		c0 = N(0)
	}
	if c1 == nil {
		c1 = N(0)
	}
	if !freeOf(c0, y) || !freeOf(c1, y) {
		return nil
	}
	return &matchInfo{
		p: MulOf(N(-1), c1).Simplify(),
		q: c0.Simplify(),
	}
}

// splitPowY decomposes a term as coeff * y^k with coeff free of y and
// rational k.
func splitPowY(t Expr, y string) (Expr, *Num, bool) {
	if freeOf(t, y) {
		return t, N(0), true
	}
	if s, ok := t.(*Sym); ok && s.name == y {
		return N(1), N(1), true
	}
	if p, ok := t.(*Pow); ok {
		if s, ok2 := p.base.(*Sym); ok2 && s.name == y {
			if k, ok3 := p.exp.(*Num); ok3 {
				return N(1), k, true
			}
		}
		return nil, nil, false
	}
	if m, ok := t.(*Mul); ok {
		coeff := []Expr{}
		var k *Num
		for _, f := range m.factors {
			if freeOf(f, y) {
				coeff = append(coeff, f)
				continue
			}
			if k != nil {
				return nil, nil, false
			}
			_, kk, ok2 := splitPowY(f, y)
			if !ok2 {
				return nil, nil, false
			}
			k = kk
		}
		if k == nil {
			return nil, nil, false
		}
		return MulOf(append([]Expr{N(1)}, coeff...)...).Simplify(), k, true
	}
	return nil, nil, false
}

// matchBernoulli accepts y' + P(x)*y = Q(x)*y^n with rational n not in
// {0, 1}.
func matchBernoulli(ctx *odeContext) *matchInfo {
	if ctx.f == nil {
		return nil
	}
	y := ctx.fn
	linCoeff := Expr(N(0))
	var nExp *Num
	qTerms := []Expr{}
	for _, t := range termsOf(ctx.f) {
		coeff, k, ok := splitPowY(t, y)
		if !ok || !freeOf(coeff, y) {
			return nil
		}
		switch {
		case k.IsZero():
			return nil // a forcing term breaks the Bernoulli form
		case k.IsOne():
			linCoeff = AddOf(linCoeff, coeff)
		default:
			if nExp != nil && numCmp(nExp, k) != 0 {
				return nil
			}
			nExp = k
			qTerms = append(qTerms, coeff)
		}
	}
	if nExp == nil {
		return nil
	}
	return &matchInfo{
		p:    MulOf(N(-1), linCoeff).Simplify(),
		q:    AddOf(append([]Expr{N(0)}, qTerms...)...).Simplify(),
		nExp: nExp,
	}
}

// matchHomogeneous accepts M + N*y' = 0 with M and N homogeneous of
// the same degree in (x, y). Both substitution directions share this
// predicate.
func matchHomogeneous(ctx *odeContext) *matchInfo {
	if ctx.m == nil || ctx.n == nil || ctx.f == nil {
		return nil
	}
	x, y := ctx.v, ctx.fn
	if isZeroNum(ctx.m) {
		return nil
	}
	if freeOf(ctx.f, y) {
		return nil
	}
	dm, okM := HomogeneousOrder(ctx.m, x, y)
	if !okM {
		return nil
	}
	dn, okN := HomogeneousOrder(ctx.n, x, y)
	if !okN || numCmp(dm, dn) != 0 {
		return nil
	}
	return &matchInfo{}
}

// matchNthLinearConstCoeff accepts sum(a_k * y^(k)) = 0 with every a_k
// a rational constant and no forcing term.
func matchNthLinearConstCoeff(ctx *odeContext) *matchInfo {
	coeffs := make([]*Num, ctx.order+1)
	rest := ctx.expr
	for k := ctx.order; k >= 0; k-- {
		name := dsym(ctx.fn, k)
		pc := PolyCoeffs(rest, name)
		for deg := range pc {
			if deg > 1 {
				return nil
			}
		}
		c := pc[1]
		if c == nil {
			c = Expr(N(0))
		}
		cn, ok := c.Simplify().(*Num)
		if !ok {
			return nil
		}
		coeffs[k] = cn
		rest = pc[0]
		if rest == nil {
			rest = N(0)
		}
	}
	if !isZeroNum(rest) {
		return nil
	}
	if coeffs[ctx.order].IsZero() {
		return nil
	}
	return &matchInfo{coeffs: coeffs}
}

// matchLiouville accepts y'' + g(y)*y'^2 + h(x)*y' = 0 (after dividing
// by the coefficient of y'').
func matchLiouville(ctx *odeContext) *matchInfo {
	x, y := ctx.v, ctx.fn
	d1, d2 := dsym(ctx.fn, 1), dsym(ctx.fn, 2)

	top := PolyCoeffs(ctx.expr, d2)
	for deg := range top {
		if deg > 1 {
			return nil
		}
	}
	c2 := top[1]
	if c2 == nil || isZeroNum(c2) || !freeOf(c2, d1) {
		return nil
	}
	rest := top[0]
	if rest == nil {
		return nil
	}
	low := PolyCoeffs(rest, d1)
	if c, ok := low[0]; ok && !isZeroNum(c) {
		return nil
	}
	for deg := range low {
		if deg > 2 {
			return nil
		}
	}
	cq := low[2]
	if cq == nil || isZeroNum(cq) {
		return nil
	}
	cl := low[1]
	if cl == nil {
		cl = N(0)
	}
	g := Canonicalize(MulOf(cq, PowOf(c2, N(-1))))
	h := Canonicalize(MulOf(cl, PowOf(c2, N(-1))))
	if !freeOf(g, x) || !freeOf(h, y) {
		return nil
	}
	if !freeOf(g, d1) || !freeOf(h, d1) || !freeOf(g, d2) || !freeOf(h, d2) {
		return nil
	}
	return &matchInfo{gy: g, hx: h}
}

// ============================================================
// Registry-level classification support
// ============================================================

// classifyWithInfo runs every predicate in registration order and
// returns the matched names (closed-form hints first, then _Integral
// variants, then meta-hints) together with the cached matchInfo per
// concrete hint.
func (r *Registry) classifyWithInfo(ctx *odeContext) ([]string, map[string]*matchInfo) {
	matched := []string{}
	infos := map[string]*matchInfo{}
	integrals := []string{}
	for _, h := range r.hints {
		if !h.ordersInclude(ctx.order) {
			continue
		}
		info := h.match(ctx)
		if info == nil {
			continue
		}
		matched = append(matched, h.name)
		infos[h.name] = info
		if h.integral {
			integrals = append(integrals, h.name+integralSuffix)
			infos[h.name+integralSuffix] = info
		}
	}
	names := append(append([]string{}, matched...), integrals...)
	if len(matched) > 0 {
		names = append(names, HintBest, HintAll)
		if len(integrals) > 0 {
			names = append(names, HintAllIntegral)
		}
	}
	return names, infos
}

func containsName(names []string, want string) bool {
	for _, n := range names {
		if n == want {
			return true
		}
	}
	return false
}
