package ode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ode "github.com/njchilds90/go-ode"
)

func TestDsolve_FirstLinear(t *testing.T) {
	res, err := ode.Dsolve(eqLinearHomogeneous(), "y", "x", ode.HintFirstLinear)
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, "1st_linear", res.Hint)
	assert.Equal(t, "y = C1*x", res.Solutions[0].String())
}

func TestDsolve_Separable(t *testing.T) {
	res, err := ode.Dsolve(eqLinearHomogeneous(), "y", "x", ode.HintSeparable)
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, "ln(y) = C1 + ln(x)", res.Solutions[0].String())
}

func TestDsolve_SeparableIntegral(t *testing.T) {
	res, err := ode.Dsolve(eqLinearHomogeneous(), "y", "x", "separable_Integral")
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	sol := res.Solutions[0].String()
	assert.Contains(t, sol, "Integral(")
}

func TestDsolve_ConstCoeff(t *testing.T) {
	res, err := ode.Dsolve(eqConstCoeff(), "y", "x", "nth_linear_constant_coeff_homogeneous")
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, "y = C1*exp(x) + C2*exp(2*x)", res.Solutions[0].String())
}

func TestDsolve_ConstCoeff_RepeatedRoot(t *testing.T) {
	// y'' - 2y' + y = 0 has the double root 1: y = C1*e^x + C2*x*e^x
	eq := ode.Eq(
		ode.AddOf(
			ode.DOf("y", "x", 2),
			ode.MulOf(ode.N(-2), ode.DOf("y", "x", 1)),
			ode.FnOf("y", "x"),
		),
		ode.N(0),
	)
	res, err := ode.Dsolve(eq, "y", "x", "nth_linear_constant_coeff_homogeneous")
	require.NoError(t, err)
	sol := res.Solutions[0].String()
	assert.Contains(t, sol, "C1*exp(x)")
	assert.Contains(t, sol, "C2*exp(x)*x")
}

func TestDsolve_ConstCoeff_ComplexRoots(t *testing.T) {
	// y'' + y = 0: y = C1*cos(x) + C2*sin(x)
	eq := ode.Eq(ode.AddOf(ode.DOf("y", "x", 2), ode.FnOf("y", "x")), ode.N(0))
	res, err := ode.Dsolve(eq, "y", "x", "nth_linear_constant_coeff_homogeneous")
	require.NoError(t, err)
	sol := res.Solutions[0].String()
	assert.Contains(t, sol, "cos(x)")
	assert.Contains(t, sol, "sin(x)")
}

func TestDsolve_ConstCoeff_ThirdOrder(t *testing.T) {
	// y''' - 6y'' + 11y' - 6y = 0, roots 1, 2, 3
	eq := ode.Eq(
		ode.AddOf(
			ode.DOf("y", "x", 3),
			ode.MulOf(ode.N(-6), ode.DOf("y", "x", 2)),
			ode.MulOf(ode.N(11), ode.DOf("y", "x", 1)),
			ode.MulOf(ode.N(-6), ode.FnOf("y", "x")),
		),
		ode.N(0),
	)
	res, err := ode.Dsolve(eq, "y", "x", "nth_linear_constant_coeff_homogeneous")
	require.NoError(t, err)
	sol := res.Solutions[0].String()
	assert.Contains(t, sol, "C1*exp(x)")
	assert.Contains(t, sol, "C2*exp(2*x)")
	assert.Contains(t, sol, "C3*exp(3*x)")
}

func TestDsolve_Exact(t *testing.T) {
	res, err := ode.Dsolve(eqExact(), "y", "x", ode.HintExact)
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, "x^2*y + y^3 = C1", res.Solutions[0].String())
}

func TestDsolve_Bernoulli(t *testing.T) {
	res, err := ode.Dsolve(eqBernoulli(), "y", "x", ode.HintBernoulli)
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	// w = 1/y satisfies w' - w = -1; y is the reciprocal of the
	// reduced linear solution
	sol := res.Solutions[0].String()
	assert.Contains(t, sol, "y = ")
	assert.Contains(t, sol, "^-1")
}

func TestDsolve_Liouville(t *testing.T) {
	res, err := ode.Dsolve(eqLiouville(), "y", "x", "Liouville")
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, "1/2*y^2 = C1 + C2*ln(x)", res.Solutions[0].String())
}

func TestDsolve_HintNotApplicable(t *testing.T) {
	// y' = x is not a Bernoulli equation
	_, err := ode.Dsolve(eqQuadrature(), "y", "x", ode.HintBernoulli)
	require.Error(t, err)
	var notApplicable *ode.HintNotApplicableError
	require.ErrorAs(t, err, &notApplicable)
	assert.Equal(t, "Bernoulli", notApplicable.Hint)
	assert.Contains(t, notApplicable.Applicable, "separable")
	assert.Contains(t, notApplicable.Applicable, "1st_linear")
}

func TestDsolve_UnknownHint(t *testing.T) {
	_, err := ode.Dsolve(eqQuadrature(), "y", "x", "no_such_strategy")
	require.Error(t, err)
	var notApplicable *ode.HintNotApplicableError
	assert.ErrorAs(t, err, &notApplicable)
}

func TestDsolve_NotAnODE(t *testing.T) {
	eq := ode.Eq(ode.FnOf("y", "x"), ode.N(0))
	_, err := ode.Dsolve(eq, "y", "x", "best")
	require.Error(t, err)
	assert.ErrorIs(t, err, ode.ErrUnsupportedEquation)
}

func TestDsolve_NothingMatches(t *testing.T) {
	eq := ode.Eq(
		ode.DOf("y", "x", 1),
		ode.AddOf(ode.SinOf(ode.FnOf("y", "x")), ode.S("x")),
	)
	_, err := ode.Dsolve(eq, "y", "x", "best")
	require.Error(t, err)
	assert.ErrorIs(t, err, ode.ErrUnsupportedEquation)
}

func TestDsolve_BestSelectsSimplest(t *testing.T) {
	// both separable and 1st_linear solve y' = y/x; the explicit
	// y = C1*x is smaller than the implicit log form
	res, err := ode.Dsolve(eqLinearHomogeneous(), "y", "x", ode.HintBest)
	require.NoError(t, err)
	assert.Equal(t, "1st_linear", res.Hint)
	assert.Equal(t, "y = C1*x", res.Solutions[0].String())
}

func TestDsolve_DefaultHintIsBest(t *testing.T) {
	viaBest, err := ode.Dsolve(eqLinearHomogeneous(), "y", "x", ode.HintBest)
	require.NoError(t, err)
	viaDefault, err := ode.Dsolve(eqLinearHomogeneous(), "y", "x", "")
	require.NoError(t, err)
	assert.Equal(t, viaBest.Hint, viaDefault.Hint)
	assert.Equal(t, viaBest.Solutions[0].String(), viaDefault.Solutions[0].String())
}

func TestDsolve_All(t *testing.T) {
	res, err := ode.Dsolve(eqLinearHomogeneous(), "y", "x", ode.HintAll)
	require.NoError(t, err)
	assert.Equal(t, "all", res.Hint)
	require.NotNil(t, res.All)
	assert.Contains(t, res.All, "separable")
	assert.Contains(t, res.All, "1st_linear")
	assert.Contains(t, res.All, "separable_Integral")
	// the winner's solutions are surfaced directly
	assert.Equal(t, "y = C1*x", res.Solutions[0].String())
}

func TestDsolve_AllIntegral(t *testing.T) {
	res, err := ode.Dsolve(eqLinearHomogeneous(), "y", "x", ode.HintAllIntegral)
	require.NoError(t, err)
	assert.Equal(t, "all_Integral", res.Hint)
	require.NotNil(t, res.All)
	assert.Contains(t, res.All, "separable_Integral")
	assert.Contains(t, res.All, "1st_linear_Integral")
	assert.NotContains(t, res.All, "separable")
}

func TestDsolve_AllIntegral_NotApplicableWithoutVariants(t *testing.T) {
	_, err := ode.Dsolve(eqConstCoeff(), "y", "x", ode.HintAllIntegral)
	require.Error(t, err)
	var notApplicable *ode.HintNotApplicableError
	assert.ErrorAs(t, err, &notApplicable)
}

func TestDsolve_SolvingFailed(t *testing.T) {
	// y' = exp(x^2)*y is separable but the quadrature has no
	// elementary form; the closed-form hint must fail recoverably
	eq := ode.Eq(
		ode.DOf("y", "x", 1),
		ode.MulOf(ode.ExpOf(ode.PowOf(ode.S("x"), ode.N(2))), ode.FnOf("y", "x")),
	)
	_, err := ode.Dsolve(eq, "y", "x", ode.HintSeparable)
	require.Error(t, err)
	var failed *ode.SolvingFailedError
	require.ErrorAs(t, err, &failed)
	assert.Contains(t, failed.Reasons, "separable")

	// the _Integral variant still succeeds
	res, err := ode.Dsolve(eq, "y", "x", "separable_Integral")
	require.NoError(t, err)
	assert.Contains(t, res.Solutions[0].String(), "Integral(exp(x^2), x)")
}

func TestDsolve_Quadrature(t *testing.T) {
	res, err := ode.Dsolve(eqQuadrature(), "y", "x", "")
	require.NoError(t, err)
	assert.Equal(t, "y = C1 + 1/2*x^2", res.Solutions[0].String())
}

func TestDsolve_FactoredFirstOrder(t *testing.T) {
	// x*(y' + 1) = 0 is y' = -1 once the product is distributed
	eq := ode.Eq(
		ode.MulOf(ode.S("x"), ode.AddOf(ode.DOf("y", "x", 1), ode.N(1))),
		ode.N(0),
	)
	hints, err := ode.Classify(eq, "y", "x")
	require.NoError(t, err)
	assert.Contains(t, hints, "separable")
	assert.Contains(t, hints, "1st_linear")

	res, err := ode.Dsolve(eq, "y", "x", "")
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, "y = C1 + -1*x", res.Solutions[0].String())
	verdict, residual := ode.CheckSolution(eq, "y", "x", res.Solutions[0])
	assert.Equal(t, ode.Confirmed, verdict, "residual %v", residual)
}

func TestDsolve_FactoredConstCoeff(t *testing.T) {
	// 2*(y'' + y) = 0 has the same characteristic roots as y'' + y = 0
	eq := ode.Eq(
		ode.MulOf(ode.N(2), ode.AddOf(ode.DOf("y", "x", 2), ode.FnOf("y", "x"))),
		ode.N(0),
	)
	res, err := ode.Dsolve(eq, "y", "x", "nth_linear_constant_coeff_homogeneous")
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	assert.Equal(t, "y = C1*cos(x) + C2*sin(x)", res.Solutions[0].String())
	verdict, residual := ode.CheckSolution(eq, "y", "x", res.Solutions[0])
	assert.Equal(t, ode.Confirmed, verdict, "residual %v", residual)
}

func TestDsolve_HomogeneousParameterSymbol(t *testing.T) {
	// y' = u1*y/x carries a constant named like a reduction variable;
	// the substitution must pick a fresh name around it
	eq := ode.Eq(
		ode.DOf("y", "x", 1),
		ode.MulOf(ode.S("u1"), ode.FnOf("y", "x"), ode.PowOf(ode.S("x"), ode.N(-1))),
	)
	res, err := ode.Dsolve(eq, "y", "x", "1st_homogeneous_coeff_subs_dep_div_indep")
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	sol := res.Solutions[0]
	assert.Contains(t, sol.String(), "u1")
	verdict, _ := ode.CheckSolution(eq, "y", "x", sol)
	assert.NotEqual(t, ode.Refuted, verdict)
}

func TestDsolve_HomogeneousDepDivIndep(t *testing.T) {
	// y' = (x^2 + y^2)/(x*y) reduces under u = y/x
	x, y := ode.S("x"), ode.FnOf("y", "x")
	eq := ode.Eq(
		ode.DOf("y", "x", 1),
		ode.MulOf(
			ode.AddOf(ode.PowOf(x, ode.N(2)), ode.PowOf(y, ode.N(2))),
			ode.PowOf(ode.MulOf(x, y), ode.N(-1)),
		),
	)
	res, err := ode.Dsolve(eq, "y", "x", "1st_homogeneous_coeff_subs_dep_div_indep")
	require.NoError(t, err)
	require.Len(t, res.Solutions, 1)
	sol := res.Solutions[0]
	assert.Contains(t, sol.RHS.String(), "ln(x)")
	assert.Contains(t, sol.RHS.String(), "C1")
}
