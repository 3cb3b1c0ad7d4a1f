package ode_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ode "github.com/njchilds90/go-ode"
)

func TestCheckSolution_Explicit_Confirmed(t *testing.T) {
	// y = C1*x solves y' = y/x
	sol := ode.Eq(ode.S("y"), ode.MulOf(ode.S("C1"), ode.S("x")))
	verdict, residual := ode.CheckSolution(eqLinearHomogeneous(), "y", "x", sol)
	assert.Equal(t, ode.Confirmed, verdict)
	assert.Equal(t, "0", ode.String(residual))
}

func TestCheckSolution_Explicit_Refuted(t *testing.T) {
	// y' = y - x is solved by y = x + 1 + C1*exp(x); y = x misses the
	// constant and leaves a residual of 1
	eq := ode.Eq(
		ode.DOf("y", "x", 1),
		ode.AddOf(ode.FnOf("y", "x"), ode.MulOf(ode.N(-1), ode.S("x"))),
	)
	good := ode.Eq(ode.S("y"), ode.AddOf(ode.S("x"), ode.N(1), ode.MulOf(ode.S("C1"), ode.ExpOf(ode.S("x")))))
	verdict, _ := ode.CheckSolution(eq, "y", "x", good)
	assert.Equal(t, ode.Confirmed, verdict)

	bad := ode.Eq(ode.S("y"), ode.S("x"))
	verdict, residual := ode.CheckSolution(eq, "y", "x", bad)
	assert.Equal(t, ode.Refuted, verdict)
	assert.Equal(t, "1", ode.String(residual))
}

func TestCheckSolution_Explicit_Undetermined(t *testing.T) {
	// a wrong candidate whose residual is non-constant cannot be
	// refuted by a conservative checker
	sol := ode.Eq(ode.S("y"), ode.PowOf(ode.S("x"), ode.N(2)))
	verdict, residual := ode.CheckSolution(eqLinearHomogeneous(), "y", "x", sol)
	assert.Equal(t, ode.Undetermined, verdict)
	require.NotNil(t, residual)
	assert.NotEqual(t, "0", ode.String(residual))
}

func TestCheckSolution_SecondOrder(t *testing.T) {
	// y = C1*e^x + C2*e^(2x) solves y'' - 3y' + 2y = 0
	sol := ode.Eq(ode.S("y"), ode.AddOf(
		ode.MulOf(ode.S("C1"), ode.ExpOf(ode.S("x"))),
		ode.MulOf(ode.S("C2"), ode.ExpOf(ode.MulOf(ode.N(2), ode.S("x")))),
	))
	verdict, residual := ode.CheckSolution(eqConstCoeff(), "y", "x", sol)
	assert.Equal(t, ode.Confirmed, verdict)
	assert.Equal(t, "0", ode.String(residual))
}

func TestCheckSolution_Trig(t *testing.T) {
	// y = C1*cos(x) + C2*sin(x) solves y'' + y = 0
	eq := ode.Eq(ode.AddOf(ode.DOf("y", "x", 2), ode.FnOf("y", "x")), ode.N(0))
	sol := ode.Eq(ode.S("y"), ode.AddOf(
		ode.MulOf(ode.S("C1"), ode.CosOf(ode.S("x"))),
		ode.MulOf(ode.S("C2"), ode.SinOf(ode.S("x"))),
	))
	verdict, _ := ode.CheckSolution(eq, "y", "x", sol)
	assert.Equal(t, ode.Confirmed, verdict)
}

func TestCheckSolution_Implicit_Confirmed(t *testing.T) {
	// ln(y) = C1 + ln(x) is the implicit separable answer to y' = y/x
	sol := ode.Eq(
		ode.LnOf(ode.S("y")),
		ode.AddOf(ode.S("C1"), ode.LnOf(ode.S("x"))),
	)
	verdict, residual := ode.CheckSolution(eqLinearHomogeneous(), "y", "x", sol)
	assert.Equal(t, ode.Confirmed, verdict)
	assert.Equal(t, "0", ode.String(residual))
}

func TestCheckSolution_Implicit_Exact(t *testing.T) {
	// x^2*y + y^3 = C1 is conserved along 2xy + (x^2+3y^2)y' = 0
	sol := ode.Eq(
		ode.AddOf(
			ode.MulOf(ode.PowOf(ode.S("x"), ode.N(2)), ode.S("y")),
			ode.PowOf(ode.S("y"), ode.N(3)),
		),
		ode.S("C1"),
	)
	verdict, _ := ode.CheckSolution(eqExact(), "y", "x", sol)
	assert.Equal(t, ode.Confirmed, verdict)
}

func TestCheckSolution_Implicit_IntegralForm(t *testing.T) {
	// Integral(1/y, y) = C1 + Integral(1/x, x) verifies through the
	// fundamental theorem without evaluating either quadrature
	sol := ode.Eq(
		ode.IntegralOf(ode.PowOf(ode.S("y"), ode.N(-1)), "y"),
		ode.AddOf(ode.S("C1"), ode.IntegralOf(ode.PowOf(ode.S("x"), ode.N(-1)), "x")),
	)
	verdict, _ := ode.CheckSolution(eqLinearHomogeneous(), "y", "x", sol)
	assert.Equal(t, ode.Confirmed, verdict)
}

func TestCheckSolution_Implicit_HigherOrderUndetermined(t *testing.T) {
	// implicit candidates are only checked against first-order
	// normal forms
	sol := ode.Eq(ode.PowOf(ode.S("y"), ode.N(2)), ode.S("C1"))
	verdict, _ := ode.CheckSolution(eqConstCoeff(), "y", "x", sol)
	assert.Equal(t, ode.Undetermined, verdict)
}

func TestCheckSolution_RoundTrip_NeverRefuted(t *testing.T) {
	// every solution any hint produces must check out as Confirmed or
	// Undetermined, never Refuted
	cases := []struct {
		name string
		eq   *ode.Equation
	}{
		{"linear_homogeneous", eqLinearHomogeneous()},
		{"const_coeff", eqConstCoeff()},
		{"quadrature", eqQuadrature()},
		{"bernoulli", eqBernoulli()},
		{"exact", eqExact()},
		{"liouville", eqLiouville()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hints, err := ode.Classify(tc.eq, "y", "x")
			require.NoError(t, err)
			for _, hint := range hints {
				if hint == "best" || hint == "all" || hint == "all_Integral" {
					continue
				}
				res, err := ode.Dsolve(tc.eq, "y", "x", hint)
				if err != nil {
					// recoverable: this strategy could not finish
					continue
				}
				for i, sol := range res.Solutions {
					verdict, residual := ode.CheckSolution(tc.eq, "y", "x", sol)
					assert.NotEqual(t, ode.Refuted, verdict,
						fmt.Sprintf("%s solution %d (%s) refuted, residual %v", hint, i, sol, residual))
				}
			}
		})
	}
}

func TestCheckSolution_RoundTrip_Confirms(t *testing.T) {
	// the flagship paths must fully confirm, not just avoid refutation
	cases := []struct {
		eq   *ode.Equation
		hint string
	}{
		{eqLinearHomogeneous(), "1st_linear"},
		{eqLinearHomogeneous(), "separable"},
		{eqConstCoeff(), "nth_linear_constant_coeff_homogeneous"},
		{eqExact(), "1st_exact"},
		{eqQuadrature(), "separable"},
	}
	for _, tc := range cases {
		res, err := ode.Dsolve(tc.eq, "y", "x", tc.hint)
		require.NoError(t, err, tc.hint)
		for _, sol := range res.Solutions {
			verdict, residual := ode.CheckSolution(tc.eq, "y", "x", sol)
			assert.Equal(t, ode.Confirmed, verdict,
				fmt.Sprintf("%s: %s (residual %v)", tc.hint, sol, residual))
		}
	}
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "confirmed", ode.Confirmed.String())
	assert.Equal(t, "refuted", ode.Refuted.String())
	assert.Equal(t, "undetermined", ode.Undetermined.String())
}
