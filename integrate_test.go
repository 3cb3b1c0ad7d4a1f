package ode_test

import (
	"testing"

	ode "github.com/njchilds90/go-ode"
)

func TestIntegrate_Constant(t *testing.T) {
	r, ok := ode.Integrate(ode.N(5), "x")
	if !ok || ode.String(r) != "5*x" {
		t.Errorf("∫5 dx should be 5*x, got %v", r)
	}
}

func TestIntegrate_Variable(t *testing.T) {
	r, ok := ode.Integrate(ode.S("x"), "x")
	if !ok || ode.String(r) != "1/2*x^2" {
		t.Errorf("∫x dx should be 1/2*x^2, got %v", r)
	}
}

func TestIntegrate_Power(t *testing.T) {
	r, ok := ode.Integrate(ode.PowOf(ode.S("x"), ode.N(3)), "x")
	if !ok || ode.String(r) != "1/4*x^4" {
		t.Errorf("∫x^3 dx should be 1/4*x^4, got %v", r)
	}
}

func TestIntegrate_InverseX(t *testing.T) {
	r, ok := ode.Integrate(ode.PowOf(ode.S("x"), ode.N(-1)), "x")
	if !ok || ode.String(r) != "ln(x)" {
		t.Errorf("∫x^-1 dx should be ln(x), got %v", r)
	}
}

func TestIntegrate_ShiftedInverse(t *testing.T) {
	// ∫1/(2x+1) dx = ln(2x+1)/2
	arg := ode.AddOf(ode.MulOf(ode.N(2), ode.S("x")), ode.N(1))
	r, ok := ode.Integrate(ode.PowOf(arg, ode.N(-1)), "x")
	if !ok || ode.String(r) != "1/2*ln(2*x + 1)" {
		t.Errorf("want 1/2*ln(2*x + 1), got %v", r)
	}
}

func TestIntegrate_Sin(t *testing.T) {
	r, ok := ode.Integrate(ode.SinOf(ode.S("x")), "x")
	if !ok || ode.String(r) != "-1*cos(x)" {
		t.Errorf("∫sin(x) dx should be -1*cos(x), got %v", r)
	}
}

func TestIntegrate_Cos(t *testing.T) {
	r, ok := ode.Integrate(ode.CosOf(ode.S("x")), "x")
	if !ok || ode.String(r) != "sin(x)" {
		t.Errorf("∫cos(x) dx should be sin(x), got %v", r)
	}
}

func TestIntegrate_Exp(t *testing.T) {
	r, ok := ode.Integrate(ode.ExpOf(ode.S("x")), "x")
	if !ok || ode.String(r) != "exp(x)" {
		t.Errorf("∫exp(x) dx should be exp(x), got %v", r)
	}
}

func TestIntegrate_ExpLinearArg(t *testing.T) {
	// ∫exp(-x) dx = -exp(-x)
	r, ok := ode.Integrate(ode.ExpOf(ode.MulOf(ode.N(-1), ode.S("x"))), "x")
	if !ok || ode.String(r) != "-1*exp(-1*x)" {
		t.Errorf("want -1*exp(-1*x), got %v", r)
	}
}

func TestIntegrate_Ln(t *testing.T) {
	// ∫ln(x) dx = x*ln(x) - x
	r, ok := ode.Integrate(ode.LnOf(ode.S("x")), "x")
	if !ok {
		t.Fatalf("∫ln(x) dx should succeed")
	}
	// verify by differentiating back
	d := ode.Canonicalize(ode.Diff(r, "x"))
	if ode.String(d) != "ln(x)" {
		t.Errorf("d/dx of the antiderivative should be ln(x), got %s", ode.String(d))
	}
}

func TestIntegrate_Sum(t *testing.T) {
	x := ode.S("x")
	r, ok := ode.Integrate(ode.AddOf(x, ode.N(1)), "x")
	if !ok || ode.String(r) != "x + 1/2*x^2" {
		t.Errorf("∫(x+1) dx, got %v", r)
	}
}

func TestIntegrate_ConstantMultiple(t *testing.T) {
	r, ok := ode.Integrate(ode.MulOf(ode.N(-1), ode.PowOf(ode.S("x"), ode.N(-1))), "x")
	if !ok || ode.String(r) != "-1*ln(x)" {
		t.Errorf("∫-1/x dx should be -1*ln(x), got %v", r)
	}
}

func TestIntegrate_ByParts_PolyExp(t *testing.T) {
	// ∫x*exp(x) dx = x*exp(x) - exp(x); verify by differentiating
	x := ode.S("x")
	r, ok := ode.Integrate(ode.MulOf(x, ode.ExpOf(x)), "x")
	if !ok {
		t.Fatalf("∫x*exp(x) dx should succeed")
	}
	back := ode.Canonicalize(ode.Diff(r, "x"))
	want := ode.Canonicalize(ode.MulOf(x, ode.ExpOf(x)))
	if ode.String(back) != ode.String(want) {
		t.Errorf("derivative of antiderivative: want %s, got %s", ode.String(want), ode.String(back))
	}
}

func TestIntegrate_Unsupported(t *testing.T) {
	// exp(x^2) has no elementary antiderivative and no rule covers it
	_, ok := ode.Integrate(ode.ExpOf(ode.PowOf(ode.S("x"), ode.N(2))), "x")
	if ok {
		t.Errorf("∫exp(x^2) dx should not be claimed solvable")
	}
}
