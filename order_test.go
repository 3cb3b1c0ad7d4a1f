package ode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ode "github.com/njchilds90/go-ode"
)

func TestOrder_FirstOrder(t *testing.T) {
	// y' = y/x
	eq := ode.Eq(
		ode.DOf("y", "x", 1),
		ode.MulOf(ode.FnOf("y", "x"), ode.PowOf(ode.S("x"), ode.N(-1))),
	)
	assert.Equal(t, 1, ode.Order(eq, "y", "x"))
}

func TestOrder_ThirdOrder(t *testing.T) {
	// y''' + y = 0
	eq := ode.Eq(ode.AddOf(ode.DOf("y", "x", 3), ode.FnOf("y", "x")), ode.N(0))
	assert.Equal(t, 3, ode.Order(eq, "y", "x"))
}

func TestOrder_InsideFunction(t *testing.T) {
	// sin(y'') = 0 still has order 2
	eq := ode.Eq(ode.SinOf(ode.DOf("y", "x", 2)), ode.N(0))
	assert.Equal(t, 2, ode.Order(eq, "y", "x"))
}

func TestOrder_NoDerivative(t *testing.T) {
	// y = 0 is algebraic
	eq := ode.Eq(ode.FnOf("y", "x"), ode.N(0))
	assert.Equal(t, 0, ode.Order(eq, "y", "x"))
}

func TestHomogeneousOrder_Quadratic(t *testing.T) {
	x, y := ode.S("x"), ode.S("y")
	e := ode.AddOf(ode.PowOf(x, ode.N(2)), ode.PowOf(y, ode.N(2)))
	deg, ok := ode.HomogeneousOrder(e, "x", "y")
	require.True(t, ok)
	assert.Equal(t, "2", deg.String())
}

func TestHomogeneousOrder_Mixed(t *testing.T) {
	// x + y^2 has no uniform degree
	x, y := ode.S("x"), ode.S("y")
	e := ode.AddOf(x, ode.PowOf(y, ode.N(2)))
	_, ok := ode.HomogeneousOrder(e, "x", "y")
	assert.False(t, ok)
}

func TestHomogeneousOrder_Rational(t *testing.T) {
	// sqrt(x*y) has degree 1
	e := ode.SqrtOf(ode.MulOf(ode.S("x"), ode.S("y")))
	deg, ok := ode.HomogeneousOrder(e, "x", "y")
	require.True(t, ok)
	assert.Equal(t, "1", deg.String())
}

func TestHomogeneousOrder_DegreeZeroRatio(t *testing.T) {
	// y/x is homogeneous of degree 0
	e := ode.MulOf(ode.S("y"), ode.PowOf(ode.S("x"), ode.N(-1)))
	deg, ok := ode.HomogeneousOrder(e, "x", "y")
	require.True(t, ok)
	assert.Equal(t, "0", deg.String())
}

func TestHomogeneousOrder_NonMemberSymbol(t *testing.T) {
	// a*x is degree 1 in x alone; a counts as a constant
	e := ode.MulOf(ode.S("a"), ode.S("x"))
	deg, ok := ode.HomogeneousOrder(e, "x")
	require.True(t, ok)
	assert.Equal(t, "1", deg.String())
}

func TestHomogeneousOrder_FuncOfRatio(t *testing.T) {
	// sin(y/x) is degree 0; sin(x) is not homogeneous
	ratio := ode.MulOf(ode.S("y"), ode.PowOf(ode.S("x"), ode.N(-1)))
	deg, ok := ode.HomogeneousOrder(ode.SinOf(ratio), "x", "y")
	require.True(t, ok)
	assert.Equal(t, "0", deg.String())

	_, ok = ode.HomogeneousOrder(ode.SinOf(ode.S("x")), "x", "y")
	assert.False(t, ok)
}
