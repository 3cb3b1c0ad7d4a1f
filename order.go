package ode

// ============================================================
// Order Analyzer
// ============================================================

// Order returns the differential order of eq with respect to the
// unknown function fn of v: the highest derivative of fn appearing
// anywhere in the equation, including inside function arguments,
// powers and products. It returns 0 when fn never appears
// differentiated; Dsolve rejects such input as not a differential
// equation.
func Order(eq *Equation, fn, v string) int {
	order, _ := maxDerivOrder(eq.Residual(), fn, v)
	return order
}

// ============================================================
// Homogeneity Analyzer
// ============================================================

// HomogeneousOrder returns the degree n such that scaling every listed
// symbol by t scales e by t^n, or ok=false when no uniform degree
// exists. The expression is canonicalized before the structural
// reduction so equivalent but differently written forms get the same
// answer. Degrees may be rational: sqrt(x) is homogeneous of degree
// 1/2 in x.
func HomogeneousOrder(e Expr, syms ...string) (*Num, bool) {
	members := map[string]struct{}{}
	for _, s := range syms {
		members[s] = struct{}{}
	}
	return homogeneousOrder(Canonicalize(e), members)
}

func homogeneousOrder(e Expr, members map[string]struct{}) (*Num, bool) {
	switch t := e.(type) {
	case *Num:
		if t.IsZero() {
			// zero is homogeneous of every degree; report 0
			return N(0), true
		}
		return N(0), true
	case *Sym:
		if _, ok := members[t.name]; ok {
			return N(1), true
		}
		return N(0), true
	case *Mul:
		total := N(0)
		for _, f := range t.factors {
			d, ok := homogeneousOrder(f, members)
			if !ok {
				return nil, false
			}
			total = numAdd(total, d)
		}
		return total, true
	case *Pow:
		en, ok := t.exp.(*Num)
		if !ok {
			// symbolic exponent: only degree-0 bases stay homogeneous
			d, ok2 := homogeneousOrder(t.base, members)
			if ok2 && d.IsZero() {
				if ed, ok3 := homogeneousOrder(t.exp, members); ok3 && ed.IsZero() {
					return N(0), true
				}
			}
			return nil, false
		}
		d, ok2 := homogeneousOrder(t.base, members)
		if !ok2 {
			return nil, false
		}
		return numMul(d, en), true
	case *Add:
		var degree *Num
		for _, term := range t.terms {
			d, ok := homogeneousOrder(term, members)
			if !ok {
				return nil, false
			}
			if degree == nil {
				degree = d
				continue
			}
			if numCmp(degree, d) != 0 {
				return nil, false
			}
		}
		if degree == nil {
			return N(0), true
		}
		return degree, true
	case *Func:
		// f(u) is homogeneous (of degree 0) only for a degree-0
		// argument
		d, ok := homogeneousOrder(t.arg, members)
		if ok && d.IsZero() {
			return N(0), true
		}
		return nil, false
	}
	return nil, false
}
