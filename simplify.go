package alu

import (
	"math"
)

// simplify applies the rewrite rules for op to canonically ordered operands.
func (f *Factory) simplify(op BinaryOp, lhs, rhs Expr, tag int) (Expr, error) {
	switch op {
	case ADD:
		return f.newAddExpr(lhs, rhs)
	case MUL:
		return f.newMulExpr(lhs, rhs)
	case DIV:
		return f.newDivExpr(lhs, rhs)
	case MOD:
		return f.newModExpr(lhs, rhs)
	case EQL:
		return f.newEqlExpr(lhs, rhs, tag)
	default:
		panic("unreachable")
	}
}

// fixpoint returns lhs op rhs once no rule applies.
func (f *Factory) fixpoint(op BinaryOp, lhs, rhs Expr, tag int) (Expr, error) {
	eq, err := ExprEqualities(lhs).Merge(ExprEqualities(rhs))
	if err != nil {
		return nil, err
	}
	return f.raw(op, lhs, rhs, tag, eq), nil
}

// newAddExpr returns the expression representing the sum of lhs & rhs.
func (f *Factory) newAddExpr(lhs, rhs Expr) (Expr, error) {
	if a, ok := constantValue(lhs); ok {
		// Adding zero returns the other side: 0 + x == x
		if a == 0 {
			return rhs, nil
		}

		// Compute constant if both sides are constant.
		if b, ok := constantValue(rhs); ok {
			return f.Constant(a + b), nil
		}

		// Merge constant LHS with constant in RHS sum: X + (Y+z) == (X+Y) + z
		if r, ok := rhs.(*BinaryExpr); ok && r.Op == ADD {
			if b, ok := constantValue(r.LHS); ok {
				return f.add(f.Constant(a+b), r.RHS)
			}
		}
	}

	// Double repeated addends: x + x == 2*x
	if equalExpr(lhs, rhs) {
		return f.mul(f.Constant(2), lhs)
	}

	// Hoist constant out of LHS sum: (X+y) + z == X + (y+z)
	if l, ok := lhs.(*BinaryExpr); ok && l.Op == ADD && IsConstantExpr(l.LHS) {
		return f.nest(ADD, l.LHS, l.RHS, rhs)
	}

	// Hoist constant out of RHS sum: y + (X+z) == X + (y+z)
	if r, ok := rhs.(*BinaryExpr); ok && r.Op == ADD && IsConstantExpr(r.LHS) && !IsConstantExpr(lhs) {
		return f.nest(ADD, r.LHS, lhs, r.RHS)
	}

	// Pull out a shared factor: a*b + a*c == a * (b+c)
	if l, ok := lhs.(*BinaryExpr); ok && l.Op == MUL {
		if r, ok := rhs.(*BinaryExpr); ok && r.Op == MUL {
			switch {
			case equalExpr(l.LHS, r.LHS):
				return f.factor(l.LHS, l.RHS, r.RHS)
			case equalExpr(l.LHS, r.RHS):
				return f.factor(l.LHS, l.RHS, r.LHS)
			case equalExpr(l.RHS, r.LHS):
				return f.factor(l.RHS, l.LHS, r.RHS)
			case equalExpr(l.RHS, r.RHS):
				return f.factor(l.RHS, l.LHS, r.LHS)
			}
		}
	}

	// Absorb a term into its own multiple: a + a*b == a * (1+b)
	if r, ok := rhs.(*BinaryExpr); ok && r.Op == MUL {
		if equalExpr(lhs, r.LHS) {
			return f.factor(lhs, f.Constant(1), r.RHS)
		} else if equalExpr(lhs, r.RHS) {
			return f.factor(lhs, f.Constant(1), r.LHS)
		}
	}

	// Combine LHS with either addend of RHS if that pair simplifies.
	if r, ok := rhs.(*BinaryExpr); ok && r.Op == ADD {
		if sum, ok, err := f.tryCombine(ADD, lhs, r.LHS); err != nil {
			return nil, err
		} else if ok {
			return f.add(sum, r.RHS)
		}

		if sum, ok, err := f.tryCombine(ADD, lhs, r.RHS); err != nil {
			return nil, err
		} else if ok {
			return f.add(sum, r.LHS)
		}
	}

	return f.fixpoint(ADD, lhs, rhs, NoTag)
}

// factor returns a * (b+c).
func (f *Factory) factor(a, b, c Expr) (Expr, error) {
	sum, err := f.add(b, c)
	if err != nil {
		return nil, err
	}
	return f.mul(a, sum)
}

// newMulExpr returns the expression representing the product of lhs & rhs.
func (f *Factory) newMulExpr(lhs, rhs Expr) (Expr, error) {
	if a, ok := constantValue(lhs); ok {
		switch a {
		case 0:
			return lhs, nil
		case 1:
			return rhs, nil
		}

		// Compute constant if both sides are constant.
		if b, ok := constantValue(rhs); ok {
			return f.Constant(a * b), nil
		}

		// Merge constant LHS with constant in RHS product: X * (Y*z) == (X*Y) * z
		if r, ok := rhs.(*BinaryExpr); ok && r.Op == MUL {
			if b, ok := constantValue(r.LHS); ok {
				return f.mul(f.Constant(a*b), r.RHS)
			}
		}
	}

	// Hoist constant out of LHS product: (X*y) * z == X * (y*z)
	if l, ok := lhs.(*BinaryExpr); ok && l.Op == MUL && IsConstantExpr(l.LHS) {
		return f.nest(MUL, l.LHS, l.RHS, rhs)
	}

	// Hoist constant out of RHS product: y * (X*z) == X * (y*z)
	if r, ok := rhs.(*BinaryExpr); ok && r.Op == MUL && IsConstantExpr(r.LHS) && !IsConstantExpr(lhs) {
		return f.nest(MUL, r.LHS, lhs, r.RHS)
	}

	// Combine LHS with either factor of RHS if that pair simplifies.
	if r, ok := rhs.(*BinaryExpr); ok && r.Op == MUL {
		if prod, ok, err := f.tryCombine(MUL, lhs, r.LHS); err != nil {
			return nil, err
		} else if ok {
			return f.mul(prod, r.RHS)
		}

		if prod, ok, err := f.tryCombine(MUL, lhs, r.RHS); err != nil {
			return nil, err
		} else if ok {
			return f.mul(prod, r.LHS)
		}
	}

	return f.fixpoint(MUL, lhs, rhs, NoTag)
}

// newDivExpr returns the expression representing lhs divided by rhs,
// truncated toward zero. A zero divisor has been rejected by the caller.
func (f *Factory) newDivExpr(lhs, rhs Expr) (Expr, error) {
	// Zero divided by anything is zero.
	if isConstantValue(lhs, 0) {
		return lhs, nil
	}

	if b, ok := constantValue(rhs); ok {
		if b == 1 {
			return lhs, nil
		}

		// Compute constant if both sides are constant.
		if a, ok := constantValue(lhs); ok {
			return f.Constant(a / b), nil
		}

		// Divide out an exact constant factor: (X*y) / Z == (X/Z) * y
		if l, ok := lhs.(*BinaryExpr); ok && l.Op == MUL {
			if a, ok := constantValue(l.LHS); ok && a%b == 0 {
				return f.mul(f.Constant(a/b), l.RHS)
			}
		}

		// Truncation yields zero if |x| < |Z|.
		if d := f.Deduce(lhs); d.Kind == DeductionBounded && b != math.MinInt64 {
			if m := abs64(b); d.Min > -m && d.Max < m {
				return f.Constant(0), nil
			}
		}

		// Drop a small remainder: (Z*q + r) / Z == q
		if q, _, ok, err := f.splitMultiple(lhs, b); err != nil {
			return nil, err
		} else if ok {
			return q, nil
		}
	}

	return f.fixpoint(DIV, lhs, rhs, NoTag)
}

// newModExpr returns the expression representing the remainder of lhs
// divided by rhs. Invalid constant operands have been rejected by the caller.
func (f *Factory) newModExpr(lhs, rhs Expr) (Expr, error) {
	if isConstantValue(lhs, 0) {
		return lhs, nil
	}

	if b, ok := constantValue(rhs); ok {
		// Compute constant if both sides are constant.
		if a, ok := constantValue(lhs); ok {
			return f.Constant(a % b), nil
		}

		if b == 1 {
			return f.Constant(0), nil
		}

		// Remainder is the dividend if it already lies in [0, Z-1].
		if d := f.Deduce(lhs); d.Kind == DeductionBounded && d.Min >= 0 && d.Max < b {
			return lhs, nil
		}

		// Keep only a small remainder: (Z*q + r) % Z == r
		if _, r, ok, err := f.splitMultiple(lhs, b); err != nil {
			return nil, err
		} else if ok {
			return r, nil
		}
	}

	return f.fixpoint(MOD, lhs, rhs, NoTag)
}

// newEqlExpr returns the expression comparing lhs & rhs. Decided comparisons
// collapse to a constant and record the outcome against tag.
func (f *Factory) newEqlExpr(lhs, rhs Expr, tag int) (Expr, error) {
	if equalExpr(lhs, rhs) {
		return f.resolve(tag, true)
	}

	if a, ok := constantValue(lhs); ok {
		if b, ok := constantValue(rhs); ok {
			return f.resolve(tag, a == b)
		}

		// Inputs are always digits.
		if _, ok := rhs.(*InputExpr); ok && (a < MinDigit || a > MaxDigit) {
			return f.resolve(tag, false)
		}
	}

	// Operands with disjoint ranges are never equal.
	l, r := f.Deduce(lhs), f.Deduce(rhs)
	if l.Kind == DeductionBounded && r.Kind == DeductionBounded && (l.Max < r.Min || r.Max < l.Min) {
		return f.resolve(tag, false)
	}

	return f.fixpoint(EQL, lhs, rhs, tag)
}

// resolve returns the constant outcome of a decided comparison.
func (f *Factory) resolve(tag int, equal bool) (Expr, error) {
	value, outcome := int64(0), EqualityFailed
	if equal {
		value, outcome = 1, EqualityWon
	}

	eq, err := Equalities{}.Set(tag, outcome)
	if err != nil {
		return nil, err
	}
	return f.constant(value, eq), nil
}

// splitMultiple rewrites a non-negative x as c*q + r where every addend of q
// is an exact multiple of c and r lies in [0, c-1]. Reports false if x has no
// such addends or the bounds cannot be proven.
func (f *Factory) splitMultiple(x Expr, c int64) (q, r Expr, ok bool, err error) {
	if c <= 1 {
		return nil, nil, false, nil
	} else if x, ok := x.(*BinaryExpr); !ok || (x.Op != ADD && x.Op != MUL) {
		return nil, nil, false, nil
	}
	if d := f.Deduce(x); d.Kind != DeductionBounded || d.Min < 0 {
		return nil, nil, false, nil
	}

	var quotients, remainders []Expr
	for _, term := range addends(x, nil) {
		if v, ok := constantValue(term); ok {
			if v/c != 0 {
				quotients = append(quotients, f.Constant(v/c))
			}
			if v%c != 0 {
				remainders = append(remainders, f.Constant(v%c))
			}
			continue
		}

		if div, ok, err := f.quotient(term, c); err != nil {
			return nil, nil, false, err
		} else if ok {
			quotients = append(quotients, div)
		} else {
			remainders = append(remainders, term)
		}
	}
	if len(quotients) == 0 {
		return nil, nil, false, nil
	}

	if r, err = f.sum(remainders); err != nil {
		return nil, nil, false, err
	} else if d := f.Deduce(r); d.Kind != DeductionBounded || d.Min < 0 || d.Max >= c {
		return nil, nil, false, nil
	}
	if q, err = f.sum(quotients); err != nil {
		return nil, nil, false, err
	}
	return q, r, true, nil
}

// quotient returns expr/c if expr is built as an exact multiple of c.
func (f *Factory) quotient(expr Expr, c int64) (Expr, bool, error) {
	switch expr := expr.(type) {
	case *ConstantExpr:
		if expr.Value%c == 0 {
			return f.Constant(expr.Value / c), true, nil
		}

	case *BinaryExpr:
		switch expr.Op {
		case MUL:
			for _, pair := range [][2]Expr{{expr.LHS, expr.RHS}, {expr.RHS, expr.LHS}} {
				if div, ok, err := f.quotient(pair[0], c); err != nil {
					return nil, false, err
				} else if ok {
					prod, err := f.mul(div, pair[1])
					return prod, err == nil, err
				}
			}

		case ADD:
			l, ok, err := f.quotient(expr.LHS, c)
			if err != nil || !ok {
				return nil, false, err
			}
			r, ok, err := f.quotient(expr.RHS, c)
			if err != nil || !ok {
				return nil, false, err
			}
			sum, err := f.add(l, r)
			return sum, err == nil, err
		}
	}
	return nil, false, nil
}

// addends appends the terms of a nested sum to a.
func addends(expr Expr, a []Expr) []Expr {
	if e, ok := expr.(*BinaryExpr); ok && e.Op == ADD {
		return addends(e.RHS, addends(e.LHS, a))
	}
	return append(a, expr)
}

// sum returns the sum of terms, or zero if there are none.
func (f *Factory) sum(terms []Expr) (Expr, error) {
	if len(terms) == 0 {
		return f.Constant(0), nil
	}

	expr := terms[0]
	for _, term := range terms[1:] {
		var err error
		if expr, err = f.add(expr, term); err != nil {
			return nil, err
		}
	}
	return expr, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
