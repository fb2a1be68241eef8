package alu

import (
	"fmt"
)

// Assignment binds digits to inputs. A zero entry marks an unbound input.
type Assignment [NumInputs]int8

// ParseAssignment parses a string of up to NumInputs characters. Digits
// '1'-'9' bind the corresponding input and '_' leaves it unbound. Inputs past
// the end of the string are unbound.
func ParseAssignment(s string) (Assignment, error) {
	var a Assignment
	if len(s) > NumInputs {
		return a, fmt.Errorf("assignment too long: %q", s)
	}

	for i := 0; i < len(s); i++ {
		switch ch := s[i]; {
		case ch == '_':
		case ch >= '0'+MinDigit && ch <= '0'+MaxDigit:
			a[i] = int8(ch - '0')
		default:
			return a, fmt.Errorf("invalid digit %q at position %d: %q", ch, i, s)
		}
	}
	return a, nil
}

// With returns a copy of a with the index-th input bound to digit.
func (a Assignment) With(index int, digit int8) Assignment {
	assert(index >= 0 && index < NumInputs, "input index out of range: %d", index)
	assert(digit >= MinDigit && digit <= MaxDigit, "digit out of range: %d", digit)
	a[index] = digit
	return a
}

// Bound returns the set of bound inputs.
func (a Assignment) Bound() InputSet {
	var s InputSet
	for i, d := range a {
		if d != 0 {
			s = s.With(i)
		}
	}
	return s
}

// Project returns a copy of a with every input outside s unbound.
func (a Assignment) Project(s InputSet) Assignment {
	for i := range a {
		if !s.Has(i) {
			a[i] = 0
		}
	}
	return a
}

// Fill returns a copy of a with every unbound input set to digit.
func (a Assignment) Fill(digit int8) Assignment {
	for i := range a {
		if a[i] == 0 {
			a[i] = digit
		}
	}
	return a
}

// String returns the digits of a with '_' for unbound inputs.
func (a Assignment) String() string {
	buf := make([]byte, NumInputs)
	for i, d := range a {
		if d == 0 {
			buf[i] = '_'
		} else {
			buf[i] = '0' + byte(d)
		}
	}
	return string(buf)
}

// CompareAssignments compares two assignments as digit strings, treating
// unbound inputs as zero.
func CompareAssignments(a, b Assignment) int {
	for i := range a {
		if a[i] != b[i] {
			return compareInt(int(a[i]), int(b[i]))
		}
	}
	return 0
}

// residualKey identifies the residual of an expression under bindings
// projected onto the inputs and comparisons the expression depends on.
type residualKey struct {
	expr     Expr
	inputs   Assignment
	outcomes Equalities
}

// ValueForInputs returns expr with every input bound in inputs replaced by
// its digit and the result simplified. The residual keeps the equality
// record of expr and adds any comparisons decided by the substitution.
//
// Returns an error if the substitution divides by zero or takes an invalid
// modulo. Results are memoized per expression and relevant digits.
func (f *Factory) ValueForInputs(expr Expr, inputs Assignment) (Expr, error) {
	return f.ValueForBindings(expr, inputs, Equalities{})
}

// ValueForBindings is like ValueForInputs but also replaces each tracked
// comparison resolved in outcomes by its constant result. The comparison
// operands are dropped so callers must check the outcome separately.
func (f *Factory) ValueForBindings(expr Expr, inputs Assignment, outcomes Equalities) (Expr, error) {
	key := residualKey{
		expr:     expr,
		inputs:   inputs.Project(f.DependsOn(expr)),
		outcomes: outcomes.Project(f.Comparisons(expr)),
	}
	if key.inputs == (Assignment{}) && key.outcomes.IsZero() {
		return expr, nil
	} else if v, ok := f.residuals.Get(key); ok {
		return v, nil
	}

	v, err := f.substitute(expr, key.inputs, key.outcomes)
	if err != nil {
		return nil, err
	}
	f.residuals.Add(key, v)
	return v, nil
}

func (f *Factory) substitute(expr Expr, inputs Assignment, outcomes Equalities) (Expr, error) {
	switch expr := expr.(type) {
	case *ConstantExpr:
		return expr, nil

	case *InputExpr:
		if d := inputs[expr.Index]; d != 0 {
			return f.constant(int64(d), expr.Equalities), nil
		}
		return expr, nil

	case *BinaryExpr:
		if expr.Op == EQL && expr.Tag != NoTag && outcomes[expr.Tag] != EqualityUnresolved {
			v, err := f.resolve(expr.Tag, outcomes[expr.Tag] == EqualityWon)
			if err != nil {
				return nil, err
			}
			return f.withEqualities(v, expr.Equalities)
		}

		lhs, err := f.ValueForBindings(expr.LHS, inputs, outcomes)
		if err != nil {
			return nil, err
		}
		rhs, err := f.ValueForBindings(expr.RHS, inputs, outcomes)
		if err != nil {
			return nil, err
		}
		if lhs == expr.LHS && rhs == expr.RHS {
			return expr, nil
		}

		v, err := f.Intern(expr.Op, lhs, rhs, expr.Tag)
		if err != nil {
			return nil, err
		}
		return f.withEqualities(v, expr.Equalities)

	default:
		panic("unreachable")
	}
}

// Evaluate returns the value of expr under inputs.
// Returns ErrUnboundInputs if the value depends on an unbound input.
func (f *Factory) Evaluate(expr Expr, inputs Assignment) (int64, error) {
	v, err := f.ValueForInputs(expr, inputs)
	if err != nil {
		return 0, err
	}
	if value, ok := constantValue(v); ok {
		return value, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnboundInputs, f.DependsOn(v))
}
