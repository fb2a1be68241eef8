package alu

import (
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// InputSet is a set of input indices. It also holds comparison tags.
type InputSet uint16

// NewInputSet returns a set containing the given indices.
func NewInputSet(indices ...int) InputSet {
	var s InputSet
	for _, i := range indices {
		s = s.With(i)
	}
	return s
}

// Has returns true if i is in the set.
func (s InputSet) Has(i int) bool {
	return i >= 0 && i < NumInputs && s&(1<<uint(i)) != 0
}

// With returns a copy of s that includes i.
func (s InputSet) With(i int) InputSet {
	assert(i >= 0 && i < NumInputs, "input index out of range: %d", i)
	return s | 1<<uint(i)
}

// Union returns the set of indices in either s or other.
func (s InputSet) Union(other InputSet) InputSet {
	return s | other
}

// Len returns the number of indices in the set.
func (s InputSet) Len() int {
	return bits.OnesCount16(uint16(s))
}

// First returns the lowest index in the set.
func (s InputSet) First() (int, bool) {
	if s == 0 {
		return 0, false
	}
	return bits.TrailingZeros16(uint16(s)), true
}

// Indices returns the indices in ascending order.
func (s InputSet) Indices() []int {
	a := make([]int, 0, s.Len())
	for i := 0; i < NumInputs; i++ {
		if s.Has(i) {
			a = append(a, i)
		}
	}
	return a
}

func (s InputSet) String() string {
	a := make([]string, 0, s.Len())
	for _, i := range s.Indices() {
		a = append(a, fmt.Sprint(i))
	}
	return "{" + strings.Join(a, ",") + "}"
}

// DependsOn returns the set of inputs that appear in expr.
func (f *Factory) DependsOn(expr Expr) InputSet {
	if s, ok := f.deps.Get(expr); ok {
		return s
	}

	var s InputSet
	switch expr := expr.(type) {
	case *ConstantExpr:
	case *InputExpr:
		s = s.With(expr.Index)
	case *BinaryExpr:
		s = f.DependsOn(expr.LHS).Union(f.DependsOn(expr.RHS))
	default:
		panic("unreachable")
	}

	f.deps.Add(expr, s)
	return s
}

// Comparisons returns the tags of the undecided tracked comparisons in expr.
func (f *Factory) Comparisons(expr Expr) InputSet {
	if s, ok := f.comparisons.Get(expr); ok {
		return s
	}

	var s InputSet
	if expr, ok := expr.(*BinaryExpr); ok {
		s = f.Comparisons(expr.LHS).Union(f.Comparisons(expr.RHS))
		if expr.Op == EQL && expr.Tag != NoTag {
			s = s.With(expr.Tag)
		}
	}

	f.comparisons.Add(expr, s)
	return s
}

// DeductionKind describes what is known about the range of an expression.
type DeductionKind int

const (
	// Nothing is known about the value.
	DeductionUnknown DeductionKind = iota

	// No assignment of inputs evaluates the expression without error.
	DeductionImpossible

	// Every successful evaluation lies in [Min, Max].
	DeductionBounded
)

// Deduction is a conservative range for the value of an expression.
type Deduction struct {
	Kind     DeductionKind
	Min, Max int64
}

// Bounded returns a deduction for the closed interval [min, max].
func Bounded(min, max int64) Deduction {
	assert(min <= max, "invalid interval: [%d, %d]", min, max)
	return Deduction{Kind: DeductionBounded, Min: min, Max: max}
}

// Impossible returns a deduction for an expression that never evaluates.
func Impossible() Deduction {
	return Deduction{Kind: DeductionImpossible}
}

// Contains returns true if v lies within a bounded deduction.
func (d Deduction) Contains(v int64) bool {
	return d.Kind == DeductionBounded && d.Min <= v && v <= d.Max
}

// Excludes returns true if v is proven never to be the value.
func (d Deduction) Excludes(v int64) bool {
	switch d.Kind {
	case DeductionImpossible:
		return true
	case DeductionBounded:
		return v < d.Min || v > d.Max
	default:
		return false
	}
}

func (d Deduction) String() string {
	switch d.Kind {
	case DeductionImpossible:
		return "impossible"
	case DeductionBounded:
		return fmt.Sprintf("[%d, %d]", d.Min, d.Max)
	default:
		return "unknown"
	}
}

// Deduce returns a conservative range for the values of expr over every
// digit assignment that evaluates without error.
func (f *Factory) Deduce(expr Expr) Deduction {
	if d, ok := f.deductions.Get(expr); ok {
		return d
	}

	var d Deduction
	switch expr := expr.(type) {
	case *ConstantExpr:
		d = Bounded(expr.Value, expr.Value)
	case *InputExpr:
		d = Bounded(MinDigit, MaxDigit)
	case *BinaryExpr:
		d = deduceBinary(expr.Op, f.Deduce(expr.LHS), f.Deduce(expr.RHS))
	default:
		panic("unreachable")
	}

	f.deductions.Add(expr, d)
	return d
}

func deduceBinary(op BinaryOp, l, r Deduction) Deduction {
	if l.Kind == DeductionImpossible || r.Kind == DeductionImpossible {
		return Impossible()
	}

	// Comparisons are boolean regardless of operand ranges.
	if op == EQL {
		return deduceEql(l, r)
	} else if l.Kind == DeductionUnknown || r.Kind == DeductionUnknown {
		return Deduction{}
	}

	switch op {
	case ADD:
		return deduceAdd(l, r)
	case MUL:
		return deduceMul(l, r)
	case DIV:
		return deduceDiv(l, r)
	case MOD:
		return deduceMod(l, r)
	default:
		panic("unreachable")
	}
}

func deduceAdd(l, r Deduction) Deduction {
	lo, ok0 := addInt64(l.Min, r.Min)
	hi, ok1 := addInt64(l.Max, r.Max)
	if !ok0 || !ok1 {
		return Deduction{}
	}
	return Bounded(lo, hi)
}

func deduceMul(l, r Deduction) Deduction {
	return corners(l, []int64{r.Min, r.Max}, mulInt64)
}

func deduceDiv(l, r Deduction) Deduction {
	// Negating the minimum dividend overflows.
	if l.Min == math.MinInt64 {
		return Deduction{}
	}

	// Extremes occur at the interval ends or at the divisors closest to zero.
	var divisors []int64
	for _, b := range []int64{r.Min, r.Max, -1, 1} {
		if b != 0 && b >= r.Min && b <= r.Max {
			divisors = append(divisors, b)
		}
	}
	if len(divisors) == 0 {
		return Impossible()
	}

	return corners(l, divisors, func(a, b int64) (int64, bool) { return a / b, true })
}

func deduceMod(l, r Deduction) Deduction {
	// Requires a positive divisor and a non-negative dividend.
	if r.Max <= 0 || l.Max < 0 {
		return Impossible()
	}

	lo := max(l.Min, 0)
	if l.Max < r.Min {
		return Bounded(lo, l.Max)
	}
	return Bounded(0, min(r.Max-1, l.Max))
}

func deduceEql(l, r Deduction) Deduction {
	if l.Kind != DeductionBounded || r.Kind != DeductionBounded {
		return Bounded(0, 1)
	}

	switch {
	case l.Min == l.Max && r.Min == r.Max && l.Min == r.Min:
		return Bounded(1, 1)
	case l.Max < r.Min || r.Max < l.Min:
		return Bounded(0, 0)
	default:
		return Bounded(0, 1)
	}
}

// corners returns the range of fn applied to the ends of l and each of bs.
// Returns an unknown deduction if any application overflows.
func corners(l Deduction, bs []int64, fn func(a, b int64) (int64, bool)) Deduction {
	lo, hi := int64(math.MaxInt64), int64(math.MinInt64)
	for _, a := range []int64{l.Min, l.Max} {
		for _, b := range bs {
			v, ok := fn(a, b)
			if !ok {
				return Deduction{}
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	return Bounded(lo, hi)
}

// addInt64 returns a+b and false if the sum overflows.
func addInt64(a, b int64) (int64, bool) {
	c := a + b
	if (b > 0 && c < a) || (b < 0 && c > a) {
		return c, false
	}
	return c, true
}

// mulInt64 returns a*b and false if the product overflows.
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}

	c := a * b
	if c/b != a {
		return c, false
	}
	return c, true
}
