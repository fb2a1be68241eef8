package alu

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the capacity of each factory cache if none is given.
const DefaultCacheSize = 1 << 20

// maxRewriteDepth bounds the nesting of rewrites started by a single Intern.
// Past this depth expressions are published as-is.
const maxRewriteDepth = 512

// Factory constructs expressions and owns every memo table used to analyze
// them. All expressions must be created by a Factory so that structurally
// equal expressions are represented by the same pointer.
//
// A Factory is not safe for concurrent use. Independent solves should use
// independent factories.
type Factory struct {
	nodes       *lru.Cache[nodeKey, Expr]
	deps        *lru.Cache[Expr, InputSet]
	comparisons *lru.Cache[Expr, InputSet]
	deductions  *lru.Cache[Expr, Deduction]
	residuals   *lru.Cache[residualKey, Expr]

	depth int // current rewrite nesting
}

// nodeKey is the content of an expression. Children are compared by pointer
// since they are interned before their parents.
type nodeKey struct {
	kind     int
	value    int64 // constant value or input index
	lhs, rhs Expr
	tag      int
	eq       Equalities
}

// NewFactory returns a new Factory whose caches each hold up to cacheSize
// entries. Uses DefaultCacheSize if cacheSize is not positive.
func NewFactory(cacheSize int) *Factory {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Factory{
		nodes:       newCache[nodeKey, Expr](cacheSize),
		deps:        newCache[Expr, InputSet](cacheSize),
		comparisons: newCache[Expr, InputSet](cacheSize),
		deductions:  newCache[Expr, Deduction](cacheSize),
		residuals:   newCache[residualKey, Expr](cacheSize),
	}
}

func newCache[K comparable, V any](size int) *lru.Cache[K, V] {
	c, err := lru.New[K, V](size)
	assert(err == nil, "cannot allocate cache: %v", err)
	return c
}

// Len returns the number of entries in the expression cache.
func (f *Factory) Len() int {
	return f.nodes.Len()
}

// Constant returns the constant expression for v.
func (f *Factory) Constant(v int64) *ConstantExpr {
	return f.constant(v, Equalities{})
}

func (f *Factory) constant(v int64, eq Equalities) *ConstantExpr {
	key := nodeKey{kind: 0, value: v, tag: NoTag, eq: eq}
	if expr, ok := f.nodes.Get(key); ok {
		return expr.(*ConstantExpr)
	}
	return f.publish(key, &ConstantExpr{Value: v, Equalities: eq}).(*ConstantExpr)
}

// Input returns the expression for the digit read by the index-th input.
func (f *Factory) Input(index int) *InputExpr {
	assert(index >= 0 && index < NumInputs, "input index out of range: %d", index)
	return f.input(index, Equalities{})
}

func (f *Factory) input(index int, eq Equalities) *InputExpr {
	key := nodeKey{kind: 1, value: int64(index), tag: NoTag, eq: eq}
	if expr, ok := f.nodes.Get(key); ok {
		return expr.(*InputExpr)
	}
	return f.publish(key, &InputExpr{Index: index, Equalities: eq}).(*InputExpr)
}

// Binary returns the simplified expression for lhs op rhs.
func (f *Factory) Binary(op BinaryOp, lhs, rhs Expr) (Expr, error) {
	return f.Intern(op, lhs, rhs, NoTag)
}

// Eql returns the simplified comparison of lhs and rhs. The outcome is
// recorded against tag once it is decided.
func (f *Factory) Eql(lhs, rhs Expr, tag int) (Expr, error) {
	return f.Intern(EQL, lhs, rhs, tag)
}

// Intern returns the canonical, simplified expression for lhs op rhs.
//
// Operands of commutative operations are ordered by CompareExpr. Rewrite
// rules are applied until no rule matches and the result is looked up in the
// expression cache so equal content always yields an existing expression.
// The result carries the merged equality records of both operands.
//
// Returns ErrDivisionByZero or ErrInvalidModulo if the divisor is an invalid
// constant, and ErrEqualityConflict if the operand records disagree.
func (f *Factory) Intern(op BinaryOp, lhs, rhs Expr, tag int) (Expr, error) {
	assert(op >= ADD && op <= EQL, "invalid op: %s", op)
	if op != EQL {
		tag = NoTag
	}
	if err := checkOperands(op, lhs, rhs); err != nil {
		return nil, err
	}

	if op.IsCommutative() && CompareExpr(lhs, rhs) > 0 {
		lhs, rhs = rhs, lhs
	}

	eq, err := ExprEqualities(lhs).Merge(ExprEqualities(rhs))
	if err != nil {
		return nil, err
	}

	key := nodeKey{kind: 1 + int(op), lhs: lhs, rhs: rhs, tag: tag, eq: eq}
	if expr, ok := f.nodes.Get(key); ok {
		return expr, nil
	}

	var expr Expr
	if f.depth >= maxRewriteDepth {
		expr = f.raw(op, lhs, rhs, tag, eq)
	} else {
		f.depth++
		expr, err = f.simplify(op, lhs, rhs, tag)
		f.depth--
		if err != nil {
			return nil, err
		}
	}

	// Rules may drop an operand entirely so reattach its record.
	if expr, err = f.withEqualities(expr, eq); err != nil {
		return nil, err
	}

	// Remember the result for this combination of operands.
	f.nodes.Add(key, expr)
	return expr, nil
}

// checkOperands returns an error if rhs is an invalid constant divisor.
func checkOperands(op BinaryOp, lhs, rhs Expr) error {
	b, ok := constantValue(rhs)
	if !ok {
		return nil
	}

	switch op {
	case DIV:
		if b == 0 {
			return ErrDivisionByZero
		}
	case MOD:
		if b <= 0 {
			return fmt.Errorf("%w: modulus %d", ErrInvalidModulo, b)
		} else if a, ok := constantValue(lhs); ok && a < 0 {
			return fmt.Errorf("%w: dividend %d", ErrInvalidModulo, a)
		}
	}
	return nil
}

// withEqualities returns expr with eq merged into its equality record.
func (f *Factory) withEqualities(expr Expr, eq Equalities) (Expr, error) {
	prev := ExprEqualities(expr)
	merged, err := prev.Merge(eq)
	if err != nil {
		return nil, err
	} else if merged == prev {
		return expr, nil
	}

	switch expr := expr.(type) {
	case *ConstantExpr:
		return f.constant(expr.Value, merged), nil
	case *InputExpr:
		return f.input(expr.Index, merged), nil
	case *BinaryExpr:
		return f.raw(expr.Op, expr.LHS, expr.RHS, expr.Tag, merged), nil
	default:
		panic("unreachable")
	}
}

// raw returns the expression for lhs op rhs without applying any rules.
func (f *Factory) raw(op BinaryOp, lhs, rhs Expr, tag int, eq Equalities) Expr {
	key := nodeKey{kind: 1 + int(op), lhs: lhs, rhs: rhs, tag: tag, eq: eq}
	if expr, ok := f.nodes.Get(key); ok {
		return expr
	}
	return f.publish(key, &BinaryExpr{Op: op, LHS: lhs, RHS: rhs, Tag: tag, Equalities: eq})
}

// publish adds a new expression to the cache and computes its analyses.
func (f *Factory) publish(key nodeKey, expr Expr) Expr {
	f.nodes.Add(key, expr)
	f.DependsOn(expr)
	f.Deduce(expr)
	return expr
}

func (f *Factory) add(lhs, rhs Expr) (Expr, error) { return f.Intern(ADD, lhs, rhs, NoTag) }
func (f *Factory) mul(lhs, rhs Expr) (Expr, error) { return f.Intern(MUL, lhs, rhs, NoTag) }

// nest returns a op (b op c).
func (f *Factory) nest(op BinaryOp, a, b, c Expr) (Expr, error) {
	bc, err := f.Intern(op, b, c, NoTag)
	if err != nil {
		return nil, err
	}
	return f.Intern(op, a, bc, NoTag)
}

// tryCombine interns a op b and reports whether a rule simplified it to
// something other than the plain operation on a and b.
func (f *Factory) tryCombine(op BinaryOp, a, b Expr) (Expr, bool, error) {
	expr, err := f.Intern(op, a, b, NoTag)
	if err != nil {
		return nil, false, err
	}
	if e, ok := expr.(*BinaryExpr); ok && e.Op == op {
		if (e.LHS == a && e.RHS == b) || (e.LHS == b && e.RHS == a) {
			return expr, false, nil
		}
	}
	return expr, true, nil
}
