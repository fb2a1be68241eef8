package alu

import (
	"fmt"
)

// Expr represents a node in a shared, acyclic expression graph.
//
// Expressions are immutable and must only be created through a Factory so
// that structurally equal expressions share a single allocation.
type Expr interface {
	expr()
	String() string
}

func (*BinaryExpr) expr()   {}
func (*ConstantExpr) expr() {}
func (*InputExpr) expr()    {}

// ExprEqualities returns the equality record attached to the expression.
func ExprEqualities(expr Expr) Equalities {
	switch expr := expr.(type) {
	case *ConstantExpr:
		return expr.Equalities
	case *InputExpr:
		return expr.Equalities
	case *BinaryExpr:
		return expr.Equalities
	default:
		panic("unreachable")
	}
}

// BinaryOp represents a binary expression operation.
type BinaryOp int

// BinaryExpr operations.
const (
	ADD BinaryOp = iota + 1
	MUL
	DIV
	MOD
	EQL
)

var binaryOps = [...]string{
	ADD: "add",
	MUL: "mul",
	DIV: "div",
	MOD: "mod",
	EQL: "eql",
}

// String returns the string representation of the operation.
func (op BinaryOp) String() string {
	if op >= 0 && op < BinaryOp(len(binaryOps)) && binaryOps[op] != "" {
		return binaryOps[op]
	}
	return fmt.Sprintf("BinaryOp<%d>", op)
}

// IsCommutative returns true if the operands of op may be swapped.
func (op BinaryOp) IsCommutative() bool {
	return op == ADD || op == MUL || op == EQL
}

// BinaryExpr represents an operation on two expressions.
type BinaryExpr struct {
	Op  BinaryOp
	LHS Expr
	RHS Expr

	// Constraint tag of an EQL expression. Always NoTag for other operations.
	Tag int

	Equalities Equalities
}

// String returns the string representation of the expression.
func (e *BinaryExpr) String() string {
	if e.Tag != NoTag {
		return fmt.Sprintf("(%s#%d %s %s)", e.Op, e.Tag, e.LHS, e.RHS)
	}
	return fmt.Sprintf("(%s %s %s)", e.Op, e.LHS, e.RHS)
}

// ConstantExpr represents a 64-bit signed integer.
type ConstantExpr struct {
	Value      int64
	Equalities Equalities
}

// String returns the string representation of the expression.
func (e *ConstantExpr) String() string {
	return fmt.Sprintf("(const %d)", e.Value)
}

// InputExpr represents the digit read by the Index-th input instruction.
type InputExpr struct {
	Index      int
	Equalities Equalities
}

// String returns the string representation of the expression.
func (e *InputExpr) String() string {
	return fmt.Sprintf("(input %d)", e.Index)
}

// IsConstantExpr returns true if expr is an instance of ConstantExpr.
func IsConstantExpr(expr Expr) bool {
	_, ok := expr.(*ConstantExpr)
	return ok
}

// constantValue returns the value of expr if it is a constant.
func constantValue(expr Expr) (int64, bool) {
	if expr, ok := expr.(*ConstantExpr); ok {
		return expr.Value, true
	}
	return 0, false
}

// isConstantValue returns true if expr is a constant equal to v.
func isConstantValue(expr Expr, v int64) bool {
	value, ok := constantValue(expr)
	return ok && value == v
}

// CompareExpr returns an integer comparing two expressions.
// The result will be 0 if a==b, -1 if a < b, and +1 if a > b.
//
// Expressions are ordered by kind (constant, input, add, mul, div, mod, eql)
// and then structurally. This is the order used to canonicalize the operands
// of commutative operations.
func CompareExpr(a, b Expr) int {
	if a == b {
		return 0
	} else if a == nil {
		return -1
	} else if b == nil {
		return 1
	}

	if ak, bk := exprKind(a), exprKind(b); ak < bk {
		return -1
	} else if ak > bk {
		return 1
	}

	switch a := a.(type) {
	case *ConstantExpr:
		return compareConstantExpr(a, b.(*ConstantExpr))
	case *InputExpr:
		return compareInputExpr(a, b.(*InputExpr))
	case *BinaryExpr:
		return compareBinaryExpr(a, b.(*BinaryExpr))
	default:
		panic("unreachable")
	}
}

func compareConstantExpr(a, b *ConstantExpr) int {
	if a.Value < b.Value {
		return -1
	} else if a.Value > b.Value {
		return 1
	}
	return CompareEqualities(a.Equalities, b.Equalities)
}

func compareInputExpr(a, b *InputExpr) int {
	if a.Index < b.Index {
		return -1
	} else if a.Index > b.Index {
		return 1
	}
	return CompareEqualities(a.Equalities, b.Equalities)
}

func compareBinaryExpr(a, b *BinaryExpr) int {
	if cmp := CompareExpr(a.LHS, b.LHS); cmp != 0 {
		return cmp
	}
	if cmp := CompareExpr(a.RHS, b.RHS); cmp != 0 {
		return cmp
	}

	if a.Tag < b.Tag {
		return -1
	} else if a.Tag > b.Tag {
		return 1
	}
	return CompareEqualities(a.Equalities, b.Equalities)
}

// equalExpr returns true if a and b are structurally identical.
func equalExpr(a, b Expr) bool {
	return CompareExpr(a, b) == 0
}

// exprKind returns a numeric value for the type of expression.
// Only used internally for equality checks and sorting.
func exprKind(expr Expr) int {
	switch expr := expr.(type) {
	case *ConstantExpr:
		return 0
	case *InputExpr:
		return 1
	case *BinaryExpr:
		return 1 + int(expr.Op)
	default:
		panic("unreachable")
	}
}

// ExprVisitor represents a visitor that can be passed to WalkExpr().
type ExprVisitor interface {
	// Executed once for every distinct node. Return nil to skip its children.
	Visit(expr Expr) ExprVisitor
}

// WalkExpr traverses the graph rooted at expr in depth-first order. Shared
// nodes are visited only once.
func WalkExpr(v ExprVisitor, expr Expr) {
	walkExpr(v, expr, make(map[Expr]struct{}))
}

func walkExpr(v ExprVisitor, expr Expr, seen map[Expr]struct{}) {
	if _, ok := seen[expr]; ok {
		return
	}
	seen[expr] = struct{}{}

	if v = v.Visit(expr); v == nil {
		return
	}
	if expr, ok := expr.(*BinaryExpr); ok {
		walkExpr(v, expr.LHS, seen)
		walkExpr(v, expr.RHS, seen)
	}
}

// ExprSize returns the number of distinct nodes reachable from expr.
func ExprSize(expr Expr) int {
	var v sizeExprVisitor
	WalkExpr(&v, expr)
	return v.n
}

type sizeExprVisitor struct {
	n int
}

func (v *sizeExprVisitor) Visit(expr Expr) ExprVisitor {
	v.n++
	return v
}
