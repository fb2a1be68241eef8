package alu_test

import (
	"testing"

	"github.com/benbjohnson/alu"
	"github.com/google/go-cmp/cmp"
)

func TestBinaryOp_String(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		if s := alu.EQL.String(); s != "eql" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Unknown", func(t *testing.T) {
		if s := alu.BinaryOp(100).String(); s != "BinaryOp<100>" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
}

func TestBinaryOp_IsCommutative(t *testing.T) {
	for op, want := range map[alu.BinaryOp]bool{
		alu.ADD: true,
		alu.MUL: true,
		alu.DIV: false,
		alu.MOD: false,
		alu.EQL: true,
	} {
		if got := op.IsCommutative(); got != want {
			t.Fatalf("%s: unexpected result: %v", op, got)
		}
	}
}

func TestBinaryExpr_String(t *testing.T) {
	t.Run("Untagged", func(t *testing.T) {
		expr := &alu.BinaryExpr{Op: alu.ADD, LHS: &alu.ConstantExpr{Value: 3}, RHS: &alu.InputExpr{Index: 2}, Tag: alu.NoTag}
		if s := expr.String(); s != "(add (const 3) (input 2))" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Tagged", func(t *testing.T) {
		expr := &alu.BinaryExpr{Op: alu.EQL, LHS: &alu.InputExpr{Index: 0}, RHS: &alu.InputExpr{Index: 1}, Tag: 4}
		if s := expr.String(); s != "(eql#4 (input 0) (input 1))" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
}

func TestCompareExpr(t *testing.T) {
	f := alu.NewFactory(0)

	t.Run("Kind", func(t *testing.T) {
		ordered := []alu.Expr{
			f.Constant(100),
			f.Input(0),
			MustBinary(t, f, alu.ADD, f.Input(0), f.Input(1)),
			MustBinary(t, f, alu.MUL, f.Input(0), f.Input(1)),
			MustBinary(t, f, alu.DIV, f.Input(0), f.Input(1)),
			MustBinary(t, f, alu.MOD, f.Input(0), f.Input(1)),
			MustEql(t, f, f.Input(0), f.Input(1), alu.NoTag),
		}
		for i := 0; i < len(ordered)-1; i++ {
			if cmp := alu.CompareExpr(ordered[i], ordered[i+1]); cmp != -1 {
				t.Fatalf("%d: unexpected comparison of %s and %s: %d", i, ordered[i], ordered[i+1], cmp)
			} else if cmp := alu.CompareExpr(ordered[i+1], ordered[i]); cmp != 1 {
				t.Fatalf("%d: unexpected reverse comparison: %d", i, cmp)
			}
		}
	})
	t.Run("Value", func(t *testing.T) {
		if cmp := alu.CompareExpr(f.Constant(-5), f.Constant(2)); cmp != -1 {
			t.Fatalf("unexpected comparison: %d", cmp)
		}
		if cmp := alu.CompareExpr(f.Input(3), f.Input(1)); cmp != 1 {
			t.Fatalf("unexpected comparison: %d", cmp)
		}
	})
	t.Run("Children", func(t *testing.T) {
		a := MustBinary(t, f, alu.DIV, f.Input(0), f.Input(1))
		b := MustBinary(t, f, alu.DIV, f.Input(0), f.Input(2))
		if cmp := alu.CompareExpr(a, b); cmp != -1 {
			t.Fatalf("unexpected comparison: %d", cmp)
		}
	})
	t.Run("Tag", func(t *testing.T) {
		a := MustEql(t, f, f.Input(0), f.Input(1), 1)
		b := MustEql(t, f, f.Input(0), f.Input(1), 2)
		if cmp := alu.CompareExpr(a, b); cmp != -1 {
			t.Fatalf("unexpected comparison: %d", cmp)
		}
	})
	t.Run("Equalities", func(t *testing.T) {
		won := MustEql(t, f, f.Input(0), f.Input(0), 0)
		plain := f.Constant(1)
		if cmp := alu.CompareExpr(plain, won); cmp != -1 {
			t.Fatalf("unexpected comparison: %d", cmp)
		}
	})
	t.Run("Equal", func(t *testing.T) {
		expr := MustBinary(t, f, alu.MOD, f.Input(4), f.Constant(7))
		if cmp := alu.CompareExpr(expr, &alu.BinaryExpr{Op: alu.MOD, LHS: f.Input(4), RHS: f.Constant(7), Tag: alu.NoTag}); cmp != 0 {
			t.Fatalf("unexpected comparison: %d", cmp)
		}
	})
}

func TestExprEqualities(t *testing.T) {
	f := alu.NewFactory(0)
	expr := MustEql(t, f, f.Constant(2), f.Constant(3), 5)
	if diff := cmp.Diff(alu.Equalities{5: alu.EqualityFailed}, alu.ExprEqualities(expr)); diff != "" {
		t.Fatal(diff)
	}
}

func TestExprSize(t *testing.T) {
	f := alu.NewFactory(0)

	// Shared operands are only counted once.
	sum := MustBinary(t, f, alu.ADD, f.Input(0), f.Input(1))
	expr := MustBinary(t, f, alu.DIV, sum, MustBinary(t, f, alu.MOD, sum, f.Constant(7)))
	if n := alu.ExprSize(expr); n != 6 {
		t.Fatalf("unexpected size: %d", n)
	}
}
