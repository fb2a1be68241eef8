package alu_test

import (
	"errors"
	"testing"

	"github.com/benbjohnson/alu"
	"github.com/google/go-cmp/cmp"
)

func TestParseAssignment(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		a := MustParseAssignment(t, "13_9")
		if diff := cmp.Diff(alu.Assignment{1, 3, 0, 9}, a); diff != "" {
			t.Fatal(diff)
		} else if s := a.String(); s != "13_9__________" {
			t.Fatalf("unexpected string: %s", s)
		}
	})
	t.Run("Empty", func(t *testing.T) {
		if a := MustParseAssignment(t, ""); a != (alu.Assignment{}) {
			t.Fatalf("unexpected assignment: %s", a)
		}
	})
	t.Run("ErrInvalidDigit", func(t *testing.T) {
		if _, err := alu.ParseAssignment("120"); err == nil || err.Error() != `invalid digit '0' at position 2: "120"` {
			t.Fatalf("unexpected error: %v", err)
		}
	})
	t.Run("ErrTooLong", func(t *testing.T) {
		if _, err := alu.ParseAssignment("111111111111111"); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestAssignment(t *testing.T) {
	a := MustParseAssignment(t, "5_7")
	if s := a.Bound(); s != alu.NewInputSet(0, 2) {
		t.Fatalf("unexpected bound set: %s", s)
	} else if s := a.With(1, 2).String(); s != "527___________" {
		t.Fatalf("unexpected with: %s", s)
	} else if s := a.Project(alu.NewInputSet(2, 3)).String(); s != "__7___________" {
		t.Fatalf("unexpected projection: %s", s)
	} else if s := a.Fill(9).String(); s != "59799999999999" {
		t.Fatalf("unexpected fill: %s", s)
	}
}

func TestCompareAssignments(t *testing.T) {
	for _, tt := range []struct {
		a, b string
		want int
	}{
		{"99", "98", 1},
		{"18", "19", -1},
		{"1_", "11", -1},
		{"123", "123", 0},
	} {
		if cmp := alu.CompareAssignments(MustParseAssignment(t, tt.a), MustParseAssignment(t, tt.b)); cmp != tt.want {
			t.Fatalf("compare(%s, %s): unexpected result: %d", tt.a, tt.b, cmp)
		}
	}
}

func TestFactory_ValueForInputs(t *testing.T) {
	t.Run("Partial", func(t *testing.T) {
		f := alu.NewFactory(0)
		expr := MustBinary(t, f, alu.ADD, f.Input(0), MustBinary(t, f, alu.MUL, f.Constant(3), f.Input(1)))
		v, err := f.ValueForInputs(expr, MustParseAssignment(t, "_2"))
		if err != nil {
			t.Fatal(err)
		} else if v.String() != "(add (const 6) (input 0))" {
			t.Fatalf("unexpected residual: %s", v)
		}

		// Substituting the remaining input completes the evaluation.
		if got, err := f.Evaluate(v, MustParseAssignment(t, "4")); err != nil {
			t.Fatal(err)
		} else if got != 10 {
			t.Fatalf("unexpected value: %d", got)
		}
	})

	t.Run("Memoized", func(t *testing.T) {
		f := alu.NewFactory(0)
		expr := MustBinary(t, f, alu.MUL, f.Input(0), f.Input(1))
		a, err := f.ValueForInputs(expr, MustParseAssignment(t, "3_5"))
		if err != nil {
			t.Fatal(err)
		}

		// Digits of unrelated inputs do not affect the residual.
		b, err := f.ValueForInputs(expr, MustParseAssignment(t, "3_7"))
		if err != nil {
			t.Fatal(err)
		} else if a != b {
			t.Fatalf("expected shared residual: %s != %s", a, b)
		}
	})

	t.Run("Unbound", func(t *testing.T) {
		f := alu.NewFactory(0)
		expr := MustBinary(t, f, alu.DIV, f.Input(0), f.Input(1))
		if v, err := f.ValueForInputs(expr, alu.Assignment{}); err != nil {
			t.Fatal(err)
		} else if v != expr {
			t.Fatalf("unexpected residual: %s", v)
		}
	})

	t.Run("Equalities", func(t *testing.T) {
		f := alu.NewFactory(0)
		expr := MustEql(t, f, f.Input(0), f.Input(1), 3)

		v, err := f.ValueForInputs(expr, MustParseAssignment(t, "44"))
		if err != nil {
			t.Fatal(err)
		} else if diff := cmp.Diff(&alu.ConstantExpr{Value: 1, Equalities: alu.Equalities{3: alu.EqualityWon}}, v); diff != "" {
			t.Fatal(diff)
		}

		v, err = f.ValueForInputs(expr, MustParseAssignment(t, "45"))
		if err != nil {
			t.Fatal(err)
		} else if diff := cmp.Diff(&alu.ConstantExpr{Value: 0, Equalities: alu.Equalities{3: alu.EqualityFailed}}, v); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("ErrDivisionByZero", func(t *testing.T) {
		f := alu.NewFactory(0)
		divisor := MustBinary(t, f, alu.ADD, f.Constant(-1), f.Input(1))
		expr := MustBinary(t, f, alu.DIV, f.Input(0), divisor)
		if _, err := f.ValueForInputs(expr, MustParseAssignment(t, "51")); err != alu.ErrDivisionByZero {
			t.Fatalf("unexpected error: %v", err)
		}
		if v, err := f.Evaluate(expr, MustParseAssignment(t, "83")); err != nil {
			t.Fatal(err)
		} else if v != 4 {
			t.Fatalf("unexpected value: %d", v)
		}
	})

	t.Run("ErrInvalidModulo", func(t *testing.T) {
		f := alu.NewFactory(0)
		dividend := MustBinary(t, f, alu.ADD, f.Constant(-5), f.Input(0))
		expr := MustBinary(t, f, alu.MOD, dividend, f.Constant(3))
		if _, err := f.ValueForInputs(expr, MustParseAssignment(t, "2")); !errors.Is(err, alu.ErrInvalidModulo) {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestFactory_ValueForBindings(t *testing.T) {
	t.Run("Outcome", func(t *testing.T) {
		interp := MustRun(t, "inp w\ninp x\neql x w\n")
		f, expr := interp.Factory(), MustRegister(t, interp, alu.RegX)

		v, err := f.ValueForBindings(expr, alu.Assignment{}, alu.Equalities{0: alu.EqualityWon})
		if err != nil {
			t.Fatal(err)
		} else if diff := cmp.Diff(&alu.ConstantExpr{Value: 1, Equalities: alu.Equalities{0: alu.EqualityWon}}, v); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("InsideArithmetic", func(t *testing.T) {
		interp := MustRun(t, "inp w\ninp x\neql x w\nadd z w\nmul z x\n")
		f, expr := interp.Factory(), MustRegister(t, interp, alu.RegZ)

		// Only the comparison is resolved so the first input remains.
		v, err := f.ValueForBindings(expr, alu.Assignment{}, alu.Equalities{0: alu.EqualityWon})
		if err != nil {
			t.Fatal(err)
		} else if diff := cmp.Diff(&alu.InputExpr{Index: 0, Equalities: alu.Equalities{0: alu.EqualityWon}}, v); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("IgnoresUnrelatedOutcomes", func(t *testing.T) {
		f := alu.NewFactory(0)
		expr := MustBinary(t, f, alu.ADD, f.Input(0), f.Input(1))
		if v, err := f.ValueForBindings(expr, alu.Assignment{}, alu.Equalities{3: alu.EqualityWon}); err != nil {
			t.Fatal(err)
		} else if v != expr {
			t.Fatalf("unexpected residual: %s", v)
		}
	})

	t.Run("OutcomeOverridesInputs", func(t *testing.T) {
		f := alu.NewFactory(0)
		expr := MustEql(t, f, f.Input(0), f.Input(1), 1)
		if v, err := f.ValueForBindings(expr, MustParseAssignment(t, "12"), alu.Equalities{1: alu.EqualityWon}); err != nil {
			t.Fatal(err)
		} else if c, ok := v.(*alu.ConstantExpr); !ok || c.Value != 1 {
			t.Fatalf("unexpected residual: %s", v)
		}
	})
}

func TestFactory_Evaluate(t *testing.T) {
	t.Run("ErrUnboundInputs", func(t *testing.T) {
		f := alu.NewFactory(0)
		expr := MustBinary(t, f, alu.ADD, f.Input(0), f.Input(5))
		if _, err := f.Evaluate(expr, MustParseAssignment(t, "1")); !errors.Is(err, alu.ErrUnboundInputs) {
			t.Fatalf("unexpected error: %v", err)
		} else if err.Error() != "alu: unbound inputs: {5}" {
			t.Fatalf("unexpected error message: %s", err)
		}
	})
}
