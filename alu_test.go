package alu_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/benbjohnson/alu"
	"github.com/davecgh/go-spew/spew"
	"golang.org/x/tools/txtar"
)

// MustParseProgram parses an ALU program from text. Fatal on error.
func MustParseProgram(tb testing.TB, text string) []alu.Instruction {
	tb.Helper()
	prog, err := alu.ParseProgram(strings.NewReader(text))
	if err != nil {
		tb.Fatal(err)
	}
	return prog
}

// MustRun executes text on a new interpreter. Fatal on error.
func MustRun(tb testing.TB, text string) *alu.Interpreter {
	tb.Helper()
	interp := alu.NewInterpreter(alu.NewFactory(0))
	if err := interp.Run(MustParseProgram(tb, text)); err != nil {
		tb.Fatal(err)
	}
	return interp
}

// MustRegister returns the expression held by r. Fatal on error.
func MustRegister(tb testing.TB, interp *alu.Interpreter, r alu.Register) alu.Expr {
	tb.Helper()
	expr, err := interp.Register(r)
	if err != nil {
		tb.Fatal(err)
	}
	return expr
}

// MustBinary returns lhs op rhs from the factory. Fatal on error.
func MustBinary(tb testing.TB, f *alu.Factory, op alu.BinaryOp, lhs, rhs alu.Expr) alu.Expr {
	tb.Helper()
	expr, err := f.Binary(op, lhs, rhs)
	if err != nil {
		tb.Fatal(err)
	}
	return expr
}

// MustEql returns the comparison of lhs and rhs tracked by tag. Fatal on error.
func MustEql(tb testing.TB, f *alu.Factory, lhs, rhs alu.Expr, tag int) alu.Expr {
	tb.Helper()
	expr, err := f.Eql(lhs, rhs, tag)
	if err != nil {
		tb.Fatal(err)
	}
	return expr
}

// MustParseAssignment parses a digit string. Fatal on error.
func MustParseAssignment(tb testing.TB, s string) alu.Assignment {
	tb.Helper()
	a, err := alu.ParseAssignment(s)
	if err != nil {
		tb.Fatal(err)
	}
	return a
}

// Fixture is a txtar archive from the testdata directory.
type Fixture struct {
	Comment string
	Files   map[string]string
}

// MustLoadFixture reads testdata/name.txtar. Fatal on error.
func MustLoadFixture(tb testing.TB, name string) *Fixture {
	tb.Helper()
	ar, err := txtar.ParseFile(filepath.Join("testdata", name+".txtar"))
	if err != nil {
		tb.Fatal(err)
	}

	fixture := &Fixture{Comment: string(ar.Comment), Files: make(map[string]string)}
	for _, f := range ar.Files {
		fixture.Files[f.Name] = string(f.Data)
	}
	return fixture
}

// File returns the named file of the fixture. Fatal if missing.
func (f *Fixture) File(tb testing.TB, name string) string {
	tb.Helper()
	data, ok := f.Files[name]
	if !ok {
		tb.Fatalf("fixture file not found: %s", name)
	}
	return data
}

// Want returns the trimmed expected output stored in the named file.
func (f *Fixture) Want(tb testing.TB, name string) string {
	tb.Helper()
	return strings.TrimSpace(f.File(tb, name))
}

// dump formats v for failure messages.
func dump(v interface{}) string {
	return spew.Sdump(v)
}
