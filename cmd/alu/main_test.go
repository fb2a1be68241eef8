package main

import (
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// MustWriteProgram writes the program of a testdata fixture to a temporary
// file and returns its path. Fatal on error.
func MustWriteProgram(tb testing.TB, name string) string {
	tb.Helper()
	ar, err := txtar.ParseFile(filepath.Join("..", "..", "testdata", name+".txtar"))
	if err != nil {
		tb.Fatal(err)
	}

	for _, f := range ar.Files {
		if f.Name != "program" {
			continue
		}
		path := filepath.Join(tb.TempDir(), name+".alu")
		if err := os.WriteFile(path, f.Data, 0o666); err != nil {
			tb.Fatal(err)
		}
		return path
	}
	tb.Fatalf("fixture has no program: %s", name)
	return ""
}

// MustCapture runs args and returns what was printed to stdout.
func MustCapture(tb testing.TB, args ...string) string {
	tb.Helper()
	out, err := capture(tb, args...)
	if err != nil {
		tb.Fatal(err)
	}
	return out
}

func capture(tb testing.TB, args ...string) (string, error) {
	tb.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		tb.Fatal(err)
	}
	defer r.Close()

	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	done := make(chan []byte)
	go func() {
		buf, _ := io.ReadAll(r)
		done <- buf
	}()

	runErr := run(context.Background(), args)
	w.Close()
	return string(<-done), runErr
}

func TestRun_Solve(t *testing.T) {
	path := MustWriteProgram(t, "constant")

	t.Run("Largest", func(t *testing.T) {
		if out := MustCapture(t, "solve", path); out != "99999999999999\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})

	t.Run("Smallest", func(t *testing.T) {
		if out := MustCapture(t, "solve", "-smallest", "-searcher", "dfs", path); out != "11111111111111\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})

	t.Run("NoSolution", func(t *testing.T) {
		if out := MustCapture(t, "solve", "-target", "y", path); out != "no solution\n" {
			t.Fatalf("unexpected output: %q", out)
		}
	})

	t.Run("MultipleFiles", func(t *testing.T) {
		other := MustWriteProgram(t, "monad4")
		out := MustCapture(t, "solve", "-j", "2", path, other)
		if want := path + ": 99999999999999\n" + other + ": "; !strings.HasPrefix(out, want) {
			t.Fatalf("unexpected output: %q", out)
		}
	})

	t.Run("ErrUnknownSearcher", func(t *testing.T) {
		if _, err := capture(t, "solve", "-searcher", "astar", path); err == nil || err.Error() != `unknown searcher: "astar"` {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ErrInvalidRegister", func(t *testing.T) {
		if _, err := capture(t, "solve", "-target", "q", path); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("ErrUnknownFlag", func(t *testing.T) {
		if _, err := capture(t, "solve", "-depth", "3", path); err == nil || !strings.Contains(err.Error(), "flag provided but not defined") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ErrProgramRequired", func(t *testing.T) {
		if _, err := capture(t, "solve"); err == nil || err.Error() != "program file required" {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("ErrStepLimit", func(t *testing.T) {
		other := MustWriteProgram(t, "monad4")
		if _, err := capture(t, "solve", "-max-steps", "1", other); err == nil || !strings.Contains(err.Error(), "step limit reached") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRun_Eval(t *testing.T) {
	path := MustWriteProgram(t, "constant")

	t.Run("Bound", func(t *testing.T) {
		out := MustCapture(t, "eval", "-digits", "13579246813579", path)
		if want := "w = 9\nx = 0\ny = 5\nz = 0\n"; out != want {
			t.Fatalf("unexpected output: %q", out)
		}
	})

	t.Run("Unbound", func(t *testing.T) {
		out := MustCapture(t, "eval", path)
		if !strings.HasPrefix(out, "w = (input 13)\n    inputs={13} range=") {
			t.Fatalf("unexpected output: %q", out)
		}
	})

	t.Run("ErrTooManyFiles", func(t *testing.T) {
		if _, err := capture(t, "eval", path, path); err == nil || err.Error() != "too many program files specified" {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRun_Usage(t *testing.T) {
	if _, err := capture(t, "help"); err != flag.ErrHelp {
		t.Fatalf("unexpected error: %v", err)
	} else if _, err := capture(t, "frobnicate"); err == nil || err.Error() != "alu frobnicate: unknown command" {
		t.Fatalf("unexpected error: %v", err)
	}
}
