package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/benbjohnson/alu"
)

// EvalCommand represents a command for evaluating a program.
type EvalCommand struct{}

// NewEvalCommand returns a new instance of EvalCommand.
func NewEvalCommand() *EvalCommand {
	return &EvalCommand{}
}

// Run executes the "eval" subcommand.
func (cmd *EvalCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("alu-eval", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "verbose")
	digits := fs.String("digits", "", "digit string, '_' for unbound")
	cacheSize := fs.Int("cache-size", alu.DefaultCacheSize, "entries per factory cache")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("program file required")
	} else if fs.NArg() > 1 {
		return fmt.Errorf("too many program files specified")
	}

	log.SetFlags(0)
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	inputs, err := alu.ParseAssignment(*digits)
	if err != nil {
		return err
	}

	interp, err := loadProgram(fs.Arg(0), *cacheSize)
	if err != nil {
		return err
	}
	factory := interp.Factory()

	// Print each register as a value or as its residual expression.
	for _, r := range alu.Registers {
		expr, err := interp.Register(r)
		if err != nil {
			return err
		}
		v, err := factory.ValueForInputs(expr, inputs)
		if err != nil {
			return fmt.Errorf("%s: %w", r, err)
		}

		if c, ok := v.(*alu.ConstantExpr); ok {
			fmt.Printf("%s = %d\n", r, c.Value)
		} else {
			fmt.Printf("%s = %s\n", r, v)
			fmt.Printf("    inputs=%s range=%s\n", factory.DependsOn(v), factory.Deduce(v))
		}
	}
	return nil
}

func (cmd *EvalCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: alu eval [arguments] FILE

Arguments:

	-v
	    Enable verbose logging.
	-digits DIGITS
	    Digits bound to the inputs in order. Use '_' to leave an input unbound.
	-cache-size N
	    Number of entries held by each expression cache.
`[1:])
}
