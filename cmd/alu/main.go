package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/benbjohnson/alu"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err == flag.ErrHelp {
		os.Exit(1)
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cmd string
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "", "-h", "--help", "help":
		usage()
		return flag.ErrHelp
	case "eval":
		return NewEvalCommand().Run(ctx, args)
	case "solve":
		return NewSolveCommand().Run(ctx, args)
	default:
		return fmt.Errorf(`alu %s: unknown command`, cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `
Alu is a tool for solving ALU digit-validation programs symbolically.

Usage:

	alu <command> [arguments]

The commands are:

	eval        evaluate a program for a digit string
	solve       find the accepted digit string
	help        this screen
`[1:])
}

// loadProgram parses the program at path and runs it on a new interpreter.
func loadProgram(path string, cacheSize int) (*alu.Interpreter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prog, err := alu.ParseProgram(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	interp := alu.NewInterpreter(alu.NewFactory(cacheSize))
	if err := interp.Run(prog); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return interp, nil
}
