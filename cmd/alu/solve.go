package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/benbjohnson/alu"
	"golang.org/x/sync/errgroup"
)

// SolveCommand represents a command for finding accepted digit strings.
type SolveCommand struct {
	objective alu.Objective
	target    alu.Register
	searcher  string
	maxSteps  int
	cacheSize int
}

// NewSolveCommand returns a new instance of SolveCommand.
func NewSolveCommand() *SolveCommand {
	return &SolveCommand{}
}

// Run executes the "solve" subcommand.
func (cmd *SolveCommand) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("alu-solve", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "verbose")
	smallest := fs.Bool("smallest", false, "find the smallest digit string")
	target := fs.String("target", "z", "register that must end at zero")
	fs.StringVar(&cmd.searcher, "searcher", "priority", "search strategy")
	timeout := fs.Duration("timeout", 0, "time limit per solve")
	fs.IntVar(&cmd.maxSteps, "max-steps", 0, "step limit per solve")
	fs.IntVar(&cmd.cacheSize, "cache-size", alu.DefaultCacheSize, "entries per factory cache")
	parallelism := fs.Int("j", 1, "number of programs solved concurrently")
	fs.Usage = cmd.usage
	if err := fs.Parse(args); err != nil {
		return err
	} else if fs.NArg() == 0 {
		return fmt.Errorf("program file required")
	} else if *parallelism < 1 {
		return fmt.Errorf("invalid parallelism: %d", *parallelism)
	}

	log.SetFlags(0)
	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if *smallest {
		cmd.objective = alu.Smallest
	}

	var err error
	if cmd.target, err = alu.ParseRegister(*target); err != nil {
		return err
	}

	// Validate the strategy before starting any work.
	if _, err := cmd.newSearcher(); err != nil {
		return err
	}

	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	// Solve each program with its own factory.
	paths := fs.Args()
	results := make([]string, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(*parallelism)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			result, err := cmd.solve(ctx, path)
			if errors.Is(err, alu.ErrNoSolution) {
				result = "no solution"
			} else if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, path := range paths {
		if len(paths) == 1 {
			fmt.Println(results[i])
		} else {
			fmt.Printf("%s: %s\n", path, results[i])
		}
	}
	return nil
}

// solve returns the accepted digit string for the program at path.
func (cmd *SolveCommand) solve(ctx context.Context, path string) (string, error) {
	interp, err := loadProgram(path, cmd.cacheSize)
	if err != nil {
		return "", err
	}
	target, err := interp.Register(cmd.target)
	if err != nil {
		return "", err
	}

	solver := alu.NewSolver(interp.Factory(), target)
	solver.Objective = cmd.objective
	if solver.Searcher, err = cmd.newSearcher(); err != nil {
		return "", err
	}

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		} else if cmd.maxSteps > 0 && n >= cmd.maxSteps {
			return "", fmt.Errorf("%s: step limit reached (best so far: %s)", path, bestString(solver))
		}

		if _, err := solver.SolveNextStep(); err == alu.ErrNoStepAvailable {
			break
		} else if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
	}

	stats := solver.Stats()
	log.Printf("[search] %s: steps=%d expanded=%d assumptions=%d pruned=%d failed=%d",
		path, stats.Steps, stats.Expanded, stats.Assumptions, stats.Pruned, stats.Failed)

	best, ok := solver.Best()
	if !ok {
		return "", alu.ErrNoSolution
	}
	return best, nil
}

// newSearcher returns the search strategy named by the -searcher flag.
func (cmd *SolveCommand) newSearcher() (alu.Searcher, error) {
	switch cmd.searcher {
	case "priority":
		return alu.NewPrioritySearcher(cmd.objective), nil
	case "dfs":
		return alu.NewDFSSearcher(), nil
	case "bfs":
		return alu.NewBFSSearcher(), nil
	case "random":
		return alu.NewRandomSearcher(rand.New(rand.NewSource(time.Now().UnixNano()))), nil
	default:
		return nil, fmt.Errorf("unknown searcher: %q", cmd.searcher)
	}
}

func bestString(solver *alu.Solver) string {
	if best, ok := solver.Best(); ok {
		return best
	}
	return "none"
}

func (cmd *SolveCommand) usage() {
	fmt.Fprintln(os.Stderr, `
usage: alu solve [arguments] FILE...

Arguments:

	-v
	    Enable verbose logging.
	-smallest
	    Find the smallest accepted digit string instead of the largest.
	-target REG
	    Register that must end at zero. Defaults to z.
	-searcher NAME
	    Search strategy: priority, dfs, bfs or random. Defaults to priority.
	-timeout DURATION
	    Abort a solve after the given duration.
	-max-steps N
	    Abort a solve after N steps.
	-cache-size N
	    Number of entries held by each expression cache.
	-j N
	    Number of programs solved concurrently.
`[1:])
}
