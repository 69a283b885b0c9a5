package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/burrow/pkg/render"
	"github.com/matzehuels/burrow/pkg/solver"
)

type solveFlags struct {
	input         inputFlags
	compactEvery  int
	maxExpansions int
	timeout       time.Duration
	moves         bool
	watch         bool
	jsonOut       bool
	noCache       bool
	refresh       bool
}

// solveCommand creates the solve command.
func (c *CLI) solveCommand() *cobra.Command {
	var f solveFlags

	cmd := &cobra.Command{
		Use:   "solve [board-file|-]",
		Short: "Find the cheapest way to sort a board",
		Long: `Solve reads a board diagram from a file, from stdin ("-") or builds one from
--tokens, and prints the minimum total cost of sorting every token home.

Answers are cached; use --no-cache to bypass the cache or --refresh to
recompute and overwrite a cached answer.`,
		Example: `  burrow solve puzzle.txt
  burrow solve --tokens "BA CD BC DA" --moves
  burrow solve --unfold --watch puzzle.txt
  cat puzzle.txt | burrow solve - --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd, args, &f)
		},
	}

	f.input.register(cmd)
	cmd.Flags().IntVar(&f.compactEvery, "compact-every", 0, "compact the frontier every N expansions (negative disables)")
	cmd.Flags().IntVar(&f.maxExpansions, "max-expansions", 0, "give up after N expansions (0 means no limit)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "give up after this long (0 means no limit)")
	cmd.Flags().BoolVarP(&f.moves, "moves", "m", false, "print the move list")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "show live search progress")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the answer cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached answers and store a fresh one")

	return cmd
}

func (c *CLI) runSolve(cmd *cobra.Command, args []string, f *solveFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := f.input.options(cmd, args, cfg)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("compact-every") {
		opts.Search.CompactEvery = f.compactEvery
	}
	if cmd.Flags().Changed("max-expansions") {
		opts.Search.MaxExpansions = f.maxExpansions
	}
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = f.timeout
	}
	opts.Refresh = f.refresh
	if f.refresh && f.noCache {
		printWarning(cmd.ErrOrStderr(), "--refresh has no effect with --no-cache")
	}

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	var res *solver.Result
	switch stderr := cmd.ErrOrStderr(); {
	case f.watch:
		res, err = watchSolve(ctx, runner, opts)
	case isTerminal(stderr):
		sp := newSpinner(stderr, "Searching")
		opts.Search.Progress = sp.track
		sp.start(ctx)
		res, err = runner.Execute(ctx, opts)
		sp.stop()
	default:
		opts.Search.Progress = newSearchReporter(logger).onProgress
		res, err = runner.Execute(ctx, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if f.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printSolution(out, res, f.moves)
	return nil
}

// printSolution prints the starting board, the cost and optionally every move.
func printSolution(w io.Writer, res *solver.Result, showMoves bool) {
	fmt.Fprint(w, res.Board)
	fmt.Fprintln(w)
	printSuccess(w, "Minimum cost %s", StyleNumber.Render(fmt.Sprintf("%d", res.Cost)))

	parts := []string{fmt.Sprintf("%d moves", len(res.Moves))}
	if res.Stats.Expanded > 0 {
		parts = append(parts,
			fmt.Sprintf("%d expanded", res.Stats.Expanded),
			res.Stats.Elapsed.Round(time.Millisecond).String())
	}
	printStats(w, parts, res.Cached)

	if showMoves && len(res.Moves) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, render.MoveList(res.Topology, res.Path()))
	}
}
