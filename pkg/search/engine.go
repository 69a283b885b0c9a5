package search

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/moves"
	"github.com/matzehuels/burrow/pkg/observability"
	"github.com/matzehuels/burrow/pkg/state"
)

const (
	// DefaultCompactEvery is the number of expansions between frontier
	// compactions.
	DefaultCompactEvery = 10000

	// DefaultProgressEvery is the number of expansions between Progress
	// callbacks.
	DefaultProgressEvery = 1000

	// ctxCheckEvery is how often the context is polled, in expansions.
	ctxCheckEvery = 256
)

var (
	// ErrNoSolution is returned when the frontier empties without reaching
	// a complete configuration.
	ErrNoSolution = errs.New(errs.ErrCodeNoSolution, "no sequence of moves brings every token home")

	// ErrBudgetExhausted is returned when Options.MaxExpansions is reached.
	ErrBudgetExhausted = errs.New(errs.ErrCodeBudgetExhausted, "expansion budget exhausted")
)

// Options configures an [Engine]. The zero value is usable.
type Options struct {
	// CompactEvery is the number of expansions between frontier
	// compactions. Zero means DefaultCompactEvery; negative disables
	// compaction.
	CompactEvery int

	// MaxExpansions bounds the number of configurations popped from the
	// frontier. Zero means unlimited.
	MaxExpansions int

	// Visit, if set, is called for every configuration popped from the
	// frontier, in pop order, before the completeness test.
	Visit func(c *state.Configuration)

	// Progress, if set, is called every ProgressEvery expansions with a
	// snapshot of the search statistics, and once more with the final
	// statistics when the search fails.
	Progress func(Stats)

	// ProgressEvery is the Progress interval. Zero means
	// DefaultProgressEvery.
	ProgressEvery int
}

// Stats describes the work done by a search.
type Stats struct {
	Expanded     int           // Configurations popped from the frontier
	Generated    int           // Child configurations pushed
	Compactions  int           // Frontier compactions run
	Dropped      int           // Frontier entries removed by compaction
	Frontier     int           // Current frontier size
	PeakFrontier int           // Largest frontier size seen
	Cost         uint64        // Cost of the most recently popped configuration
	Elapsed      time.Duration // Wall time since the search started
}

// Result is a solved search.
type Result struct {
	Cost  uint64               // Minimum total cost
	Final *state.Configuration // Complete configuration that was reached
	Moves []state.Move         // Moves from the start to Final, in order
	Stats Stats
}

// Engine runs uniform-cost searches. An Engine holds no per-search state and
// may be used from multiple goroutines.
type Engine struct {
	opts Options
}

// New returns an engine with the given options.
func New(opts Options) *Engine {
	if opts.CompactEvery == 0 {
		opts.CompactEvery = DefaultCompactEvery
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	return &Engine{opts: opts}
}

// Solve is shorthand for New(opts).Solve(ctx, start).
func Solve(ctx context.Context, start *state.Configuration, opts Options) (*Result, error) {
	return New(opts).Solve(ctx, start)
}

// Solve searches for the cheapest way to bring every token of start home.
//
// The returned cost excludes start's own accumulated cost. Solve returns
// [ErrNoSolution] when no complete configuration is reachable,
// [ErrBudgetExhausted] when the expansion budget runs out, and an error with
// code TIMEOUT or CANCELED when ctx ends first.
func (e *Engine) Solve(ctx context.Context, start *state.Configuration) (res *Result, err error) {
	began := time.Now()
	root := start.Detach()
	hooks := observability.Search()
	hooks.OnSearchStart(ctx, root.Topology().Len(), root.Tokens())

	var stats Stats
	defer func() {
		stats.Elapsed = time.Since(began)
		var cost uint64
		if res != nil {
			res.Stats = stats
			cost = res.Cost
		}
		if err != nil && e.opts.Progress != nil {
			e.opts.Progress(stats)
		}
		hooks.OnSearchComplete(ctx, stats.Expanded, cost, stats.Elapsed, err)
	}()

	f := newFrontier()
	f.push(root)
	stats.Frontier, stats.PeakFrontier = 1, 1

	for {
		if stats.Expanded%ctxCheckEvery == 0 {
			if err := contextError(ctx, stats.Expanded); err != nil {
				stats.Frontier = f.len()
				return nil, err
			}
		}
		if e.opts.MaxExpansions > 0 && stats.Expanded >= e.opts.MaxExpansions {
			stats.Frontier = f.len()
			return nil, ErrBudgetExhausted
		}

		cur, ok := f.pop()
		if !ok {
			stats.Frontier = 0
			return nil, ErrNoSolution
		}
		stats.Expanded++
		stats.Cost = cur.Cost()

		if e.opts.Visit != nil {
			e.opts.Visit(cur)
		}
		if cur.IsComplete() {
			stats.Frontier = f.len()
			return &Result{
				Cost:  cur.Cost() - root.Cost(),
				Final: cur,
				Moves: cur.Path(),
			}, nil
		}

		for _, child := range moves.NextStates(cur) {
			f.push(child)
			stats.Generated++
		}
		stats.Frontier = f.len()
		stats.PeakFrontier = max(stats.PeakFrontier, stats.Frontier)

		if e.opts.CompactEvery > 0 && stats.Expanded%e.opts.CompactEvery == 0 {
			before, after := f.compact()
			stats.Compactions++
			stats.Dropped += before - after
			stats.Frontier = after
			hooks.OnCompaction(ctx, before, after)
		}
		if e.opts.Progress != nil && stats.Expanded%e.opts.ProgressEvery == 0 {
			snap := stats
			snap.Elapsed = time.Since(began)
			e.opts.Progress(snap)
		}
	}
}

func contextError(ctx context.Context, expanded int) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.ErrCodeTimeout, err, "search stopped after %d expansions", expanded)
	default:
		return errs.Wrap(errs.ErrCodeCanceled, err, "search stopped after %d expansions", expanded)
	}
}
