package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/burrow/pkg/board"
	"github.com/matzehuels/burrow/pkg/cache"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/moves"
	"github.com/matzehuels/burrow/pkg/observability"
	"github.com/matzehuels/burrow/pkg/render"
	"github.com/matzehuels/burrow/pkg/search"
	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Runner encapsulates solving with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long answers are kept. Zero means cache.SolveTTL.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used. A nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// cachedSolution is the stored form of an answer. Only the raw move list is
// kept; everything else is rebuilt by replaying it.
type cachedSolution struct {
	NoSolution bool         `json:"no_solution,omitempty"`
	Cost       uint64       `json:"cost"`
	Moves      []state.Move `json:"moves"`
}

// Execute prepares, looks up and, on a miss, searches.
//
// A puzzle without a solution is cached too, so the error
// search.ErrNoSolution may come from either path.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	topo, start, err := Prepare(opts)
	if err != nil {
		return nil, err
	}
	text := render.Text(start)
	key := r.Keyer.SolveKey(cache.SolveKeyOpts{Board: text, Types: typesKey(topo)})
	logger.Debug("prepared puzzle",
		"slots", topo.Len(),
		"depth", topo.Depth(),
		"tokens", start.Tokens())

	if !opts.Refresh && r.Cache != nil {
		if res, hit, err := r.lookup(ctx, key, start, logger); hit {
			return res, err
		}
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	began := time.Now()
	found, err := search.New(opts.Search).Solve(ctx, start)
	if errs.Is(err, errs.ErrCodeNoSolution) {
		r.store(ctx, key, cachedSolution{NoSolution: true})
		logger.Info("no solution", "duration", time.Since(began))
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	res := newResult(topo, start, found.Final)
	res.Stats = found.Stats
	r.store(ctx, key, cachedSolution{Cost: found.Cost, Moves: found.Moves})

	logger.Info("solved",
		"cost", res.Cost,
		"moves", len(res.Moves),
		"expanded", found.Stats.Expanded,
		"compactions", found.Stats.Compactions,
		"duration", time.Since(began))
	return res, nil
}

// lookup returns the cached answer for key. hit is false on a miss, in which
// case the caller must search. A cached unsolvable puzzle is a hit with
// search.ErrNoSolution.
func (r *Runner) lookup(ctx context.Context, key string, start *state.Configuration, logger *log.Logger) (*Result, bool, error) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "error", err)
		return nil, false, nil
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, cache.KindSolve)
		return nil, false, nil
	}

	var sol cachedSolution
	if err := json.Unmarshal(data, &sol); err != nil {
		logger.Warn("discarding unreadable cache entry", "error", err)
		observability.Cache().OnCacheMiss(ctx, cache.KindSolve)
		return nil, false, nil
	}
	if sol.NoSolution {
		observability.Cache().OnCacheHit(ctx, cache.KindSolve)
		logger.Debug("cache hit", "no_solution", true)
		return nil, true, search.ErrNoSolution
	}

	end, err := Replay(start, sol.Moves)
	if err != nil || !end.IsComplete() || end.Cost()-start.Cost() != sol.Cost {
		logger.Warn("discarding cache entry that does not replay", "error", err)
		observability.Cache().OnCacheMiss(ctx, cache.KindSolve)
		return nil, false, nil
	}

	observability.Cache().OnCacheHit(ctx, cache.KindSolve)
	res := newResult(start.Topology(), start, end)
	res.Cached = true
	logger.Debug("cache hit", "cost", res.Cost)
	return res, true, nil
}

func (r *Runner) store(ctx context.Context, key string, sol cachedSolution) {
	if r.Cache == nil {
		return
	}
	data, err := json.Marshal(sol)
	if err != nil {
		return
	}
	ttl := r.TTL
	if ttl <= 0 {
		ttl = cache.SolveTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, cache.KindSolve, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// Prepare parses the input of opts into a topology and a starting
// configuration.
func Prepare(opts Options) (*topology.Topology, *state.Configuration, error) {
	var (
		l   *board.Layout
		err error
	)
	if opts.Board != "" {
		l, err = board.ParseString(opts.Board)
		if err == nil && opts.Depth > 0 && l.Depth() != opts.Depth {
			err = errs.New(errs.ErrCodeInvalidDepth,
				"diagram rooms have depth %d, want %d", l.Depth(), opts.Depth)
		}
	} else {
		l, err = tokenLayout(opts)
	}
	if err != nil {
		return nil, nil, err
	}

	if opts.Unfold {
		if l, err = l.Unfold(); err != nil {
			return nil, nil, err
		}
	}

	topo, err := l.Topology(opts.Types)
	if err != nil {
		return nil, nil, err
	}
	start, err := l.Configuration(topo)
	if err != nil {
		return nil, nil, err
	}
	return topo, start, nil
}

func tokenLayout(opts Options) (*board.Layout, error) {
	rooms := len(opts.Types)
	if rooms == 0 {
		rooms = len(topology.DefaultTypes())
	}
	l, err := board.ParseTokens(opts.Tokens, rooms, opts.Order)
	if err != nil {
		return nil, err
	}
	if opts.Depth > 0 && l.Depth() != opts.Depth {
		return nil, errs.New(errs.ErrCodeTokenCount,
			"%d rooms of depth %d need %d tokens, got %d",
			rooms, opts.Depth, rooms*opts.Depth, rooms*l.Depth())
	}
	if len(opts.Entrances) > 0 {
		l.Entrances = opts.Entrances
	}
	if opts.CorridorLength > 0 {
		l.Corridor = []rune(strings.Repeat(string(board.Empty), opts.CorridorLength))
	} else if len(opts.Entrances) > 0 {
		// Let the topology builder pick the length for custom entrances.
		last := 0
		for _, c := range opts.Entrances {
			last = max(last, c)
		}
		l.Corridor = []rune(strings.Repeat(string(board.Empty), last+3))
	}
	return l, nil
}

// Replay applies moves to start, checking that each is legal and priced as
// recorded. It returns the final configuration.
func Replay(start *state.Configuration, ms []state.Move) (*state.Configuration, error) {
	cur := start
	for i, m := range ms {
		if m.From < 0 || m.From >= cur.Topology().Len() || cur.Empty(m.From) {
			return nil, errs.New(errs.ErrCodeInvalidInput, "move %d: no token at slot %d", i+1, m.From)
		}
		if m.To < 0 || m.To >= cur.Topology().Len() {
			return nil, errs.New(errs.ErrCodeInvalidInput, "move %d: slot %d out of range", i+1, m.To)
		}
		next, cost, ok := moves.TryMove(cur, m.From, m.To)
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidInput, "move %d: %v to %v is blocked",
				i+1, cur.Topology().Slot(m.From), cur.Topology().Slot(m.To))
		}
		if cost != m.Cost {
			return nil, errs.New(errs.ErrCodeInvalidInput, "move %d costs %d, recorded %d", i+1, cost, m.Cost)
		}
		cur = next
	}
	return cur, nil
}

func newResult(topo *topology.Topology, start, end *state.Configuration) *Result {
	return &Result{
		Cost:     end.Cost() - start.Cost(),
		Moves:    describeMoves(topo, end.Path()),
		Board:    render.Text(start),
		Final:    render.Text(end),
		Topology: topo,
		Start:    start,
		End:      end,
	}
}

// typesKey renders token types for cache keys, e.g. "A:1,B:10".
func typesKey(topo *topology.Topology) string {
	parts := make([]string, topo.TypeCount())
	for i, tt := range topo.Types() {
		parts[i] = fmt.Sprintf("%c:%d", tt.Symbol, tt.Multiplier)
	}
	return strings.Join(parts, ",")
}
