package solver

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/burrow/pkg/board"
	"github.com/matzehuels/burrow/pkg/cache"
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/search"
	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

const classic = `
#############
#...........#
###B#C#B#D###
  #A#D#C#A#
  #########
`

// deadlock has A waiting right of C in the corridor; neither can pass.
const deadlock = `
###########
#...C.A...#
###.#B#.###
  #A#B#C#
  #######
`

// openSlot has an Amber token above an empty slot of its own room.
const openSlot = "#############\n#A..........#\n###A#B#C#D###\n  #.#B#C#D#\n  #########\n"

// memCache is an in-memory cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) corrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		c.data[k] = []byte("{not json")
	}
}

var _ cache.Cache = (*memCache)(nil)

func quietLogger() *log.Logger { return log.New(io.Discard) }

func TestExecuteTokens(t *testing.T) {
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{Tokens: "BA CD BC DA"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Cost != 12521 {
		t.Errorf("Cost = %d, want 12521", res.Cost)
	}
	if res.Cached {
		t.Error("first solve should not be cached")
	}
	var sum uint64
	for _, m := range res.Moves {
		sum += m.Cost
	}
	if sum != res.Cost {
		t.Errorf("move costs sum to %d, want %d", sum, res.Cost)
	}
	if !res.End.IsComplete() {
		t.Error("End is not complete")
	}
	if res.Stats.Expanded == 0 {
		t.Error("Stats.Expanded = 0 after a search")
	}
}

func TestExecuteScenarios(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		want   uint64
		hasErr error
	}{
		{"sorted", Options{Tokens: "AA BB CC DD"}, 0, nil},
		{"swapped tops", Options{Tokens: "BA AB", Types: topology.DefaultTypes()[:2]}, 46, nil},
		{"row major", Options{Tokens: "BCBD ADCA", Order: board.RowMajor}, 12521, nil},
		{"diagram", Options{Board: classic}, 12521, nil},
		{"deadlock", Options{Board: deadlock}, 0, search.ErrNoSolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quietLogger()
			res, err := NewRunner(nil, nil, nil).Execute(context.Background(), tt.opts)
			if tt.hasErr != nil {
				if !errors.Is(err, tt.hasErr) {
					t.Fatalf("err = %v, want %v", err, tt.hasErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Cost != tt.want {
				t.Errorf("Cost = %d, want %d", res.Cost, tt.want)
			}
		})
	}
}

func TestExecuteUnfolded(t *testing.T) {
	if testing.Short() {
		t.Skip("depth-4 search is slow")
	}
	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), Options{Board: classic, Unfold: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Cost != 44169 {
		t.Errorf("Cost = %d, want 44169", res.Cost)
	}
}

func TestExecuteCaches(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	first, err := r.Execute(ctx, Options{Tokens: "BA CD BC DA"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(mc.data) != 1 {
		t.Fatalf("cache holds %d entries, want 1", len(mc.data))
	}

	// The same puzzle as a diagram shares the entry.
	second, err := r.Execute(ctx, Options{Board: classic})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.Cached {
		t.Error("second solve should come from the cache")
	}
	if second.Cost != first.Cost {
		t.Errorf("cached Cost = %d, want %d", second.Cost, first.Cost)
	}
	if len(second.Moves) != len(first.Moves) {
		t.Errorf("cached move count = %d, want %d", len(second.Moves), len(first.Moves))
	}
	if second.Final != first.Final {
		t.Errorf("cached Final = %q, want %q", second.Final, first.Final)
	}

	// Refresh bypasses the lookup.
	third, err := r.Execute(ctx, Options{Tokens: "BA CD BC DA", Refresh: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if third.Cached {
		t.Error("refresh should search again")
	}

	// Different multipliers are a different puzzle.
	types := topology.DefaultTypes()
	types[3].Multiplier = 2000
	if _, err := r.Execute(ctx, Options{Tokens: "BA CD BC DA", Types: types}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(mc.data) != 2 {
		t.Errorf("cache holds %d entries, want 2", len(mc.data))
	}
}

func TestExecuteCachesNoSolution(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	for i := 0; i < 2; i++ {
		_, err := r.Execute(ctx, Options{Board: deadlock})
		if !errors.Is(err, search.ErrNoSolution) {
			t.Fatalf("run %d: err = %v, want ErrNoSolution", i, err)
		}
	}
	if mc.hits != 1 {
		t.Errorf("cache hits = %d, want 1", mc.hits)
	}
}

func TestExecuteOpenSlotBelowOwnToken(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	for i, wantCached := range []bool{false, true} {
		res, err := r.Execute(ctx, Options{Board: openSlot})
		if err != nil {
			t.Fatalf("run %d: Execute: %v", i, err)
		}
		if res.Cost != 4 {
			t.Errorf("run %d: Cost = %d, want 4", i, res.Cost)
		}
		if res.Cached != wantCached {
			t.Errorf("run %d: Cached = %v, want %v", i, res.Cached, wantCached)
		}
	}
}

func TestExecuteDiscardsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	r := NewRunner(mc, nil, quietLogger())

	if _, err := r.Execute(ctx, Options{Tokens: "BA AB", Types: topology.DefaultTypes()[:2]}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	mc.corrupt()

	res, err := r.Execute(ctx, Options{Tokens: "BA AB", Types: topology.DefaultTypes()[:2]})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Cached || res.Cost != 46 {
		t.Errorf("got cached=%v cost=%d, want a fresh solve at 46", res.Cached, res.Cost)
	}
}

func TestExecuteErrors(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		opts Options
		code errs.Code
	}{
		{"no input", context.Background(), Options{}, errs.ErrCodeInvalidInput},
		{"depth mismatch", context.Background(), Options{Tokens: "BA CD BC DA", Depth: 4}, errs.ErrCodeTokenCount},
		{"diagram depth mismatch", context.Background(), Options{Board: classic, Depth: 4}, errs.ErrCodeInvalidDepth},
		{"unfolded diagram keeps written depth", context.Background(), Options{Board: classic, Depth: 4, Unfold: true}, errs.ErrCodeInvalidDepth},
		{"unknown token", context.Background(), Options{Tokens: "BA CD BC DX"}, errs.ErrCodeInvalidToken},
		{"bad board", context.Background(), Options{Board: "#\n"}, errs.ErrCodeInvalidBoard},
		{"budget", context.Background(), Options{Tokens: "BA CD BC DA", Search: search.Options{MaxExpansions: 3}}, errs.ErrCodeBudgetExhausted},
		{"canceled", canceled, Options{Tokens: "BA CD BC DA"}, errs.ErrCodeCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, nil, quietLogger()).Execute(tt.ctx, tt.opts)
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestPrepareCustomGeometry(t *testing.T) {
	topo, start, err := Prepare(Options{
		Tokens:    "BA AB",
		Types:     topology.DefaultTypes()[:2],
		Entrances: []int{1, 5},
	})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if topo.CorridorLength() != 8 {
		t.Errorf("CorridorLength = %d, want 8", topo.CorridorLength())
	}
	if topo.Entrance(1) != 5 {
		t.Errorf("Entrance(1) = %d, want 5", topo.Entrance(1))
	}
	if start.Tokens() != 4 {
		t.Errorf("Tokens = %d, want 4", start.Tokens())
	}
}

func TestReplay(t *testing.T) {
	res, err := NewRunner(nil, nil, quietLogger()).Execute(context.Background(),
		Options{Tokens: "BA AB", Types: topology.DefaultTypes()[:2]})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	path := res.Path()

	end, err := Replay(res.Start, path)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if !end.Equal(res.End) {
		t.Errorf("Replay ended at %v, want %v", end, res.End)
	}

	tests := []struct {
		name  string
		moves func([]state.Move) []state.Move
	}{
		{"wrong cost", func(ms []state.Move) []state.Move { ms[0].Cost++; return ms }},
		{"empty source", func(ms []state.Move) []state.Move { ms[0].From = 0; return ms }},
		{"out of range", func(ms []state.Move) []state.Move { ms[0].To = 999; return ms }},
		{"out of order", func(ms []state.Move) []state.Move { return ms[1:] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := tt.moves(append([]state.Move(nil), path...))
			if _, err := Replay(res.Start, ms); !errs.Is(err, errs.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want %s", err, errs.ErrCodeInvalidInput)
			}
		})
	}
}

type ttlRecorder struct {
	*memCache
	ttls []time.Duration
}

func (c *ttlRecorder) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	c.ttls = append(c.ttls, ttl)
	return c.memCache.Set(ctx, key, data, ttl)
}

func TestRunnerTTL(t *testing.T) {
	tests := []struct {
		ttl, want time.Duration
	}{
		{0, cache.SolveTTL},
		{time.Hour, time.Hour},
	}
	for _, tt := range tests {
		rec := &ttlRecorder{memCache: newMemCache()}
		r := NewRunner(rec, nil, log.New(io.Discard))
		r.TTL = tt.ttl
		if _, err := r.Execute(context.Background(), Options{Tokens: "BA AB", Types: topology.DefaultTypes()[:2]}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if len(rec.ttls) != 1 || rec.ttls[0] != tt.want {
			t.Errorf("TTL %v: stored with %v, want [%v]", tt.ttl, rec.ttls, tt.want)
		}
	}
}
