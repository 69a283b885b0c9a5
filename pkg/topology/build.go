package topology

import (
	errs "github.com/matzehuels/burrow/pkg/errors"
)

// Sentinel errors returned by Build. Returned errors carry extra detail and
// match these with errors.Is, since errors sharing a code compare equal.
var (
	ErrInvalidDepth  = errs.New(errs.ErrCodeInvalidDepth, "room depth must be positive")
	ErrInvalidTypes  = errs.New(errs.ErrCodeInvalidToken, "invalid token types")
	ErrInvalidLayout = errs.New(errs.ErrCodeInvalidLayout, "invalid corridor layout")
)

// DefaultTypes returns the four token types of the classic puzzle.
func DefaultTypes() []TokenType {
	return []TokenType{
		{Symbol: 'A', Name: "Amber", Multiplier: 1},
		{Symbol: 'B', Name: "Bronze", Multiplier: 10},
		{Symbol: 'C', Name: "Copper", Multiplier: 100},
		{Symbol: 'D', Name: "Desert", Multiplier: 1000},
	}
}

// DefaultDepth is the room depth of the folded classic puzzle.
const DefaultDepth = 2

// DefaultEntrances places room entrances at columns 2, 4, 6, ... leaving one
// resting column between neighbouring rooms and two at each corridor end.
func DefaultEntrances(rooms int) []int {
	out := make([]int, rooms)
	for i := range out {
		out[i] = 2 + 2*i
	}
	return out
}

type options struct {
	types          []TokenType
	depth          int
	corridorLength int
	entrances      []int
}

// Option configures Build.
type Option func(*options)

// WithTypes sets the token types. Multipliers must be strictly increasing.
func WithTypes(types []TokenType) Option {
	return func(o *options) { o.types = types }
}

// WithDepth sets the number of Home slots per room.
func WithDepth(depth int) Option {
	return func(o *options) { o.depth = depth }
}

// WithCorridorLength sets the number of corridor columns. When zero, the
// corridor extends two columns past the last entrance.
func WithCorridorLength(n int) Option {
	return func(o *options) { o.corridorLength = n }
}

// WithEntrances sets the corridor column above each room, in type order.
// When nil, DefaultEntrances is used.
func WithEntrances(columns []int) Option {
	return func(o *options) { o.entrances = columns }
}

// Build constructs a topology. Without options it builds the classic
// four-room, depth-2 burrow.
//
// Build fails fast with a coded error when:
//   - depth is not positive (ErrInvalidDepth)
//   - there are no types, symbols repeat or are reserved, or multipliers are
//     not strictly increasing (ErrInvalidTypes)
//   - the entrance count does not match the type count, or an entrance is
//     duplicated or outside the corridor (ErrInvalidLayout)
func Build(opts ...Option) (*Topology, error) {
	o := options{types: DefaultTypes(), depth: DefaultDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	t := &Topology{
		types:     append([]TokenType(nil), o.types...),
		homes:     make([][]int, len(o.types)),
		entrances: make([]int, len(o.types)),
		bySymbol:  make(map[rune]int, len(o.types)),
		depth:     o.depth,
	}
	for i, tt := range t.types {
		t.bySymbol[tt.Symbol] = i
	}

	junction := make(map[int]int, len(o.entrances))
	for i, col := range o.entrances {
		junction[col] = i
	}

	for col := 0; col < o.corridorLength; col++ {
		kind := Corridor
		if _, ok := junction[col]; ok {
			kind = Junction
		}
		t.addSlot(Slot{Kind: kind, Column: col, Type: NoType})
		if col > 0 {
			t.link(col-1, col)
		}
		if kind == Corridor {
			t.corridor = append(t.corridor, col)
		}
	}

	for ti, col := range o.entrances {
		t.entrances[ti] = col
		above := col
		for d := 0; d < o.depth; d++ {
			idx := t.addSlot(Slot{Kind: Home, Column: col, Type: ti, Depth: d})
			t.link(above, idx)
			t.homes[ti] = append(t.homes[ti], idx)
			above = idx
		}
	}
	return t, nil
}

func (t *Topology) addSlot(s Slot) int {
	s.Index = len(t.slots)
	t.slots = append(t.slots, s)
	t.adj = append(t.adj, nil)
	return s.Index
}

func (t *Topology) link(a, b int) {
	t.adj[a] = append(t.adj[a], b)
	t.adj[b] = append(t.adj[b], a)
	t.edges++
}

func (o *options) validate() error {
	if o.depth <= 0 {
		return errs.New(errs.ErrCodeInvalidDepth, "room depth must be positive, got %d", o.depth)
	}
	if len(o.types) == 0 {
		return errs.New(errs.ErrCodeInvalidToken, "no token types")
	}

	seen := make(map[rune]bool, len(o.types))
	for i, tt := range o.types {
		if err := errs.ValidateSymbol(tt.Symbol); err != nil {
			return errs.New(errs.ErrCodeInvalidToken, "type %d: %v", i, errs.UserMessage(err))
		}
		if seen[tt.Symbol] {
			return errs.New(errs.ErrCodeInvalidToken, "duplicate symbol %q", tt.Symbol)
		}
		seen[tt.Symbol] = true
		if tt.Multiplier == 0 {
			return errs.New(errs.ErrCodeInvalidToken, "type %q has zero multiplier", tt.Symbol)
		}
		if i > 0 && tt.Multiplier <= o.types[i-1].Multiplier {
			return errs.New(errs.ErrCodeInvalidToken,
				"multipliers must be strictly increasing: %q (%d) after %q (%d)",
				tt.Symbol, tt.Multiplier, o.types[i-1].Symbol, o.types[i-1].Multiplier)
		}
	}

	if o.entrances == nil {
		o.entrances = DefaultEntrances(len(o.types))
	}
	if len(o.entrances) != len(o.types) {
		return errs.New(errs.ErrCodeInvalidLayout,
			"%d entrances for %d token types", len(o.entrances), len(o.types))
	}
	if o.corridorLength == 0 {
		last := 0
		for _, col := range o.entrances {
			last = max(last, col)
		}
		o.corridorLength = last + 3
	}
	used := make(map[int]bool, len(o.entrances))
	for _, col := range o.entrances {
		if col < 0 || col >= o.corridorLength {
			return errs.New(errs.ErrCodeInvalidLayout,
				"entrance column %d outside corridor of length %d", col, o.corridorLength)
		}
		if used[col] {
			return errs.New(errs.ErrCodeInvalidLayout, "duplicate entrance column %d", col)
		}
		used[col] = true
	}
	return nil
}
