package board

import (
	"slices"
	"strings"
	"unicode"

	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Empty marks a cell without a token.
const Empty = '.'

// DefaultUnfoldRows are the rows inserted by [Layout.Unfold] when none are
// given.
var DefaultUnfoldRows = []string{"DCBA", "DBAC"}

// Layout is a parsed board: corridor geometry and the symbol in every cell.
type Layout struct {
	Corridor  []rune   // One cell per corridor column
	Entrances []int    // Entrance column of each room, left to right
	Rooms     [][]rune // Cells of each room, shallow to deep
}

// CorridorLength returns the number of corridor columns.
func (l *Layout) CorridorLength() int { return len(l.Corridor) }

// Depth returns the number of cells per room.
func (l *Layout) Depth() int {
	if len(l.Rooms) == 0 {
		return 0
	}
	return len(l.Rooms[0])
}

// Clone returns a deep copy of l.
func (l *Layout) Clone() *Layout {
	rooms := make([][]rune, len(l.Rooms))
	for i, r := range l.Rooms {
		rooms[i] = slices.Clone(r)
	}
	return &Layout{
		Corridor:  slices.Clone(l.Corridor),
		Entrances: slices.Clone(l.Entrances),
		Rooms:     rooms,
	}
}

// Unfold returns a copy of l with rows inserted below the first room row.
// Each row lists one symbol per room; '#' and whitespace are ignored so
// diagram rows such as "#D#C#B#A#" are accepted. With no rows,
// DefaultUnfoldRows are used.
func (l *Layout) Unfold(rows ...string) (*Layout, error) {
	if len(rows) == 0 {
		rows = DefaultUnfoldRows
	}
	if l.Depth() == 0 {
		return nil, errs.New(errs.ErrCodeInvalidBoard, "cannot unfold a board without rooms")
	}

	out := l.Clone()
	for ri := range out.Rooms {
		out.Rooms[ri] = out.Rooms[ri][:1]
	}
	for n, row := range rows {
		cells := cellsOf(row)
		if len(cells) != len(l.Rooms) {
			return nil, errs.New(errs.ErrCodeInvalidBoard,
				"unfold row %d has %d cells for %d rooms", n+1, len(cells), len(l.Rooms))
		}
		for ri, r := range cells {
			out.Rooms[ri] = append(out.Rooms[ri], r)
		}
	}
	for ri := range out.Rooms {
		out.Rooms[ri] = append(out.Rooms[ri], l.Rooms[ri][1:]...)
	}
	return out, nil
}

// Topology builds the slot graph for l. Room i holds types[i]; types beyond
// the room count are ignored. With no types, the defaults are used.
func (l *Layout) Topology(types []topology.TokenType) (*topology.Topology, error) {
	if types == nil {
		types = topology.DefaultTypes()
	}
	if len(l.Rooms) > len(types) {
		return nil, errs.New(errs.ErrCodeInvalidLayout,
			"%d rooms but only %d token types", len(l.Rooms), len(types))
	}
	types = types[:len(l.Rooms)]
	return topology.Build(
		topology.WithTypes(types),
		topology.WithDepth(l.Depth()),
		topology.WithCorridorLength(l.CorridorLength()),
		topology.WithEntrances(l.Entrances),
	)
}

// Configuration places the symbols of l on topo. topo must have l's shape,
// which holds for any topology returned by l.Topology.
func (l *Layout) Configuration(topo *topology.Topology) (*state.Configuration, error) {
	if len(l.Rooms) != topo.TypeCount() || l.Depth() != topo.Depth() ||
		l.CorridorLength() != topo.CorridorLength() {
		return nil, errs.New(errs.ErrCodeInvalidLayout,
			"board has %d rooms of depth %d and %d corridor columns, topology has %d of depth %d and %d",
			len(l.Rooms), l.Depth(), l.CorridorLength(),
			topo.TypeCount(), topo.Depth(), topo.CorridorLength())
	}

	b := state.NewBuilder(topo)
	for col, r := range l.Corridor {
		if r == Empty {
			continue
		}
		// Corridor slots are indexed by column.
		if err := b.Place(col, r); err != nil {
			return nil, err
		}
	}
	for ri, room := range l.Rooms {
		for d, r := range room {
			if r == Empty {
				continue
			}
			if err := b.Place(topo.Homes(ri)[d], r); err != nil {
				return nil, err
			}
		}
	}
	return b.Build()
}

// cellsOf returns the cell symbols in s, dropping walls and whitespace.
func cellsOf(s string) []rune {
	var out []rune
	for _, r := range s {
		if r == '#' || unicode.IsSpace(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// emptyCorridor returns n empty corridor cells.
func emptyCorridor(n int) []rune {
	return []rune(strings.Repeat(string(Empty), n))
}
