package topology

import (
	"fmt"
	"slices"
)

// Kind classifies a slot.
type Kind uint8

const (
	// Corridor slots may hold at most one token and are valid stopping points.
	Corridor Kind = iota
	// Junction slots sit above a room entrance. Tokens pass through, never stop.
	Junction
	// Home slots belong to exactly one token type's room.
	Home
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case Corridor:
		return "corridor"
	case Junction:
		return "junction"
	case Home:
		return "home"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// NoType marks slots that are not owned by a token type.
const NoType = -1

// TokenType describes one kind of token and what it costs to move it one step.
type TokenType struct {
	Symbol     rune   // Single-character symbol used in board diagrams
	Name       string // Display name
	Multiplier uint64 // Cost per edge traversed
}

// Slot is a node of the topology.
type Slot struct {
	Index  int  // Position in the slot arena
	Kind   Kind // Corridor, Junction or Home
	Column int  // Corridor column (for Home slots, the column of the room entrance)
	Type   int  // Owning type index for Home slots, NoType otherwise
	Depth  int  // 0 for the entrance-adjacent Home slot, increasing downward; 0 for corridor slots
}

// Resting reports whether a token may stop on the slot.
func (s Slot) Resting() bool { return s.Kind != Junction }

// String returns a short human-readable slot name, e.g. "corridor[3]" or "home[1/0]".
func (s Slot) String() string {
	if s.Kind == Home {
		return fmt.Sprintf("home[%d/%d]", s.Type, s.Depth)
	}
	return fmt.Sprintf("%s[%d]", s.Kind, s.Column)
}

// Topology is the immutable slot graph shared by all configurations.
//
// Slots are indexed as follows: corridor columns first (index == column),
// then each room in type order, shallow to deep.
type Topology struct {
	slots     []Slot
	adj       [][]int
	types     []TokenType
	homes     [][]int // type -> home slots, shallow to deep
	entrances []int   // type -> junction slot index
	corridor  []int   // resting corridor slots, left to right
	bySymbol  map[rune]int
	depth     int
	edges     int
}

// Len returns the number of slots.
func (t *Topology) Len() int { return len(t.slots) }

// Slot returns the slot at index i.
func (t *Topology) Slot(i int) Slot { return t.slots[i] }

// Slots returns a copy of all slots in index order.
func (t *Topology) Slots() []Slot { return slices.Clone(t.slots) }

// Neighbors returns the slots adjacent to i. The returned slice is shared and
// must not be modified.
func (t *Topology) Neighbors(i int) []int { return t.adj[i] }

// Edges returns every undirected edge once, as (lower, higher) index pairs.
func (t *Topology) Edges() [][2]int {
	out := make([][2]int, 0, t.edges)
	for i, ns := range t.adj {
		for _, j := range ns {
			if i < j {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// EdgeCount returns the number of undirected edges.
func (t *Topology) EdgeCount() int { return t.edges }

// TypeCount returns the number of token types.
func (t *Topology) TypeCount() int { return len(t.types) }

// Type returns the token type with index i.
func (t *Topology) Type(i int) TokenType { return t.types[i] }

// Types returns a copy of the token types in index order.
func (t *Topology) Types() []TokenType { return slices.Clone(t.types) }

// TypeBySymbol looks up a token type index by its diagram symbol.
func (t *Topology) TypeBySymbol(r rune) (int, bool) {
	i, ok := t.bySymbol[r]
	return i, ok
}

// Homes returns the home slots of type i, shallow to deep. The returned slice
// is shared and must not be modified.
func (t *Topology) Homes(i int) []int { return t.homes[i] }

// Entrance returns the junction slot above the room of type i.
func (t *Topology) Entrance(i int) int { return t.entrances[i] }

// Corridor returns the resting corridor slots, left to right. The returned
// slice is shared and must not be modified.
func (t *Topology) Corridor() []int { return t.corridor }

// CorridorLength returns the number of corridor columns, junctions included.
func (t *Topology) CorridorLength() int { return len(t.slots) - len(t.types)*t.depth }

// Depth returns the number of Home slots per room.
func (t *Topology) Depth() int { return t.depth }

// HomeSlotCount returns the total number of Home slots, which is also the
// number of tokens a configuration must carry.
func (t *Topology) HomeSlotCount() int { return len(t.types) * t.depth }
