// Package state holds burrow configurations: complete token-to-slot
// assignments laid over a shared [topology.Topology], plus the cost paid to
// reach them.
//
// Configurations are values. Deriving a child copies the occupancy vector,
// so a configuration never changes after construction and may be shared
// freely between a search frontier and its callers.
package state

import (
	"bytes"
	"fmt"
	"strings"

	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/topology"
)

// empty is the cell value of an unoccupied slot. Occupied cells store the
// token type index plus one.
const empty byte = 0

// Move records a single token move between two resting slots.
type Move struct {
	Type  int    // Token type index
	From  int    // Source slot
	To    int    // Destination slot
	Steps int    // Edges traversed
	Cost  uint64 // Steps times the type's multiplier
}

// Configuration is an immutable occupancy assignment plus accumulated cost.
//
// Two configurations are equal when their occupancy is identical; cost and
// move history are not part of equality.
type Configuration struct {
	topo   *topology.Topology
	cells  []byte
	cost   uint64
	parent *Configuration
	move   Move
}

func newConfiguration(topo *topology.Topology) *Configuration {
	return &Configuration{topo: topo, cells: make([]byte, topo.Len())}
}

// Topology returns the slot graph the configuration is laid over.
func (c *Configuration) Topology() *topology.Topology { return c.topo }

// Cost returns the accumulated cost of all moves that produced c.
func (c *Configuration) Cost() uint64 { return c.cost }

// Occupant returns the token type at slot i, or false if the slot is empty.
func (c *Configuration) Occupant(i int) (int, bool) {
	v := c.cells[i]
	if v == empty {
		return topology.NoType, false
	}
	return int(v) - 1, true
}

// Empty reports whether slot i holds no token.
func (c *Configuration) Empty(i int) bool { return c.cells[i] == empty }

// Key returns the occupancy as a compact string, suitable as a map key.
// Configurations with equal keys are equal.
func (c *Configuration) Key() string { return string(c.cells) }

// Equal reports whether c and o have identical occupancy.
func (c *Configuration) Equal(o *Configuration) bool { return bytes.Equal(c.cells, o.cells) }

// Compare orders configurations lexicographically by occupancy. It is the
// tie-breaker between equal-cost configurations in the search frontier.
func (c *Configuration) Compare(o *Configuration) int { return bytes.Compare(c.cells, o.cells) }

// IsComplete reports whether every Home slot holds a token of its own type.
// Any empty Home slot, or one holding another type, fails the test.
func (c *Configuration) IsComplete() bool {
	for ti := 0; ti < c.topo.TypeCount(); ti++ {
		for _, h := range c.topo.Homes(ti) {
			if occ, ok := c.Occupant(h); !ok || occ != ti {
				return false
			}
		}
	}
	return true
}

// Census returns the number of tokens of each type, indexed by type.
func (c *Configuration) Census() []int {
	out := make([]int, c.topo.TypeCount())
	for _, v := range c.cells {
		if v != empty {
			out[v-1]++
		}
	}
	return out
}

// Tokens returns the total number of tokens.
func (c *Configuration) Tokens() int {
	n := 0
	for _, v := range c.cells {
		if v != empty {
			n++
		}
	}
	return n
}

// LastMove returns the move that produced c, or false for a root configuration.
func (c *Configuration) LastMove() (Move, bool) {
	if c.parent == nil {
		return Move{}, false
	}
	return c.move, true
}

// Parent returns the configuration c was derived from, or nil.
func (c *Configuration) Parent() *Configuration { return c.parent }

// Path returns the moves from the root configuration to c, in order.
func (c *Configuration) Path() []Move {
	var out []Move
	for cur := c; cur.parent != nil; cur = cur.parent {
		out = append(out, cur.move)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Derive returns a child configuration in which the token at from has moved
// to to over steps edges. The child's cost is c's cost plus steps times the
// token's multiplier.
//
// Derive does not check reachability; see the moves package for that. It
// panics if from is empty or to is occupied, since either indicates a bug in
// move generation rather than bad input.
func (c *Configuration) Derive(from, to, steps int) *Configuration {
	ti, ok := c.Occupant(from)
	if !ok {
		panic(errs.New(errs.ErrCodeInternal, "clear of empty slot %v", c.topo.Slot(from)))
	}
	cost := uint64(steps) * c.topo.Type(ti).Multiplier

	child := &Configuration{
		topo:   c.topo,
		cells:  append([]byte(nil), c.cells...),
		cost:   c.cost + cost,
		parent: c,
		move:   Move{Type: ti, From: from, To: to, Steps: steps, Cost: cost},
	}
	child.clear(from)
	child.place(to, ti)
	return child
}

// Detach returns a copy of c without move history, so its ancestors can be
// collected.
func (c *Configuration) Detach() *Configuration {
	return &Configuration{topo: c.topo, cells: c.cells, cost: c.cost}
}

func (c *Configuration) place(i, ti int) {
	if c.topo.Slot(i).Kind == topology.Junction {
		panic(errs.New(errs.ErrCodeInternal, "token placed on %v", c.topo.Slot(i)))
	}
	if c.cells[i] != empty {
		panic(errs.New(errs.ErrCodeInternal, "place on occupied slot %v", c.topo.Slot(i)))
	}
	c.cells[i] = byte(ti + 1)
}

func (c *Configuration) clear(i int) {
	if c.cells[i] == empty {
		panic(errs.New(errs.ErrCodeInternal, "clear of empty slot %v", c.topo.Slot(i)))
	}
	c.cells[i] = empty
}

// String renders the occupancy as symbols: corridor first, then each room
// shallow to deep, separated by '|'. Empty slots print as '.'.
func (c *Configuration) String() string {
	var b strings.Builder
	for _, s := range c.topo.Slots() {
		if s.Kind == topology.Home && s.Depth == 0 {
			b.WriteByte('|')
		}
		if ti, ok := c.Occupant(s.Index); ok {
			b.WriteRune(c.topo.Type(ti).Symbol)
		} else {
			b.WriteByte('.')
		}
	}
	return fmt.Sprintf("%s (cost %d)", b.String(), c.cost)
}
