package moves

import (
	errs "github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

// frame is a work-list entry: a slot, the slot it was reached from, and the
// number of edges walked so far.
type frame struct {
	slot, from, steps int
}

// TryMove moves the token at from to to, if the path between them is clear.
//
// The walk starts at from and only enters slots that are empty in c; the
// source's own occupancy does not obstruct. It returns the child
// configuration and the move cost (edges times the token's multiplier), or
// false when to is unreachable, occupied, a junction, or equal to from.
//
// TryMove panics if from is empty.
func TryMove(c *state.Configuration, from, to int) (*state.Configuration, uint64, bool) {
	topo := c.Topology()
	if c.Empty(from) {
		panic(errs.New(errs.ErrCodeInternal, "move from empty slot %v", topo.Slot(from)))
	}
	if from == to || !c.Empty(to) || topo.Slot(to).Kind == topology.Junction {
		return nil, 0, false
	}

	steps, ok := walk(c, from, to)
	if !ok {
		return nil, 0, false
	}
	child := c.Derive(from, to, steps)
	mv, _ := child.LastMove()
	return child, mv.Cost, true
}

// walk returns the number of edges between from and to along empty slots.
// The topology is a tree, so remembering the previous slot is enough to
// avoid revisiting and the first arrival is the only path.
func walk(c *state.Configuration, from, to int) (int, bool) {
	topo := c.Topology()
	stack := make([]frame, 0, 16)
	stack = append(stack, frame{slot: from, from: -1})
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.slot == to {
			return cur.steps, true
		}
		for _, n := range topo.Neighbors(cur.slot) {
			if n == cur.from || !c.Empty(n) {
				continue
			}
			stack = append(stack, frame{slot: n, from: cur.slot, steps: cur.steps + 1})
		}
	}
	return 0, false
}
