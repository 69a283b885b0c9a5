package moves

import (
	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

// NextStates returns every configuration reachable from c by one legal move,
// in slot order of the moving token. Each child's cost includes the move.
func NextStates(c *state.Configuration) []*state.Configuration {
	topo := c.Topology()
	var out []*state.Configuration
	for i := 0; i < topo.Len(); i++ {
		ti, ok := c.Occupant(i)
		if !ok {
			continue
		}
		slot := topo.Slot(i)
		switch {
		case slot.Kind == topology.Corridor:
			if child, ok := moveHome(c, i, ti, 0); ok {
				out = append(out, child)
			}
		case slot.Type == ti:
			if Settled(c, i) {
				continue
			}
			// An open slot below and nothing foreign: sink further in.
			if child, ok := moveHome(c, i, ti, slot.Depth+1); ok {
				out = append(out, child)
				continue
			}
			out = appendCorridorMoves(out, c, i)
		default:
			if child, ok := moveHome(c, i, ti, 0); ok {
				out = append(out, child)
				continue
			}
			out = appendCorridorMoves(out, c, i)
		}
	}
	return out
}

// HomeAvailable reports whether the room of type ti holds only empty slots
// and tokens of type ti.
func HomeAvailable(c *state.Configuration, ti int) bool {
	for _, h := range c.Topology().Homes(ti) {
		if occ, ok := c.Occupant(h); ok && occ != ti {
			return false
		}
	}
	return true
}

// Settled reports whether the token at slot i is in its own room with every
// slot below it filled by its own type. Settled tokens never move again.
func Settled(c *state.Configuration, i int) bool {
	topo := c.Topology()
	slot := topo.Slot(i)
	ti, ok := c.Occupant(i)
	if !ok || slot.Kind != topology.Home || slot.Type != ti {
		return false
	}
	for _, h := range topo.Homes(ti)[slot.Depth+1:] {
		if occ, ok := c.Occupant(h); !ok || occ != ti {
			return false
		}
	}
	return true
}

// moveHome moves the token at i into its room, trying the deepest open slot
// first and the next shallower one after that, down to minDepth.
func moveHome(c *state.Configuration, i, ti, minDepth int) (*state.Configuration, bool) {
	if !HomeAvailable(c, ti) {
		return nil, false
	}
	homes := c.Topology().Homes(ti)
	for d := len(homes) - 1; d >= minDepth; d-- {
		if !c.Empty(homes[d]) {
			continue
		}
		if child, _, ok := TryMove(c, i, homes[d]); ok {
			return child, true
		}
	}
	return nil, false
}

func appendCorridorMoves(out []*state.Configuration, c *state.Configuration, i int) []*state.Configuration {
	for _, j := range c.Topology().Corridor() {
		if !c.Empty(j) {
			continue
		}
		if child, _, ok := TryMove(c, i, j); ok {
			out = append(out, child)
		}
	}
	return out
}
