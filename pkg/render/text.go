package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

const (
	wall  = '#'
	blank = '.'
)

// Text draws c as a board diagram:
//
//	#############
//	#...........#
//	###B#C#B#D###
//	  #A#D#C#A#
//	  #########
func Text(c *state.Configuration) string {
	topo := c.Topology()
	width := topo.CorridorLength() + 2

	first, last := topo.Entrance(0), topo.Entrance(0)
	for ti := range topo.TypeCount() {
		first = min(first, topo.Entrance(ti))
		last = max(last, topo.Entrance(ti))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(string(wall), width))
	b.WriteByte('\n')

	b.WriteRune(wall)
	for col := range topo.CorridorLength() {
		b.WriteRune(symbol(c, col))
	}
	b.WriteRune(wall)
	b.WriteByte('\n')

	for d := range topo.Depth() {
		var row []rune
		if d == 0 {
			row = []rune(strings.Repeat(string(wall), width))
		} else {
			row = []rune(strings.Repeat(" ", first) + strings.Repeat(string(wall), last-first+3))
		}
		for ti := range topo.TypeCount() {
			row[topo.Entrance(ti)+1] = symbol(c, topo.Homes(ti)[d])
		}
		b.WriteString(string(row))
		b.WriteByte('\n')
	}

	b.WriteString(strings.Repeat(" ", first))
	b.WriteString(strings.Repeat(string(wall), last-first+3))
	b.WriteByte('\n')
	return b.String()
}

// MoveList prints moves one per line with their cost and a running total.
func MoveList(topo *topology.Topology, moves []state.Move) string {
	var b strings.Builder
	var total uint64
	for n, m := range moves {
		total += m.Cost
		fmt.Fprintf(&b, "%3d. %c %-12s -> %-12s %2d steps %7d cost %8d total\n",
			n+1, topo.Type(m.Type).Symbol, topo.Slot(m.From), topo.Slot(m.To), m.Steps, m.Cost, total)
	}
	return b.String()
}

func symbol(c *state.Configuration, i int) rune {
	if ti, ok := c.Occupant(i); ok {
		return c.Topology().Type(ti).Symbol
	}
	return blank
}
