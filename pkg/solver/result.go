package solver

import (
	"github.com/matzehuels/burrow/pkg/search"
	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Result is a solved puzzle.
type Result struct {
	Cost   uint64 `json:"cost"`
	Moves  []Move `json:"moves"`
	Board  string `json:"board"`  // Starting board diagram
	Final  string `json:"final"`  // Finished board diagram
	Cached bool   `json:"cached"` // Answer came from the cache

	Stats search.Stats `json:"-"`

	Topology *topology.Topology  `json:"-"`
	Start    *state.Configuration `json:"-"`
	End      *state.Configuration `json:"-"`
}

// Move is one step of a solution, with slots named for display.
type Move struct {
	Token string `json:"token"`
	From  string `json:"from"`
	To    string `json:"to"`
	Steps int    `json:"steps"`
	Cost  uint64 `json:"cost"`
}

// Path returns the raw moves of the solution.
func (r *Result) Path() []state.Move {
	if r.End == nil {
		return nil
	}
	return r.End.Path()
}

func describeMoves(topo *topology.Topology, ms []state.Move) []Move {
	out := make([]Move, len(ms))
	for i, m := range ms {
		out[i] = Move{
			Token: string(topo.Type(m.Type).Symbol),
			From:  topo.Slot(m.From).String(),
			To:    topo.Slot(m.To).String(),
			Steps: m.Steps,
			Cost:  m.Cost,
		}
	}
	return out
}
