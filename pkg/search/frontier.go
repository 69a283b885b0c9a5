package search

import (
	"slices"

	"github.com/emirpasic/gods/trees/binaryheap"

	"github.com/matzehuels/burrow/pkg/state"
)

// frontier is a min-heap of configurations ordered by (cost, key).
type frontier struct {
	heap *binaryheap.Heap
}

func newFrontier() *frontier {
	return &frontier{heap: binaryheap.NewWith(byCostThenKey)}
}

// byCostThenKey is the frontier ordering. Equal costs fall back to the
// occupancy order so that pops are deterministic.
func byCostThenKey(a, b interface{}) int {
	x, y := a.(*state.Configuration), b.(*state.Configuration)
	switch {
	case x.Cost() < y.Cost():
		return -1
	case x.Cost() > y.Cost():
		return 1
	}
	return x.Compare(y)
}

func (f *frontier) push(c *state.Configuration) { f.heap.Push(c) }

func (f *frontier) pop() (*state.Configuration, bool) {
	v, ok := f.heap.Pop()
	if !ok {
		return nil, false
	}
	return v.(*state.Configuration), true
}

func (f *frontier) len() int { return f.heap.Size() }

// compact replaces the heap contents with their compacted form and returns
// the sizes before and after.
func (f *frontier) compact() (before, after int) {
	values := f.heap.Values()
	before = len(values)
	items := make([]*state.Configuration, len(values))
	for i, v := range values {
		items[i] = v.(*state.Configuration)
	}
	kept := Compact(items)
	f.heap.Clear()
	for _, c := range kept {
		f.heap.Push(c)
	}
	return before, len(kept)
}

// Compact keeps one configuration per distinct occupancy: the one with the
// lowest cost. Among equal costs the earliest in items wins. The result is
// sorted by cost, then occupancy.
func Compact(items []*state.Configuration) []*state.Configuration {
	best := make(map[string]*state.Configuration, len(items))
	for _, c := range items {
		k := c.Key()
		if cur, ok := best[k]; !ok || c.Cost() < cur.Cost() {
			best[k] = c
		}
	}
	out := make([]*state.Configuration, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *state.Configuration) int {
		return byCostThenKey(a, b)
	})
	return out
}
