// Package search finds the cheapest sequence of moves that brings every token
// of a configuration home.
//
// The [Engine] runs a uniform-cost search: a priority frontier of
// configurations ordered by accumulated cost, ties broken by the occupancy
// key so runs are deterministic. The first complete configuration popped
// from the frontier is optimal, since every move has a positive cost.
//
// There is no closed set. Instead the frontier is compacted periodically,
// keeping only the cheapest entry per occupancy (see [Compact]). Compaction
// never removes the cheapest path to any configuration, so optimality is
// preserved while memory stays bounded by the number of distinct
// configurations in flight.
//
// # Usage
//
//	start, _ := state.FromTokens(topo, "BA CD BC DA")
//	res, err := search.New(search.Options{}).Solve(ctx, start)
//	if errors.Is(err, search.ErrNoSolution) {
//	    // the tokens can never all reach home
//	}
//	fmt.Println(res.Cost) // 12521
//
// A search stops early with [ErrBudgetExhausted] once Options.MaxExpansions
// configurations have been expanded, and with a TIMEOUT or CANCELED error
// when its context ends.
package search
