package search_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/burrow/pkg/search"
	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

func ExampleEngine_Solve() {
	topo, _ := topology.Build()
	start, _ := state.FromTokens(topo, "BA CD BC DA")

	res, err := search.New(search.Options{}).Solve(context.Background(), start)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("Cost:", res.Cost)
	fmt.Println("Complete:", res.Final.IsComplete())
	// Output:
	// Cost: 12521
	// Complete: true
}
