package topology_test

import (
	"fmt"

	"github.com/matzehuels/burrow/pkg/topology"
)

func ExampleBuild() {
	topo, err := topology.Build(topology.WithDepth(4))
	if err != nil {
		panic(err)
	}

	fmt.Println("Slots:", topo.Len())
	fmt.Println("Corridor:", topo.CorridorLength())
	fmt.Println("Resting corridor slots:", len(topo.Corridor()))
	fmt.Println("Copper room:", topo.Homes(2))
	// Output:
	// Slots: 27
	// Corridor: 11
	// Resting corridor slots: 7
	// Copper room: [19 20 21 22]
}
