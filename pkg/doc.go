// Package pkg holds the burrow libraries.
//
// # Overview
//
// Burrow finds the cheapest sequence of moves that sorts tokens into their
// home rooms. Tokens sit in dead-end rooms hanging off a shared corridor;
// each type pays its own energy per step, may only stop in the corridor once
// and may only enter its own room when no stranger is inside.
//
// The packages build on each other:
//
//  1. [topology] - the slot graph: corridor, junctions and rooms
//  2. [state] - immutable configurations of tokens on a topology
//  3. [moves] - legal moves and their cost
//  4. [search] - least-cost search with frontier compaction
//  5. [board] - reading diagrams and token lists
//  6. [render] - drawing boards as text, DOT or SVG
//  7. [solver] - parsing, caching and searching in one call
//
// Supporting packages: [cache], [config], [errors], [observability] and
// [buildinfo].
//
// # Quick Start
//
//	r := solver.NewRunner(nil, nil, nil)
//	res, err := r.Execute(ctx, solver.Options{Tokens: "BA CD BC DA"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Cost) // 12521
//
// [topology]: github.com/matzehuels/burrow/pkg/topology
// [state]: github.com/matzehuels/burrow/pkg/state
// [moves]: github.com/matzehuels/burrow/pkg/moves
// [search]: github.com/matzehuels/burrow/pkg/search
// [board]: github.com/matzehuels/burrow/pkg/board
// [render]: github.com/matzehuels/burrow/pkg/render
// [solver]: github.com/matzehuels/burrow/pkg/solver
// [cache]: github.com/matzehuels/burrow/pkg/cache
// [config]: github.com/matzehuels/burrow/pkg/config
// [errors]: github.com/matzehuels/burrow/pkg/errors
// [observability]: github.com/matzehuels/burrow/pkg/observability
// [buildinfo]: github.com/matzehuels/burrow/pkg/buildinfo
package pkg
