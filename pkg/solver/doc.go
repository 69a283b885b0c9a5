// Package solver runs complete burrow solves: input parsing, result caching
// and the search itself.
//
// This package is shared by the CLI and the HTTP service so both read boards,
// key the cache and report results the same way.
//
// # Architecture
//
// A solve has three stages:
//
//  1. Prepare: parse a board diagram or token list into a topology and a
//     starting configuration
//  2. Lookup: derive a cache key from the rendered board and token types and
//     consult the cache; a cached move list is replayed to rebuild the answer
//  3. Search: run the engine and store the answer for next time
//
// # Usage
//
//	runner := solver.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, solver.Options{Tokens: "BA CD BC DA"})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Cost) // 12521
package solver
