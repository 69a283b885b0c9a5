// Package topology builds the fixed slot graph that every burrow configuration
// is laid over.
//
// A topology is a corridor of slots laid out as a linear chain, with one room
// (a stack of Home slots) hanging below a designated corridor column per token
// type. The corridor slot directly above a room entrance is a Junction: tokens
// may pass through it but never stop there.
//
//	#############
//	#...........#   corridor: columns 0..10, junctions at 2, 4, 6, 8
//	###B#C#B#D###   room row at depth 0 (shallowest)
//	  #A#D#C#A#     room row at depth 1
//	  #########
//
// Slots and edges live in flat arrays; slots refer to each other only through
// integer indices. The graph is a tree, so the path between two slots is unique.
//
// A Topology is immutable after [Build] returns and is safe to share between
// goroutines and between all configurations derived from it.
package topology
