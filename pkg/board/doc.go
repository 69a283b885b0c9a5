// Package board reads burrow puzzles from their ASCII diagram or from a
// compact token list.
//
// A diagram looks like this:
//
//	#############
//	#...........#
//	###B#C#B#D###
//	  #A#D#C#A#
//	  #########
//
// The second line is the corridor, one character per column, '.' for an
// empty column. Every following line up to the closing wall is a room row,
// shallowest first. The columns that hold room cells are the room entrances.
//
// Parsing yields a [Layout]: the geometry plus the symbols in each cell.
// A layout turns into a [topology.Topology] with [Layout.Topology] and into the
// starting [state.Configuration] with [Layout.Configuration]. Symbols are not
// checked against token types until then.
package board
