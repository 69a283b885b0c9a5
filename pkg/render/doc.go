// Package render turns burrow configurations into text and diagrams.
//
// # Overview
//
// [Text] draws a configuration in the same ASCII diagram format that
// [board.Parse] reads, so a rendered board can be saved and parsed again.
// [MoveList] prints a solution one move per line.
//
//	fmt.Print(render.Text(c))
//	fmt.Print(render.MoveList(topo, res.Moves))
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the slot graph itself using Graphviz,
// with each slot as a node and occupied slots filled in their token's colour.
//
//	dot := nodelink.ToDOT(topo, c, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// [board.Parse]: github.com/matzehuels/burrow/pkg/board.Parse
// [nodelink]: github.com/matzehuels/burrow/pkg/render/nodelink
package render
