// Package nodelink renders burrow slot graphs as node-link diagrams.
//
// # Overview
//
// Every slot becomes a node and every adjacency an edge. Corridor slots sit
// on one rank, with each room hanging below its junction. When a
// configuration is given, occupied slots are filled in their token's colour
// and labelled with its symbol.
//
// # Usage
//
//	dot := nodelink.ToDOT(topo, c, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//
// Pass a nil configuration to draw the empty topology.
//
// # Options
//
//   - Detailed: label every node with its slot name as well as its token
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is required.
package nodelink
