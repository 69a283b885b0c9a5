package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/burrow/pkg/state"
	"github.com/matzehuels/burrow/pkg/topology"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the slot name to every node label.
	// When false, only the token symbol is shown.
	Detailed bool
}

// palette holds fill colours for token types, cycled when there are more
// types than colours.
var palette = []string{"#f4c542", "#c98b4b", "#d9773c", "#7fb7be", "#9c89b8", "#90be6d"}

// ToDOT converts a topology, and optionally a configuration laid over it, to
// Graphviz DOT format. The result can be rendered with [RenderSVG].
//
// Junctions are drawn as small points since no token may stop on them.
func ToDOT(topo *topology.Topology, c *state.Configuration, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, width=0.5, height=0.5, fixedsize=true];\n")
	buf.WriteString("  ranksep=0.3;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")

	for _, s := range topo.Slots() {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(s), strings.Join(fmtAttrs(topo, c, s, opts), ", "))
	}

	// Keep the corridor on one rank, in column order.
	buf.WriteString("\n  { rank=same;")
	for col := range topo.CorridorLength() {
		fmt.Fprintf(&buf, " %q;", nodeID(topo.Slot(col)))
	}
	buf.WriteString(" }\n\n")

	for _, e := range topo.Edges() {
		a, b := topo.Slot(e[0]), topo.Slot(e[1])
		attrs := ""
		if a.Kind != topology.Home && b.Kind != topology.Home {
			attrs = " [weight=10]"
		}
		fmt.Fprintf(&buf, "  %q -- %q%s;\n", nodeID(a), nodeID(b), attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(s topology.Slot) string {
	return fmt.Sprintf("s%d", s.Index)
}

func fmtAttrs(topo *topology.Topology, c *state.Configuration, s topology.Slot, opts Options) []string {
	if s.Kind == topology.Junction {
		attrs := []string{"shape=point", "width=0.15"}
		if opts.Detailed {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", s.String()))
		}
		return attrs
	}

	label := ""
	var attrs []string
	if c != nil {
		if ti, ok := c.Occupant(s.Index); ok {
			label = string(topo.Type(ti).Symbol)
			attrs = append(attrs, fmt.Sprintf("fillcolor=%q", palette[ti%len(palette)]))
		}
	}
	if opts.Detailed {
		if label != "" {
			label += "\n"
		}
		label += s.String()
		attrs = append(attrs, "fontsize=9")
	}
	if s.Kind == topology.Home {
		attrs = append(attrs, "shape=square")
	}
	return append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the SVG scales from its
// viewBox instead of Graphviz's point-based width and height.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
