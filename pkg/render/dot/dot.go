// Package dot exports a view projection as a Graphviz DOT document and
// renders it to SVG with the embedded Graphviz engine.
//
// Unlike the card painter in package svg, Graphviz lays the diagram out on
// its own; positions computed by pageviz are not carried over. The DOT
// output is meant for users who want to post-process the diagram with their
// own Graphviz tooling.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pageviz/pkg/render"
	"github.com/matzehuels/pageviz/pkg/view"
)

// Options configures DOT export.
type Options struct {
	// Detailed adds depth, page span and hidden counts to node labels.
	// When false, only the title is shown.
	Detailed bool
}

// ToDOT converts a projection to Graphviz DOT format.
//
// Nodes are filled with their palette color. Search matches get a thick
// outline and collapsed nodes a dashed one.
func ToDOT(p view.Projection, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph outline {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, fontcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#94a3b8\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range p.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, fmtLabel(n, opts.Detailed)), ", "))
	}

	buf.WriteString("\n")
	for _, e := range p.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n view.Node, detailed bool) string {
	if !detailed {
		return n.Title
	}

	parts := []string{fmt.Sprintf("depth: %d", n.Depth)}
	if n.StartIndex != nil && n.EndIndex != nil {
		parts = append(parts, fmt.Sprintf("pages: %d-%d", *n.StartIndex, *n.EndIndex))
	}
	if n.IsCollapsed {
		parts = append(parts, fmt.Sprintf("hidden: %d", n.HiddenCount))
	}
	return n.Title + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n view.Node, label string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", n.Colors.Fill()),
		fmt.Sprintf("color=%q", n.Colors.Border),
	}
	if n.IsCollapsed {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	}
	if n.IsHighlighted {
		attrs = append(attrs, "penwidth=4", "color=\"#facc15\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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

// normalizeViewBox replaces the Graphviz root element, which sizes the
// drawing in points, with one that scales to its container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNGContext(ctx, svg, scale)
}
