// Package svg paints a view projection as an SVG diagram.
//
// Each visible node is drawn as a rounded card filled with its depth
// gradient, showing the title, a depth badge, the page span and, for
// collapsed nodes, the number of hidden descendants. Parent→child edges are
// drawn as right-angled connectors from the bottom of the parent card to the
// top of the child card. Highlighted search matches get a thick outline.
package svg

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	svgo "github.com/ajstarks/svgo"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/palette"
	"github.com/matzehuels/pageviz/pkg/view"
)

const (
	highlightStroke = "#facc15"
	edgeStroke      = "#94a3b8"
	background      = "#0f172a"
	titleSize       = 18
	metaSize        = 13
	padding         = 16
)

// Options controls SVG output.
type Options struct {
	// Background fills the canvas. Empty means the default dark background;
	// "none" leaves it transparent.
	Background string
	// ShowSummaries prints the first line of each summary on its card.
	ShowSummaries bool
}

// Render paints p and returns the SVG document.
func Render(p view.Projection, opts Options) []byte {
	var buf bytes.Buffer
	width, height := canvasSize(p)

	canvas := svgo.New(&buf)
	canvas.Start(width, height, `font-family="Inter, Helvetica, Arial, sans-serif"`)
	canvas.Title(title(p))

	writeGradients(canvas)

	switch bg := opts.Background; bg {
	case "none":
	case "":
		canvas.Rect(0, 0, width, height, "fill:"+background)
	default:
		canvas.Rect(0, 0, width, height, "fill:"+bg)
	}

	canvas.Gid("edges")
	byID := make(map[string]view.Node, len(p.Nodes))
	for _, n := range p.Nodes {
		byID[n.ID] = n
	}
	for _, e := range p.Edges {
		src, okS := byID[e.Source]
		dst, okT := byID[e.Target]
		if !okS || !okT {
			continue
		}
		canvas.Path(connector(src.Node, dst.Node), "fill:none;stroke:"+edgeStroke+";stroke-width:2;stroke-opacity:0.6")
	}
	canvas.Gend()

	canvas.Gid("nodes")
	for _, n := range p.Nodes {
		drawCard(canvas, n, opts)
	}
	canvas.Gend()

	canvas.End()
	return buf.Bytes()
}

func canvasSize(p view.Projection) (int, int) {
	if len(p.Nodes) == 0 {
		return 1, 1
	}
	w, h := p.Width, p.Height
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range p.Nodes {
		w = max(w, n.Position.X+n.Size.Width)
		h = max(h, n.Position.Y+n.Size.Height)
		minX = min(minX, n.Position.X)
		minY = min(minY, n.Position.Y)
	}
	// Mirror the layout margin on the right and bottom.
	return px(w + max(minX, 0)), px(h + max(minY, 0))
}

func title(p view.Projection) string {
	for _, n := range p.Nodes {
		if n.IsRoot {
			return n.Title
		}
	}
	return "pageviz"
}

func writeGradients(canvas *svgo.SVG) {
	canvas.Def()
	for i, c := range palette.Legend() {
		canvas.LinearGradient(gradientID(i), 0, 0, 100, 100, []svgo.Offcolor{
			{Offset: 0, Color: c.GradientFrom, Opacity: 1},
			{Offset: 100, Color: c.GradientTo, Opacity: 1},
		})
	}
	canvas.DefEnd()
}

func gradientID(i int) string { return fmt.Sprintf("depth-%d", i) }

// gradientFor returns the gradient matching the node's palette entry.
func gradientFor(n view.Node) string {
	for i, c := range palette.Legend() {
		if c == n.Colors {
			return gradientID(i)
		}
	}
	return gradientID(palette.Len - 1)
}

func drawCard(canvas *svgo.SVG, n view.Node, opts Options) {
	x, y := px(n.Position.X), px(n.Position.Y)
	w, h := px(n.Size.Width), px(n.Size.Height)

	stroke, strokeWidth := n.Colors.Border, 2
	if n.IsHighlighted {
		stroke, strokeWidth = highlightStroke, 5
	}

	canvas.Gid(n.ID)
	canvas.Title(n.Title)
	canvas.Roundrect(x, y, w, h, 14, 14,
		fmt.Sprintf("fill:url(#%s);stroke:%s;stroke-width:%d", gradientFor(n), stroke, strokeWidth))

	textStyle := fmt.Sprintf("fill:%s;font-size:%dpx;font-weight:600", n.Colors.Text, titleSize)
	canvas.Text(x+padding, y+padding+titleSize, truncate(n.Title, charsFor(w, titleSize)), textStyle)

	metaStyle := fmt.Sprintf("fill:%s;font-size:%dpx", n.Colors.Meta, metaSize)
	meta := []string{depthLabel(n.Node)}
	if span := pageSpan(n.Node); span != "" {
		meta = append(meta, span)
	}
	if n.ExternalID != "" && !n.IsRoot {
		meta = append(meta, "#"+n.ExternalID)
	}
	canvas.Text(x+padding, y+padding+titleSize+metaSize+12, strings.Join(meta, "  ·  "), metaStyle)

	if opts.ShowSummaries && n.HasSummary {
		line, _, _ := strings.Cut(n.Summary, "\n")
		canvas.Text(x+padding, y+padding+titleSize+2*metaSize+28, truncate(line, charsFor(w, metaSize)), metaStyle)
	}

	if n.IsCollapsed {
		badge := fmt.Sprintf("+%d", n.HiddenCount)
		canvas.Roundrect(x+w-padding-48, y+h-padding-24, 48, 24, 12, 12, "fill:"+n.Colors.Badge)
		canvas.Text(x+w-padding-24, y+h-padding-7, badge,
			fmt.Sprintf("fill:%s;font-size:%dpx;text-anchor:middle;font-weight:600", n.Colors.Text, metaSize))
	}
	canvas.Gend()
}

// connector draws an orthogonal path from the bottom center of parent to
// the top center of child.
func connector(parent, child graph.Node) string {
	x1 := parent.Position.X + parent.Size.Width/2
	y1 := parent.Position.Y + parent.Size.Height
	x2 := child.Position.X + child.Size.Width/2
	y2 := child.Position.Y
	mid := (y1 + y2) / 2
	return fmt.Sprintf("M%d %d V%d H%d V%d", px(x1), px(y1), px(mid), px(x2), px(y2))
}

func depthLabel(n graph.Node) string {
	if n.IsRoot {
		return "Document"
	}
	return fmt.Sprintf("Level %d", n.Depth)
}

// pageSpan formats the character span of a section, if known.
func pageSpan(n graph.Node) string {
	switch {
	case n.StartIndex != nil && n.EndIndex != nil:
		return fmt.Sprintf("%d-%d", *n.StartIndex, *n.EndIndex)
	case n.StartIndex != nil:
		return fmt.Sprintf("from %d", *n.StartIndex)
	case n.EndIndex != nil:
		return fmt.Sprintf("to %d", *n.EndIndex)
	}
	return ""
}

// charsFor estimates how many characters of the given font size fit on a
// card of width w.
func charsFor(w, fontSize int) int {
	return max(4, (w-2*padding)*2/fontSize)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func px(v float64) int { return int(math.Round(v)) }
