package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/graph"
)

// pointsPerInch converts between Graphviz inches and layout points.
const pointsPerInch = 72.0

// formatPlain is Graphviz's line-oriented "plain" output.
const formatPlain graphviz.Format = "plain"

// Graphviz lays out requests with the Graphviz dot algorithm.
type Graphviz struct{}

// NewGraphviz returns the Graphviz dot engine.
func NewGraphviz() *Graphviz { return &Graphviz{} }

// Name implements [Engine].
func (*Graphviz) Name() string { return EngineGraphviz }

// Layout implements [Engine]. It converts req to DOT, runs dot, and reads the
// node centers back from the plain output. Graphviz measures in inches with
// the y axis pointing up; the result is converted to top-left corners in
// points with y pointing down.
func (*Graphviz) Layout(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	if len(req.Nodes) == 0 {
		return Result{Positions: map[string]graph.Point{}, Width: 2 * req.MarginX, Height: 2 * req.MarginY}, nil
	}

	dot, aliases := ToDOT(req)
	plain, err := render(ctx, dot)
	if err != nil {
		return Result{}, err
	}
	centers, height, err := parsePlain(plain)
	if err != nil {
		return Result{}, err
	}

	res := Result{Positions: make(map[string]graph.Point, len(req.Nodes))}
	minX, minY := 0.0, 0.0
	for i, n := range req.Nodes {
		c, ok := centers[aliases[i]]
		if !ok {
			return Result{}, errors.New(errors.ErrCodeInternal, "graphviz output is missing node %q", n.ID)
		}
		p := graph.Point{
			X: c.X*pointsPerInch - n.Width/2,
			Y: (height-c.Y)*pointsPerInch - n.Height/2,
		}
		if i == 0 || p.X < minX {
			minX = p.X
		}
		if i == 0 || p.Y < minY {
			minY = p.Y
		}
		res.Positions[n.ID] = p
	}

	// Shift so the drawing starts at the margins.
	for _, n := range req.Nodes {
		p := res.Positions[n.ID]
		p.X += req.MarginX - minX
		p.Y += req.MarginY - minY
		res.Positions[n.ID] = p
		res.Width = max(res.Width, p.X+n.Width)
		res.Height = max(res.Height, p.Y+n.Height)
	}
	res.Width += req.MarginX
	res.Height += req.MarginY
	return res, nil
}

// ToDOT converts a request to a DOT digraph. Node ids are replaced with
// aliases (n0, n1, ...) so arbitrary ids need no quoting in dot's output;
// aliases[i] is the alias of req.Nodes[i].
func ToDOT(req Request) (dot string, aliases []string) {
	aliases = make([]string, len(req.Nodes))
	byID := make(map[string]string, len(req.Nodes))

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  ordering=out;\n")
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(req.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(req.NodeSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for i, n := range req.Nodes {
		alias := "n" + strconv.Itoa(i)
		aliases[i] = alias
		byID[n.ID] = alias
		fmt.Fprintf(&buf, "  %s [width=%s, height=%s, tooltip=%q];\n", alias, inches(n.Width), inches(n.Height), n.ID)
	}

	buf.WriteString("\n")
	for _, e := range req.Edges {
		fmt.Fprintf(&buf, "  %s -> %s;\n", byID[e.Source], byID[e.Target])
	}
	buf.WriteString("}\n")
	return buf.String(), aliases
}

func inches(points float64) string {
	return strconv.FormatFloat(points/pointsPerInch, 'f', 4, 64)
}

func render(ctx context.Context, dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, formatPlain, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// parsePlain extracts node centers (in inches) and the drawing height from
// dot's plain output:
//
//	graph scale width height
//	node name x y width height label style shape color fillcolor
//	edge tail head n x1 y1 ... label xl yl style color
//	stop
func parsePlain(data []byte) (map[string]graph.Point, float64, error) {
	centers := make(map[string]graph.Point)
	var height float64

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, 0, errors.New(errors.ErrCodeInvalidFormat, "short graph line in plain output")
			}
			h, err := strconv.ParseFloat(fields[3], 64)
			if err != nil {
				return nil, 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "graph height")
			}
			height = h
		case "node":
			if len(fields) < 4 {
				return nil, 0, errors.New(errors.ErrCodeInvalidFormat, "short node line in plain output")
			}
			x, errX := strconv.ParseFloat(fields[2], 64)
			y, errY := strconv.ParseFloat(fields[3], 64)
			if errX != nil || errY != nil {
				return nil, 0, errors.New(errors.ErrCodeInvalidFormat, "node %s: bad coordinates", fields[1])
			}
			centers[fields[1]] = graph.Point{X: x, Y: y}
		case "stop":
			return centers, height, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return centers, height, nil
}
