package layout

import (
	"context"

	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/graph"
)

// Tidy is the built-in layered tree engine.
//
// Ranks are assigned by longest path from a source, so every child sits one
// rank below its parent. Within a rank, boxes are vertically centered on the
// tallest box of that rank. Horizontally each subtree occupies its own band,
// wide enough for its root box or for its children side by side, whichever is
// wider; a parent is centered over the span of its children.
//
// Several sources (a forest) are placed side by side in request order.
type Tidy struct{}

// NewTidy returns the tidy tree engine.
func NewTidy() *Tidy { return &Tidy{} }

// Name implements [Engine].
func (*Tidy) Name() string { return EngineTidy }

// tidyNode is the per-node working state of one layout call.
type tidyNode struct {
	box      NodeBox
	children []int
	parents  int
	rank     int
	band     float64 // width of the subtree band
}

// Layout implements [Engine].
func (*Tidy) Layout(ctx context.Context, req Request) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	nodes := make([]tidyNode, len(req.Nodes))
	index := make(map[string]int, len(req.Nodes))
	for i, n := range req.Nodes {
		nodes[i].box = n
		index[n.ID] = i
	}
	for _, e := range req.Edges {
		src, dst := index[e.Source], index[e.Target]
		nodes[src].children = append(nodes[src].children, dst)
		nodes[dst].parents++
	}

	var sources []int
	for i := range nodes {
		switch nodes[i].parents {
		case 0:
			sources = append(sources, i)
		case 1:
		default:
			return Result{}, errors.New(errors.ErrCodeInvalidInput, "node %q has %d parents; tidy layout needs a tree", nodes[i].box.ID, nodes[i].parents)
		}
	}

	rankHeights, err := assignRanks(nodes, sources)
	if err != nil {
		return Result{}, err
	}

	// Top of every rank. Strictly increasing as long as heights are positive.
	rankTop := make([]float64, len(rankHeights))
	y := req.MarginY
	for r, h := range rankHeights {
		rankTop[r] = y
		y += h + req.RankSep
	}

	for _, s := range sources {
		measure(nodes, s, req.NodeSep)
	}

	res := Result{Positions: make(map[string]graph.Point, len(nodes))}
	left := req.MarginX
	for i, s := range sources {
		if i > 0 {
			left += req.NodeSep
		}
		place(nodes, s, left, rankTop, rankHeights, req.NodeSep, res.Positions)
		left += nodes[s].band
	}

	res.Width, res.Height = req.MarginX, req.MarginY
	for _, n := range nodes {
		p := res.Positions[n.box.ID]
		res.Width = max(res.Width, p.X+n.box.Width)
		res.Height = max(res.Height, p.Y+n.box.Height)
	}
	res.Width += req.MarginX
	res.Height += req.MarginY
	return res, nil
}

// assignRanks performs a breadth-first walk from the sources, setting each
// node's rank to its depth, and returns the tallest box per rank. A node left
// unvisited is part of a cycle.
func assignRanks(nodes []tidyNode, sources []int) ([]float64, error) {
	visited := make([]bool, len(nodes))
	queue := make([]int, 0, len(nodes))
	for _, s := range sources {
		visited[s] = true
		queue = append(queue, s)
	}

	var heights []float64
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		r := nodes[cur].rank
		if r == len(heights) {
			heights = append(heights, 0)
		}
		heights[r] = max(heights[r], nodes[cur].box.Height)

		for _, c := range nodes[cur].children {
			if visited[c] {
				continue
			}
			visited[c] = true
			nodes[c].rank = r + 1
			queue = append(queue, c)
		}
	}

	for i, ok := range visited {
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %q is on a cycle", nodes[i].box.ID)
		}
	}
	return heights, nil
}

// measure computes the band width of every subtree below i (post-order).
func measure(nodes []tidyNode, i int, sep float64) float64 {
	n := &nodes[i]
	span := 0.0
	for k, c := range n.children {
		if k > 0 {
			span += sep
		}
		span += measure(nodes, c, sep)
	}
	n.band = max(n.box.Width, span)
	return n.band
}

// place assigns positions to the subtree below i, whose band starts at left.
func place(nodes []tidyNode, i int, left float64, rankTop, rankHeights []float64, sep float64, out map[string]graph.Point) {
	n := nodes[i]

	span := 0.0
	for k, c := range n.children {
		if k > 0 {
			span += sep
		}
		span += nodes[c].band
	}

	x := left + (n.band-n.box.Width)/2
	if len(n.children) > 0 {
		cursor := left + (n.band-span)/2
		for k, c := range n.children {
			if k > 0 {
				cursor += sep
			}
			place(nodes, c, cursor, rankTop, rankHeights, sep, out)
			cursor += nodes[c].band
		}
		// Center over the first and last child boxes, clamped to the band.
		first := out[nodes[n.children[0]].box.ID]
		lastNode := nodes[n.children[len(n.children)-1]]
		last := out[lastNode.box.ID]
		center := (first.X + last.X + lastNode.box.Width) / 2
		x = min(max(center-n.box.Width/2, left), left+n.band-n.box.Width)
	}

	y := rankTop[n.rank] + (rankHeights[n.rank]-n.box.Height)/2
	out[n.box.ID] = graph.Point{X: x, Y: y}
}
