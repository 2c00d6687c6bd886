package view

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/graph/graphtest"
	"github.com/matzehuels/pageviz/pkg/outline"
	"github.com/matzehuels/pageviz/pkg/palette"
	"github.com/matzehuels/pageviz/pkg/search"
	"github.com/matzehuels/pageviz/pkg/visibility"
)

func sample(t testing.TB) *graph.Graph {
	g, err := graph.Build(&outline.Document{
		DocName: "R",
		Structure: []*outline.Section{
			{Title: "A", Summary: "about A", Nodes: []*outline.Section{{Title: "A1"}, {Title: "A2"}}},
			{Title: "B"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestSizer(t *testing.T) {
	tests := []struct {
		name  string
		sizer Sizer
		node  graph.Node
		want  graph.Size
	}{
		{name: "Plain", sizer: DefaultSizer(), node: graph.Node{}, want: graph.Size{Width: 420, Height: 120}},
		{name: "Summary", sizer: DefaultSizer(), node: graph.Node{HasSummary: true}, want: graph.Size{Width: 420, Height: 160}},
		{name: "ZeroUsesDefaults", node: graph.Node{HasSummary: true}, want: graph.Size{Width: 420, Height: 120}},
		{name: "Custom", sizer: Sizer{Width: 200, BaseHeight: 50, SummaryHeight: 10}, node: graph.Node{HasSummary: true}, want: graph.Size{Width: 200, Height: 60}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sizer.Size(tt.node); got != tt.want {
				t.Errorf("Size() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProject(t *testing.T) {
	g := sample(t)

	t.Run("Everything", func(t *testing.T) {
		p := Project(g, nil, nil, nil)
		if len(p.Nodes) != 5 || len(p.Edges) != 4 {
			t.Fatalf("projection has %d nodes, %d edges", len(p.Nodes), len(p.Edges))
		}
		if p.TotalNodes != 5 || p.MaxDepth != 2 {
			t.Errorf("TotalNodes = %d, MaxDepth = %d", p.TotalNodes, p.MaxDepth)
		}
	})

	t.Run("CollapseA", func(t *testing.T) {
		collapsed := visibility.NewSet("node-1")
		hidden := visibility.Hidden(g.Adjacency(), collapsed)
		p := Project(g, hidden, nil, collapsed)

		var ids []string
		for _, n := range p.Nodes {
			ids = append(ids, n.ID)
		}
		if fmt.Sprint(ids) != "[node-0 node-1 node-4]" {
			t.Errorf("visible = %v", ids)
		}
		if len(p.Edges) != 2 {
			t.Errorf("visible edges = %+v", p.Edges)
		}
		a, _ := p.Node("node-1")
		if !a.IsCollapsed || a.HiddenCount != 2 {
			t.Errorf("A = %+v", a)
		}
	})

	t.Run("SearchHiddenMatch", func(t *testing.T) {
		collapsed := visibility.NewSet("node-1")
		hidden := visibility.Hidden(g.Adjacency(), collapsed)
		matched := search.Highlight(g.Nodes(), "a")
		p := Project(g, hidden, matched, collapsed)

		// A, A1 and A2 match; only A is visible.
		if p.MatchCount != 3 || p.VisibleMatchCount != 1 {
			t.Errorf("MatchCount = %d, VisibleMatchCount = %d", p.MatchCount, p.VisibleMatchCount)
		}
		if h := p.Highlighted(); len(h) != 1 || h[0].ID != "node-1" {
			t.Errorf("Highlighted() = %+v", h)
		}
	})

	t.Run("Colors", func(t *testing.T) {
		p := Project(g, nil, nil, nil)
		root, _ := p.Node("node-0")
		a1, _ := p.Node("node-2")
		if root.Colors != palette.ForDepth(0) || a1.Colors != palette.Leaf() {
			t.Errorf("colors: root=%v a1=%v", root.Colors.Border, a1.Colors.Border)
		}
	})

	t.Run("CollapsedLeafIgnored", func(t *testing.T) {
		p := Project(g, nil, nil, visibility.NewSet("node-4"))
		b, _ := p.Node("node-4")
		if b.IsCollapsed {
			t.Error("a leaf is never shown as collapsed")
		}
	})

	t.Run("DoesNotMutate", func(t *testing.T) {
		hidden := visibility.NewSet("node-2")
		before := g.Nodes()
		Project(g, hidden, visibility.NewSet("node-1"), nil)
		if len(hidden) != 1 || g.NodeCount() != len(before) {
			t.Error("Project modified its inputs")
		}
	})
}

func TestProjectHiddenCounts(t *testing.T) {
	g, err := graph.Build(&outline.Document{
		DocName: "R",
		Structure: []*outline.Section{
			{Title: "A", Nodes: []*outline.Section{
				{Title: "A1", Nodes: []*outline.Section{{Title: "A1a"}, {Title: "A1b"}}},
				{Title: "A2", Nodes: []*outline.Section{{Title: "A2a"}}},
			}},
			{Title: "B", Nodes: []*outline.Section{{Title: "B1"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		collapsed []string
		want      map[string]int
	}{
		{name: "Outer", collapsed: []string{"node-1"}, want: map[string]int{"node-1": 5}},
		{name: "NestedInsideOuter", collapsed: []string{"node-1", "node-2", "node-5"}, want: map[string]int{"node-1": 5}},
		{name: "Siblings", collapsed: []string{"node-2", "node-5", "node-7"}, want: map[string]int{"node-2": 2, "node-5": 1, "node-7": 1}},
		{name: "Root", collapsed: []string{"node-0"}, want: map[string]int{"node-0": 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collapsed := visibility.NewSet(tt.collapsed...)
			p := Project(g, visibility.Hidden(g.Adjacency(), collapsed), nil, collapsed)
			got := make(map[string]int)
			for _, n := range p.Nodes {
				if n.IsCollapsed {
					got[n.ID] = n.HiddenCount
				}
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("hidden counts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectBounds(t *testing.T) {
	g := sample(t).WithGeometry(
		map[string]graph.Size{"node-0": {Width: 420, Height: 120}, "node-4": {Width: 420, Height: 120}},
		map[string]graph.Point{"node-0": {X: 40, Y: 40}, "node-4": {X: 1000, Y: 260}},
	)
	p := Project(g, nil, nil, nil)
	if p.Width != 1420 || p.Height != 380 {
		t.Errorf("bounds = %v x %v", p.Width, p.Height)
	}
}

func TestProjectProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g, err := graph.Build(graphtest.Document(t))
		if err != nil {
			t.Fatal(err)
		}
		nodes := g.Nodes()

		var state visibility.State
		for i := range rapid.IntRange(0, 5).Draw(t, "toggles") {
			state.Toggle(g, nodes[rapid.IntRange(0, len(nodes)-1).Draw(t, fmt.Sprintf("t%d", i))].ID)
		}
		hidden := state.Hidden(g)
		matched := search.Highlight(nodes, graphtest.Query(t))
		p := Project(g, hidden, matched, state.Collapsed())

		visible := make(map[string]bool, len(p.Nodes))
		for _, n := range p.Nodes {
			visible[n.ID] = true
			if n.Colors != palette.ForNode(n.Depth, n.IsLeaf) {
				t.Fatalf("node %s has the wrong colors", n.ID)
			}
		}
		if len(p.Nodes)+len(hidden) != len(nodes) {
			t.Fatalf("visible %d + hidden %d != %d", len(p.Nodes), len(hidden), len(nodes))
		}
		for _, e := range p.Edges {
			if !visible[e.Source] || !visible[e.Target] {
				t.Fatalf("dangling edge %s", e.ID)
			}
		}
		// Every edge between two visible nodes survives.
		want := 0
		for _, e := range g.Edges() {
			if visible[e.Source] && visible[e.Target] {
				want++
			}
		}
		if want != len(p.Edges) {
			t.Fatalf("edges = %d, want %d", len(p.Edges), want)
		}
		if p.VisibleMatchCount != search.VisibleMatchCount(matched, hidden) {
			t.Fatal("VisibleMatchCount disagrees with search")
		}
		// A collapsed card counts every descendant, hidden or not.
		for _, n := range p.Nodes {
			if !n.IsCollapsed {
				continue
			}
			if want := len(visibility.Hidden(g.Adjacency(), visibility.NewSet(n.ID))); n.HiddenCount != want {
				t.Fatalf("node %s HiddenCount = %d, want %d", n.ID, n.HiddenCount, want)
			}
		}
	})
}
