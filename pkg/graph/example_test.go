package graph_test

import (
	"fmt"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/outline"
)

func ExampleBuild() {
	doc, err := outline.Parse([]byte(`{
		"doc_name": "Report",
		"structure": [
			{"title": "Intro", "nodes": [{"title": "Scope"}]},
			{"title": "Results", "summary": "numbers"}
		]
	}`))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	g, err := graph.Build(doc)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, n := range g.Nodes() {
		fmt.Printf("%s depth=%d leaf=%v %s\n", n.ID, n.Depth, n.IsLeaf, n.Title)
	}
	for _, e := range g.Edges() {
		fmt.Println(e.ID)
	}
	// Output:
	// node-0 depth=0 leaf=false Report
	// node-1 depth=1 leaf=false Intro
	// node-2 depth=2 leaf=true Scope
	// node-3 depth=1 leaf=true Results
	// edge-node-0-node-1
	// edge-node-1-node-2
	// edge-node-0-node-3
}

func ExampleGraph_Children() {
	doc := &outline.Document{
		DocName: "Book",
		Structure: []*outline.Section{
			{Title: "Part I", Nodes: []*outline.Section{{Title: "Ch 1"}, {Title: "Ch 2"}}},
		},
	}
	g, _ := graph.Build(doc)

	fmt.Println(g.Children("node-1"))
	fmt.Println(g.MaxDepth())
	// Output:
	// [node-2 node-3]
	// 2
}
