package pipeline

import (
	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/outline"
)

// Build decodes an outline document and flattens it into a graph.
//
// Invalid JSON is reported as INVALID_FORMAT; structural problems (missing
// title, shared or cyclic sections) as MALFORMED_TREE.
func Build(data []byte) (*graph.Graph, error) {
	doc, err := outline.Parse(data)
	if err != nil {
		return nil, err
	}
	return graph.Build(doc)
}
