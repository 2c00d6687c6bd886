package graph

import (
	"fmt"

	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/outline"
)

// fold is the accumulator threaded through the traversal. It is passed and
// returned by value; only the returned copy is ever used again.
type fold struct {
	nodes []Node
	edges []Edge
	ids   Allocator
}

// Build flattens doc into a graph.
//
// The document itself becomes the root node (depth 0, external id "ROOT",
// titled DocName or "Untitled Document"). Every section becomes one node at
// depth parent+1 with an edge from its parent, and is emitted before its
// children, which are emitted before its later siblings.
//
// Build returns a MALFORMED_TREE error when doc is nil, a section is nil, or
// a section is reachable more than once (shared subtree or cycle). No graph
// is returned on error.
func Build(doc *outline.Document) (*Graph, error) {
	if doc == nil {
		return nil, errors.MalformedTree("document is nil")
	}

	title := doc.DocName
	if title == "" {
		title = DefaultRootTitle
	}

	var acc fold
	var rootID string
	rootID, acc.ids = acc.ids.Next()
	hasChildren := len(doc.Structure) > 0
	acc.nodes = append(acc.nodes, Node{
		ID:          rootID,
		Title:       title,
		ExternalID:  RootExternalID,
		Depth:       0,
		IsRoot:      true,
		IsLeaf:      !hasChildren,
		HasChildren: hasChildren,
	})

	seen := make(map[*outline.Section]struct{})
	for i, s := range doc.Structure {
		var err error
		acc, err = visit(acc, s, rootID, 1, seen, fmt.Sprintf("structure[%d]", i))
		if err != nil {
			return nil, err
		}
	}
	return New(acc.nodes, acc.edges), nil
}

func visit(acc fold, s *outline.Section, parentID string, depth int, seen map[*outline.Section]struct{}, path string) (fold, error) {
	if s == nil {
		return acc, errors.MalformedTree("%s: section is nil", path)
	}
	if _, dup := seen[s]; dup {
		return acc, errors.MalformedTree("%s: section %q is reachable more than once", path, s.Title)
	}
	seen[s] = struct{}{}

	var id string
	id, acc.ids = acc.ids.Next()
	hasChildren := s.HasChildren()
	acc.nodes = append(acc.nodes, Node{
		ID:          id,
		Title:       s.Title,
		Summary:     s.Summary,
		StartIndex:  s.StartIndex,
		EndIndex:    s.EndIndex,
		ExternalID:  s.NodeID,
		Depth:       depth,
		IsLeaf:      !hasChildren,
		HasChildren: hasChildren,
		HasSummary:  s.Summary != "",
	})
	acc.edges = append(acc.edges, Edge{ID: EdgeID(parentID, id), Source: parentID, Target: id})

	for i, child := range s.Nodes {
		var err error
		acc, err = visit(acc, child, id, depth+1, seen, fmt.Sprintf("%s.nodes[%d]", path, i))
		if err != nil {
			return acc, err
		}
	}
	return acc, nil
}
