// Package graph turns a nested document outline into a flat parent/child graph.
//
// # Overview
//
// pageviz draws an outline as a node-and-edge diagram. This package owns the
// step that flattens the nested [outline.Document] into a list of [Node]s
// (one per section plus a synthetic root for the document itself) and a list
// of parent→child [Edge]s. The derived graph is always a tree isomorphic to
// the input; it is never a general DAG.
//
// # Building
//
// [Build] performs a pre-order traversal. Nodes appear in document order,
// which display surfaces rely on (minimap ordering, tab order):
//
//	doc, _ := outline.ReadFile("report.json")
//	g, err := graph.Build(doc)
//	if errors.Is(err, errors.ErrCodeMalformedTree) {
//	    // nil section, missing title, or a section reachable twice
//	}
//
// Identifiers are issued by an [Allocator] as node-0, node-1, ... in traversal
// order. Edge identifiers are derived from their endpoints
// (edge-node-0-node-1). Both are unique for the lifetime of one build.
//
// # Immutability
//
// A [Graph] is immutable once returned. Accessors return copies. Geometry
// (sizes and positions computed by a layout engine) is attached with
// [Graph.WithGeometry], which returns a new graph and leaves the receiver
// untouched. View state such as collapsed or highlighted nodes lives outside
// the graph entirely.
//
// # Serialization
//
// [MarshalGraph] and [UnmarshalGraph] provide a JSON wire format used for
// caching positioned graphs and for exporting them:
//
//	{
//	  "nodes": [{"id": "node-0", "title": "Report", "depth": 0, "is_root": true, ...}],
//	  "edges": [{"id": "edge-node-0-node-1", "source": "node-0", "target": "node-1"}]
//	}
//
// # Concurrency
//
// A built graph is safe for concurrent reads.
package graph
