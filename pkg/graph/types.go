package graph

// RootExternalID is the external id given to the synthetic document root.
const RootExternalID = "ROOT"

// DefaultRootTitle is used when the document has no name.
const DefaultRootTitle = "Untitled Document"

// Size is the bounding box of a node card.
type Size struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Point is a top-left corner in diagram coordinates (y grows downward).
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is one section of the outline, or the synthetic document root.
type Node struct {
	ID         string `json:"id" bson:"id"`
	Title      string `json:"title" bson:"title"`
	Summary    string `json:"summary,omitempty" bson:"summary,omitempty"`
	StartIndex *int   `json:"start_index,omitempty" bson:"start_index,omitempty"`
	EndIndex   *int   `json:"end_index,omitempty" bson:"end_index,omitempty"`
	ExternalID string `json:"external_id,omitempty" bson:"external_id,omitempty"` // node_id from the source outline

	Depth       int  `json:"depth" bson:"depth"` // 0 for the root
	IsRoot      bool `json:"is_root,omitempty" bson:"is_root,omitempty"`
	IsLeaf      bool `json:"is_leaf,omitempty" bson:"is_leaf,omitempty"`
	HasChildren bool `json:"has_children,omitempty" bson:"has_children,omitempty"`
	HasSummary  bool `json:"has_summary,omitempty" bson:"has_summary,omitempty"`

	// Geometry is zero until attached with Graph.WithGeometry.
	Size     Size  `json:"size" bson:"size"`
	Position Point `json:"position" bson:"position"`
}

// Edge is a directed parent→child link.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}
