package graph

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// wireGraph is the JSON form of a Graph.
type wireGraph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
// Nodes keep their pre-order, so output is deterministic.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGraph decodes a graph from JSON bytes and validates it.
func UnmarshalGraph(data []byte) (*Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}

// WriteGraph writes g as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	out := wireGraph{Nodes: g.nodes, Edges: g.edges}
	if out.Nodes == nil {
		out.Nodes = []Node{}
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph from r.
// Returns the validation error if the decoded data is not a well-formed tree.
func ReadGraph(r io.Reader) (*Graph, error) {
	var data wireGraph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	g := New(data.Nodes, data.Edges)
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// WriteGraphFile writes g to a JSON file with 0644 permissions.
func WriteGraphFile(g *Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteGraph(g, f)
}

// ReadGraphFile reads and validates a graph JSON file.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
