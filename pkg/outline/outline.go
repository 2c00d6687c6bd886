// Package outline defines the nested document outline that pageviz visualizes.
//
// An outline is the "PageIndex" JSON structure: a document name plus an ordered
// list of sections, each of which may carry a summary, character offsets into
// the source text, an external node id and further nested sections.
//
//	{
//	  "doc_name": "Annual Report",
//	  "structure": [
//	    {"title": "Introduction", "start_index": 0, "end_index": 812,
//	     "nodes": [{"title": "Scope"}, {"title": "Method"}]},
//	    {"title": "Results"}
//	  ]
//	}
//
// The types in this package are read-only input. Decoding rejects sections
// with a null or missing title as a malformed tree; structural checks that
// need pointer identity (shared or cyclic sections) happen in the graph
// builder.
package outline

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/matzehuels/pageviz/pkg/errors"
)

// Document is the root of a decoded outline.
type Document struct {
	DocName   string     `json:"doc_name"`
	Structure []*Section `json:"structure"`
}

// Section is one titled node of the outline.
// Nil StartIndex/EndIndex mean the offsets are unknown.
type Section struct {
	Title      string     `json:"title"`
	Summary    string     `json:"summary,omitempty"`
	StartIndex *int       `json:"start_index,omitempty"`
	EndIndex   *int       `json:"end_index,omitempty"`
	NodeID     string     `json:"node_id,omitempty"`
	Nodes      []*Section `json:"nodes,omitempty"`
}

// HasChildren reports whether the section has nested sections.
func (s *Section) HasChildren() bool { return len(s.Nodes) > 0 }

// wireSection mirrors Section with nullable fields so that a null or
// missing title can be told apart from an empty one.
type wireSection struct {
	Title      *string       `json:"title"`
	Summary    *string       `json:"summary"`
	StartIndex *int          `json:"start_index"`
	EndIndex   *int          `json:"end_index"`
	NodeID     *string       `json:"node_id"`
	Nodes      []wireSection `json:"nodes"`
}

type wireDocument struct {
	DocName   string        `json:"doc_name"`
	Structure []wireSection `json:"structure"`
}

// Parse decodes an outline from JSON bytes.
// Returns an INVALID_FORMAT error for invalid JSON and a MALFORMED_TREE error
// when a section has no title.
func Parse(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// Read decodes an outline from r.
func Read(r io.Reader) (*Document, error) {
	var wd wireDocument
	if err := json.NewDecoder(r).Decode(&wd); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode outline")
	}

	doc := &Document{DocName: wd.DocName}
	if len(wd.Structure) > 0 {
		doc.Structure = make([]*Section, len(wd.Structure))
	}
	for i := range wd.Structure {
		s, err := fromWire(&wd.Structure[i], fmt.Sprintf("structure[%d]", i))
		if err != nil {
			return nil, err
		}
		doc.Structure[i] = s
	}
	return doc, nil
}

// ReadFile reads and decodes an outline file.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// Marshal encodes a document back to its JSON wire form.
func Marshal(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func fromWire(w *wireSection, path string) (*Section, error) {
	if w.Title == nil {
		return nil, errors.MalformedTree("%s: title is required", path)
	}
	s := &Section{
		Title:      *w.Title,
		StartIndex: w.StartIndex,
		EndIndex:   w.EndIndex,
	}
	if w.Summary != nil {
		s.Summary = *w.Summary
	}
	if w.NodeID != nil {
		s.NodeID = *w.NodeID
	}
	if len(w.Nodes) > 0 {
		s.Nodes = make([]*Section, len(w.Nodes))
	}
	for i := range w.Nodes {
		child, err := fromWire(&w.Nodes[i], fmt.Sprintf("%s.nodes[%d]", path, i))
		if err != nil {
			return nil, err
		}
		s.Nodes[i] = child
	}
	return s, nil
}
