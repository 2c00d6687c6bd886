package outline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/pageviz/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr errors.Code
		wantTop int
		check   func(t *testing.T, d *Document)
	}{
		{
			name:    "Simple",
			input:   `{"doc_name":"R","structure":[{"title":"A","nodes":[{"title":"A1"},{"title":"A2"}]},{"title":"B"}]}`,
			wantTop: 2,
			check: func(t *testing.T, d *Document) {
				if d.DocName != "R" {
					t.Errorf("DocName = %q, want R", d.DocName)
				}
				if got := len(d.Structure[0].Nodes); got != 2 {
					t.Errorf("A children = %d, want 2", got)
				}
				if d.Structure[1].HasChildren() {
					t.Error("B should be a leaf")
				}
			},
		},
		{
			name:    "NullableFields",
			input:   `{"doc_name":"R","structure":[{"title":"A","summary":null,"start_index":3,"end_index":null,"node_id":"0001"}]}`,
			wantTop: 1,
			check: func(t *testing.T, d *Document) {
				s := d.Structure[0]
				if s.Summary != "" {
					t.Errorf("Summary = %q, want empty", s.Summary)
				}
				if s.StartIndex == nil || *s.StartIndex != 3 {
					t.Errorf("StartIndex = %v, want 3", s.StartIndex)
				}
				if s.EndIndex != nil {
					t.Errorf("EndIndex = %v, want nil", *s.EndIndex)
				}
				if s.NodeID != "0001" {
					t.Errorf("NodeID = %q, want 0001", s.NodeID)
				}
			},
		},
		{
			name:    "NoStructure",
			input:   `{"doc_name":"Empty"}`,
			wantTop: 0,
		},
		{
			name:    "EmptyTitleAllowed",
			input:   `{"structure":[{"title":""}]}`,
			wantTop: 1,
		},
		{
			name:    "MissingTitle",
			input:   `{"structure":[{"summary":"x"}]}`,
			wantErr: errors.ErrCodeMalformedTree,
		},
		{
			name:    "NullNestedTitle",
			input:   `{"structure":[{"title":"A","nodes":[{"title":null}]}]}`,
			wantErr: errors.ErrCodeMalformedTree,
		},
		{
			name:    "InvalidJSON",
			input:   `{"structure":[`,
			wantErr: errors.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse([]byte(tt.input))
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Parse() error = %v, want code %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := len(d.Structure); got != tt.wantTop {
				t.Errorf("top-level sections = %d, want %d", got, tt.wantTop)
			}
			if tt.check != nil {
				tt.check(t, d)
			}
		})
	}
}

func TestParseErrorNamesPath(t *testing.T) {
	_, err := Parse([]byte(`{"structure":[{"title":"A"},{"title":"B","nodes":[{"title":"B1"},{}]}]}`))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "structure[1].nodes[1]") {
		t.Errorf("error %q should name the offending section", err)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(path, []byte(`{"doc_name":"X","structure":[{"title":"One"}]}`), 0644); err != nil {
		t.Fatal(err)
	}

	d, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if d.Structure[0].Title != "One" {
		t.Errorf("Title = %q, want One", d.Structure[0].Title)
	}

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	start := 10
	d := &Document{
		DocName: "R",
		Structure: []*Section{
			{Title: "A", StartIndex: &start, Nodes: []*Section{{Title: "A1"}}},
		},
	}
	data, err := Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if back.Structure[0].Nodes[0].Title != "A1" || *back.Structure[0].StartIndex != 10 {
		t.Errorf("round trip lost data: %s", data)
	}
}
