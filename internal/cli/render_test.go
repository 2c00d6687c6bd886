package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/pageviz/pkg/config"
	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/outline"
	"github.com/matzehuels/pageviz/pkg/pipeline"
	"github.com/matzehuels/pageviz/pkg/search"
)

const sampleOutline = `{"doc_name":"Report","structure":[
	{"title":"Intro","node_id":"0001","nodes":[{"title":"Scope"},{"title":"Intro to methods"}]},
	{"title":"Results"}
]}`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, []byte(sampleOutline), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testCLI() *CLI {
	c := New(io.Discard, LogInfo)
	c.stdout = io.Discard
	c.cfg = config.Default()
	c.cfg.Cache.Backend = config.CacheNone
	return c
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,dot,json", []string{"svg", "dot", "json"}},
		{"spaces and empties", " png , ,pdf", []string{"png", "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseFormats(tt.input); !slices.Equal(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid dot.svg", []string{"dot.svg"}, false},
		{"valid multiple", []string{"svg", "pdf", "png", "yaml", "graph"}, false},
		{"invalid format", []string{"invalid"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "docs/report.json", "docs/report"},
		{"", "-", "outline"},
		{"out.svg", "report.json", "out"},
		{"out.dot.svg", "report.json", "out"},
		{"out.dot", "report.json", "out"},
		{"out", "report.json", "out"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "dot": []byte("digraph {}")}

	written, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   []string{"svg", "dot"},
		input:     filepath.Join(dir, "report.json"),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "report.svg"), filepath.Join(dir, "report.dot")}
	if !slices.Equal(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}

	exact := filepath.Join(dir, "diagram")
	written, err = writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   []string{"svg"},
		input:     "report.json",
		output:    exact,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(written) != 1 || written[0] != exact {
		t.Errorf("single format written = %v, want %q", written, exact)
	}
	if data, _ := os.ReadFile(exact); string(data) != "<svg/>" {
		t.Errorf("%s = %q", exact, data)
	}
}

func TestRunRender(t *testing.T) {
	input := writeSample(t)
	c := testCLI()

	opts := c.pipelineOptions(input)
	opts.Formats = []string{"json", "dot"}
	opts.Collapse = []string{"node-1"}
	opts.Query = "intro"

	var out bytes.Buffer
	c.stdout = &out
	if err := c.runRender(context.Background(), input, opts, renderFlags{noCache: true}); err != nil {
		t.Fatalf("runRender: %v", err)
	}
	for _, want := range []string{"Rendered 3 of 5 nodes", "2 matches for \"intro\"", "3 visible", "layout computed"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}

	base := strings.TrimSuffix(input, ".json")
	data, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	// Collapsing Intro leaves the root, Intro and Results.
	if !strings.Contains(string(data), `"total_nodes":5`) && !strings.Contains(string(data), `"total_nodes": 5`) {
		t.Errorf("projection missing total_nodes: %s", data)
	}
	if strings.Contains(string(data), "Scope") {
		t.Errorf("collapsed child rendered: %s", data)
	}
	if _, err := os.Stat(base + ".dot"); err != nil {
		t.Errorf("dot artifact: %v", err)
	}
}

func TestRunRenderRejectsMalformed(t *testing.T) {
	input := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(input, []byte(`{"structure":[{"title":`), 0o644); err != nil {
		t.Fatal(err)
	}
	c := testCLI()
	opts := c.pipelineOptions(input)
	if err := c.runRender(context.Background(), input, opts, renderFlags{noCache: true}); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestRunBuild(t *testing.T) {
	input := writeSample(t)
	out := filepath.Join(t.TempDir(), "report.graph.json")
	c := testCLI()

	if err := c.runBuild(context.Background(), input, "", out, true); err != nil {
		t.Fatalf("runBuild: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.UnmarshalGraph(data)
	if err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 5 || g.EdgeCount() != 4 {
		t.Errorf("graph = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
}

func TestSearchHits(t *testing.T) {
	doc, err := outline.Parse([]byte(sampleOutline))
	if err != nil {
		t.Fatal(err)
	}
	g, err := graph.Build(doc)
	if err != nil {
		t.Fatal(err)
	}

	nodes := g.Nodes()
	hits := searchHits(g, search.Matches(nodes, search.Highlight(nodes, "INTRO")))
	if len(hits) != 2 {
		t.Fatalf("hits = %+v, want 2", hits)
	}
	if hits[0].Title != "Intro" || hits[0].ExternalID != "0001" || hits[0].Path != "Report / Intro" {
		t.Errorf("hits[0] = %+v", hits[0])
	}
	if hits[1].Path != "Report / Intro / Intro to methods" || hits[1].Depth != 2 {
		t.Errorf("hits[1] = %+v", hits[1])
	}
}
