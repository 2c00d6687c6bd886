package viewer

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/pageviz/pkg/errors"
	"github.com/matzehuels/pageviz/pkg/observability"
	"github.com/matzehuels/pageviz/pkg/outline"
	"github.com/matzehuels/pageviz/pkg/pipeline"
	"github.com/matzehuels/pageviz/pkg/view"
)

const sampleDoc = `{"doc_name":"R","structure":[{"title":"A","nodes":[{"title":"A1"},{"title":"A2"}]},{"title":"B"}]}`

func load(t *testing.T, data string) *Handle {
	t.Helper()
	h, err := Load(context.Background(), []byte(data), Options{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	return h
}

func titles(p view.Projection) string {
	var out []string
	for _, n := range p.Nodes {
		out = append(out, n.Title)
	}
	return fmt.Sprint(out)
}

func TestLoad(t *testing.T) {
	h := load(t, sampleDoc)
	p := h.VisibleGraph()
	if len(p.Nodes) != 5 || len(p.Edges) != 4 {
		t.Fatalf("VisibleGraph() = %d nodes, %d edges", len(p.Nodes), len(p.Edges))
	}
	if got := titles(p); got != "[R A A1 A2 B]" {
		t.Errorf("titles = %s", got)
	}
	for _, n := range p.Nodes {
		if n.Size.Width == 0 {
			t.Errorf("node %s has no geometry", n.ID)
		}
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"NullTitle", `{"structure":[{"title":null}]}`, errors.ErrCodeMalformedTree},
		{"MissingTitle", `{"structure":[{"title":"A","nodes":[{"summary":"s"}]}]}`, errors.ErrCodeMalformedTree},
		{"NotJSON", `not json`, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Load(context.Background(), []byte(tt.data), Options{})
			if h != nil {
				t.Error("Load() returned a handle on error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadDocumentSharedChild(t *testing.T) {
	shared := &outline.Section{Title: "Shared"}
	doc := &outline.Document{
		DocName: "R",
		Structure: []*outline.Section{
			{Title: "A", Nodes: []*outline.Section{shared}},
			{Title: "B", Nodes: []*outline.Section{shared}},
		},
	}
	h, err := LoadDocument(context.Background(), doc, Options{})
	if h != nil || !errors.IsMalformedTree(err) {
		t.Errorf("LoadDocument() = %v, %v; want MALFORMED_TREE and no handle", h, err)
	}

	doc.Structure[1].Nodes = []*outline.Section{{Title: "B1"}}
	if _, err := LoadDocument(context.Background(), doc, Options{}); err != nil {
		t.Errorf("LoadDocument() of a tree error: %v", err)
	}
}

func TestToggleCollapse(t *testing.T) {
	h := load(t, sampleDoc)
	before := titles(h.VisibleGraph())

	if !h.ToggleCollapse("node-1") {
		t.Fatal("ToggleCollapse(A) reported no change")
	}
	p := h.VisibleGraph()
	if got := titles(p); got != "[R A B]" {
		t.Errorf("after collapsing A: %s", got)
	}
	a, _ := p.Node("node-1")
	if !a.IsCollapsed || a.HiddenCount != 2 {
		t.Errorf("A = %+v", a)
	}
	for _, e := range p.Edges {
		if _, ok := p.Node(e.Target); !ok {
			t.Errorf("edge %s points at hidden node", e.ID)
		}
	}

	h.ToggleCollapse("node-1")
	if got := titles(h.VisibleGraph()); got != before {
		t.Errorf("after expanding A: %s, want %s", got, before)
	}

	for _, id := range []string{"node-2", "nope", ""} {
		v := h.Version()
		if h.ToggleCollapse(id) {
			t.Errorf("ToggleCollapse(%q) reported a change", id)
		}
		if h.Version() != v {
			t.Errorf("ToggleCollapse(%q) bumped the version", id)
		}
	}
}

func TestSetCollapsedIsIdempotent(t *testing.T) {
	h := load(t, sampleDoc)
	h.SetCollapsed("node-1", true)
	h.SetCollapsed("node-1", true)
	if got := h.Collapsed(); fmt.Sprint(got) != "[node-1]" {
		t.Errorf("Collapsed() = %v", got)
	}
	h.ExpandAll()
	if got := h.Collapsed(); len(got) != 0 {
		t.Errorf("Collapsed() after ExpandAll = %v", got)
	}
}

func TestSetSearchQuery(t *testing.T) {
	h := load(t, sampleDoc)

	tests := []struct {
		query string
		want  int
	}{
		{"a", 3},
		{"A1", 1},
		{"A2 ", 0},
		{"", 0},
		{"   ", 0},
		{"zzz", 0},
		{"b", 1},
	}
	for _, tt := range tests {
		if got := h.SetSearchQuery(tt.query); got != tt.want {
			t.Errorf("SetSearchQuery(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}

	h.SetSearchQuery("a")
	h.ToggleCollapse("node-1")
	p := h.VisibleGraph()
	if p.MatchCount != 3 || p.VisibleMatchCount != 1 {
		t.Errorf("MatchCount = %d, VisibleMatchCount = %d", p.MatchCount, p.VisibleMatchCount)
	}
	if got := len(p.Highlighted()); got != 1 {
		t.Errorf("Highlighted() = %d nodes", got)
	}
}

func TestInitialState(t *testing.T) {
	h, err := Load(context.Background(), []byte(sampleDoc), Options{
		Pipeline: pipeline.Options{Collapse: []string{"node-1"}, Query: "b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	p := h.VisibleGraph()
	if len(p.Nodes) != 3 || p.MatchCount != 1 {
		t.Errorf("initial projection = %s, %d matches", titles(p), p.MatchCount)
	}
	opts := h.Options()
	if fmt.Sprint(opts.Collapse) != "[node-1]" || opts.Query != "b" {
		t.Errorf("Options() = %+v", opts)
	}
}

func TestReload(t *testing.T) {
	h := load(t, sampleDoc)
	h.ToggleCollapse("node-1")
	h.SetSearchQuery("b")

	err := h.Reload(context.Background(), []byte(`{"doc_name":"R","structure":[{"title":"A","nodes":[{"title":"A1"}]},{"title":"B"},{"title":"Bonus"}]}`))
	if err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	p := h.VisibleGraph()
	if got := titles(p); got != "[R A B Bonus]" {
		t.Errorf("after reload: %s", got)
	}
	if p.MatchCount != 2 {
		t.Errorf("query not re-applied: %d matches", p.MatchCount)
	}

	if err := h.Reload(context.Background(), []byte(`{"structure":[{}]}`)); !errors.IsMalformedTree(err) {
		t.Fatalf("Reload() of malformed data error = %v", err)
	}
	if got := titles(h.VisibleGraph()); got != "[R A B Bonus]" {
		t.Errorf("failed reload changed state: %s", got)
	}
}

func TestSubscribe(t *testing.T) {
	h := load(t, sampleDoc)
	updates, cancel := h.Subscribe()

	first := <-updates
	if len(first.Nodes) != 5 {
		t.Fatalf("initial update has %d nodes", len(first.Nodes))
	}

	h.ToggleCollapse("node-1")
	h.SetSearchQuery("b")

	select {
	case p := <-updates:
		if len(p.Nodes) != 3 || p.MatchCount != 1 {
			t.Errorf("latest update = %s, %d matches", titles(p), p.MatchCount)
		}
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	cancel()
	if _, ok := <-updates; ok {
		t.Error("channel still open after cancel")
	}
	cancel()
	h.ToggleCollapse("node-1")
}

func TestConcurrentOperations(t *testing.T) {
	h := load(t, sampleDoc)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 50 {
				h.ToggleCollapse("node-1")
				h.SetSearchQuery(fmt.Sprint(i + j))
				_ = h.VisibleGraph()
			}
		}()
	}
	wg.Wait()
	// 400 toggles cancel out.
	if h.IsCollapsed("node-1") {
		t.Error("even number of toggles left A collapsed")
	}
}

type recordingViewHooks struct {
	mu      sync.Mutex
	toggles []string
	queries []string
}

func (r *recordingViewHooks) OnToggle(_ context.Context, id string, collapsed bool, hidden int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toggles = append(r.toggles, fmt.Sprintf("%s:%t:%d", id, collapsed, hidden))
}

func (r *recordingViewHooks) OnSearch(_ context.Context, query string, matches int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, fmt.Sprintf("%s:%d", query, matches))
}

func TestViewHooks(t *testing.T) {
	hooks := &recordingViewHooks{}
	observability.SetViewHooks(hooks)
	defer observability.Reset()

	h := load(t, sampleDoc)
	h.ToggleCollapse("node-1")
	h.ToggleCollapse("node-4") // leaf
	h.SetSearchQuery("A")

	if got := fmt.Sprint(hooks.toggles); got != "[node-1:true:2]" {
		t.Errorf("toggles = %s", got)
	}
	if got := fmt.Sprint(hooks.queries); got != "[A:3]" {
		t.Errorf("queries = %s", got)
	}
}
