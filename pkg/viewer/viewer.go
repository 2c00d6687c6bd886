// Package viewer holds the state of one displayed outline document.
//
// A [Handle] owns a positioned graph together with its collapse state and
// search query, and answers the question "what is visible right now" with
// [Handle.VisibleGraph]. Every operation on a handle is serialized by a
// mutex, so toggles and searches issued from several goroutines (HTTP
// requests, a file watcher, a terminal UI) apply in the order they acquire
// the handle and never observe a half-applied change.
//
// Loading is all or nothing: [Load] and [Handle.Reload] either publish a
// complete new graph or leave the previous state untouched.
package viewer

import (
	"context"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pageviz/pkg/graph"
	"github.com/matzehuels/pageviz/pkg/observability"
	"github.com/matzehuels/pageviz/pkg/outline"
	"github.com/matzehuels/pageviz/pkg/pipeline"
	"github.com/matzehuels/pageviz/pkg/search"
	"github.com/matzehuels/pageviz/pkg/view"
	"github.com/matzehuels/pageviz/pkg/visibility"
)

// Options configures how a document is built and laid out.
type Options struct {
	// Pipeline carries layout and sizing options. Collapse and Query are
	// applied as the initial view state.
	Pipeline pipeline.Options

	// Runner builds and lays out documents. Nil uses an uncached runner.
	Runner *pipeline.Runner

	// Logger receives debug output. Nil uses the runner's logger.
	Logger *log.Logger
}

// Handle is one loaded document and its view state.
type Handle struct {
	mu sync.Mutex

	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger

	graph     *graph.Graph
	graphHash string
	state     visibility.State
	query     string
	matched   visibility.Set
	version   uint64

	subscribers map[int]chan view.Projection
	nextSub     int
}

// Load builds and lays out data and returns a handle on it.
//
// A structurally invalid document fails with a MALFORMED_TREE error and
// invalid JSON with INVALID_FORMAT; no handle is returned in either case.
func Load(ctx context.Context, data []byte, opts Options) (*Handle, error) {
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = runner.Logger
	}
	popts := opts.Pipeline
	if popts.Logger == nil {
		popts.Logger = logger
	}
	if err := popts.ValidateForLayout(); err != nil {
		return nil, err
	}

	h := &Handle{
		runner: runner,
		opts:   popts,
		logger: logger,
	}
	g, hash, err := h.layout(ctx, data)
	if err != nil {
		return nil, err
	}
	h.graph, h.graphHash = g, hash
	for _, id := range popts.Collapse {
		h.state.Set(g, id, true)
	}
	h.query = popts.Query
	h.matched = search.Highlight(g.Nodes(), h.query)

	logger.Debug("loaded document", "source", popts.Source, "nodes", g.NodeCount())
	return h, nil
}

// LoadDocument is [Load] for an already decoded document. Sections shared
// between parents or reachable through a cycle are rejected with
// MALFORMED_TREE before anything is laid out.
func LoadDocument(ctx context.Context, doc *outline.Document, opts Options) (*Handle, error) {
	if _, err := graph.Build(doc); err != nil {
		return nil, err
	}
	data, err := outline.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return Load(ctx, data, opts)
}

func (h *Handle) layout(ctx context.Context, data []byte) (*graph.Graph, string, error) {
	g, hash, _, err := h.runner.BuildWithCacheInfo(ctx, data, h.opts)
	if err != nil {
		return nil, "", err
	}
	positioned, _, _, err := h.runner.LayoutWithCacheInfo(ctx, g, hash, h.opts)
	if err != nil {
		return nil, "", err
	}
	return positioned, hash, nil
}

// Reload replaces the document with data. Collapsed ids that still name a
// node with children stay collapsed and the current query is re-applied.
// On error the previous document and state are kept.
//
// Ids are issued in traversal order, so a node keeps its id across reloads
// only as long as no section is inserted before it.
func (h *Handle) Reload(ctx context.Context, data []byte) error {
	g, hash, err := h.layout(ctx, data)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var state visibility.State
	for id := range h.state.Collapsed() {
		state.Set(g, id, true)
	}
	h.graph, h.graphHash = g, hash
	h.state = state
	h.matched = search.Highlight(g.Nodes(), h.query)
	h.changed()

	h.logger.Debug("reloaded document", "source", h.opts.Source, "nodes", g.NodeCount())
	return nil
}

// =============================================================================
// View state
// =============================================================================

// ToggleCollapse collapses id if it is expanded and expands it otherwise.
// Unknown ids and leaves are ignored. It reports whether anything changed.
func (h *Handle) ToggleCollapse(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.state.Toggle(h.graph, id) {
		return false
	}
	h.toggled(id)
	return true
}

// SetCollapsed collapses or expands id explicitly. Unknown ids and leaves
// are ignored. It reports whether anything changed.
func (h *Handle) SetCollapsed(id string, collapsed bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.state.Set(h.graph, id, collapsed) {
		return false
	}
	h.toggled(id)
	return true
}

func (h *Handle) toggled(id string) {
	collapsed := h.state.IsCollapsed(id)
	hidden := len(h.state.Hidden(h.graph))
	observability.View().OnToggle(context.Background(), id, collapsed, hidden)
	h.logger.Debug("toggled node", "id", id, "collapsed", collapsed, "hidden", hidden)
	h.changed()
}

// ExpandAll clears every collapse.
func (h *Handle) ExpandAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.state.Collapsed()) == 0 {
		return
	}
	h.state.Reset()
	h.changed()
}

// SetSearchQuery highlights every node whose title contains text, ignoring
// case, and returns the number of matches. Matches hidden below a collapsed
// node are counted too. A blank query clears the highlight.
func (h *Handle) SetSearchQuery(text string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.query = text
	h.matched = search.Highlight(h.graph.Nodes(), text)
	n := search.MatchCount(h.matched)
	observability.View().OnSearch(context.Background(), text, n)
	h.changed()
	return n
}

// VisibleGraph returns the nodes and edges currently visible, annotated with
// highlight, collapse and color information.
func (h *Handle) VisibleGraph() view.Projection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.project()
}

func (h *Handle) project() view.Projection {
	return view.Project(h.graph, h.state.Hidden(h.graph), h.matched, h.state.Collapsed())
}

// =============================================================================
// Accessors
// =============================================================================

// Graph returns the full positioned graph.
func (h *Handle) Graph() *graph.Graph {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.graph
}

// GraphHash identifies the current graph in caches.
func (h *Handle) GraphHash() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.graphHash
}

// Query returns the current search text.
func (h *Handle) Query() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.query
}

// Collapsed returns the collapsed ids in sorted order.
func (h *Handle) Collapsed() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Collapsed().Sorted()
}

// IsCollapsed reports whether id is collapsed.
func (h *Handle) IsCollapsed(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.IsCollapsed(id)
}

// Version increases by one with every change of the visible graph.
func (h *Handle) Version() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.version
}

// Options returns the pipeline options the document was loaded with, with
// the current collapse set and query filled in.
func (h *Handle) Options() pipeline.Options {
	h.mu.Lock()
	defer h.mu.Unlock()
	opts := h.opts
	opts.Collapse = h.state.Collapsed().Sorted()
	opts.Query = h.query
	opts.Formats = slices.Clone(h.opts.Formats)
	return opts
}
