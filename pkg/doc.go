// Package pkg provides the core libraries for pageviz outline visualization.
//
// # Overview
//
// pageviz turns a nested document outline (a PageIndex-style JSON tree of
// sections with titles, summaries and page ranges) into a node-and-edge
// diagram. Sections can be collapsed to hide their descendants and searched
// by title. The same core is shared by the CLI, the interactive terminal
// explorer and the HTTP server.
//
// # Architecture
//
// The typical data flow:
//
//	outline JSON (file, upload, MongoDB)
//	         ↓
//	    [outline] package (decode and validate)
//	         ↓
//	    [graph] package (flatten into nodes + parent→child edges)
//	         ↓
//	    [layout] package (size cards, compute positions)
//	         ↓
//	    [visibility] + [search] (collapse state, highlighted matches)
//	         ↓
//	    [view] package (visible projection)
//	         ↓
//	    [render] package (SVG, PNG, PDF, DOT, JSON, YAML)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, err := runner.Execute(ctx, data, pipeline.Options{
//	    Formats:  []string{"svg"},
//	    Collapse: []string{"node-3"},
//	    Query:    "methods",
//	})
//	svg := result.Artifacts["svg"]
//
// For a long-lived document whose state changes over time, use a
// [viewer] handle:
//
//	h, _ := viewer.Load(ctx, data, viewer.Options{})
//	h.ToggleCollapse("node-3")
//	n := h.SetSearchQuery("intro")
//	p := h.VisibleGraph()
//
// # Main Packages
//
// ## Domain
//
// [outline] - Input document model and its JSON decoding.
//
// [graph] - Immutable flattened tree with pre-order node ids.
//
// [visibility] - Collapse state and the hidden set derived from it.
//
// [search] - Case-insensitive, Unicode-aware title matching.
//
// [palette] - Depth-indexed colors.
//
// [view] - Card sizing and the visible projection.
//
// [layout] - Tidy tree and Graphviz layout engines.
//
// [render] - Output encoders, with [render/svg] and [render/dot].
//
// ## Orchestration
//
// [pipeline] - Build → layout → render with caching, used by every entry point.
//
// [viewer] - Serialized, subscribable view state for one document.
//
// [session] - Registry of open documents for the HTTP API (memory and file stores).
//
// [watch] - Reload a document when its file changes.
//
// ## Infrastructure
//
// [cache] - File, Redis and null caches with shared key derivation.
//
// [source] - Where documents come from: directories, single files, MongoDB.
//
// [config] - YAML/TOML configuration with environment overrides.
//
// [errors] - Coded errors (MALFORMED_TREE, INVALID_FORMAT, ...).
//
// [observability] - Hooks for pipeline, view, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/graph/...              # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests (MongoDB, Redis)
//
// [outline]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/outline
// [graph]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/graph
// [visibility]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/visibility
// [search]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/search
// [palette]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/palette
// [view]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/view
// [layout]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/render
// [render/svg]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/render/svg
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/render/dot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/pipeline
// [viewer]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/viewer
// [session]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/session
// [watch]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/watch
// [cache]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/cache
// [source]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/source
// [config]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pageviz/pkg/buildinfo
package pkg
