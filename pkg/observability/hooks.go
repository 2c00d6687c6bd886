// Package observability lets callers attach metrics or tracing to pageviz
// without the instrumented packages importing a backend.
//
// Four hook sets exist, one per event source: the document pipeline, the
// view state of a loaded document, the artifact cache and the HTTP server.
// Each defaults to a no-op. Hooks are installed by main:
//
//	observability.SetViewHooks(metrics.ViewRecorder{})
//
// and emitted by library code:
//
//	observability.View().OnToggle(ctx, id, collapsed, hidden)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the document pipeline.
type PipelineHooks interface {
	// OnBuildStart and OnBuildComplete bracket decoding an outline and
	// flattening it into a graph.
	OnBuildStart(ctx context.Context, source string)
	OnBuildComplete(ctx context.Context, source string, nodeCount int, duration time.Duration, err error)

	OnLayoutStart(ctx context.Context, engine string, nodeCount int)
	OnLayoutComplete(ctx context.Context, engine string, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// ViewHooks receives events when the view state of a loaded document changes.
type ViewHooks interface {
	// OnToggle reports a collapse or expand of nodeID and how many nodes
	// are hidden afterwards.
	OnToggle(ctx context.Context, nodeID string, collapsed bool, hidden int)
	OnSearch(ctx context.Context, query string, matches int)
}

// CacheHooks receives events from the artifact cache. keyType is one of
// "graph", "layout" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP API server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError is only called for failures that map to a 5xx status.
	OnError(ctx context.Context, method, host, path string, err error)
}

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                         {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                              {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, time.Duration, error)     {}

type NoopViewHooks struct{}

func (NoopViewHooks) OnToggle(context.Context, string, bool, int) {}
func (NoopViewHooks) OnSearch(context.Context, string, int)       {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one installed hook set. An empty slot yields the no-op value.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) load() T {
	if p := s.p.Load(); p != nil {
		return *p
	}
	return s.noop
}

// store ignores nil interface values so a missing backend never
// replaces an installed one.
func (s *slot[T]) store(h T) {
	if any(h) == nil {
		return
	}
	s.p.Store(&h)
}

func (s *slot[T]) clear() { s.p.Store(nil) }

var (
	pipelineSlot = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	viewSlot     = slot[ViewHooks]{noop: NoopViewHooks{}}
	cacheSlot    = slot[CacheHooks]{noop: NoopCacheHooks{}}
	httpSlot     = slot[HTTPHooks]{noop: NoopHTTPHooks{}}
)

// SetPipelineHooks installs h for pipeline events. A nil h is ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.store(h) }

// SetViewHooks installs h for view events. A nil h is ignored.
func SetViewHooks(h ViewHooks) { viewSlot.store(h) }

// SetCacheHooks installs h for cache events. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.store(h) }

// SetHTTPHooks installs h for server events. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { httpSlot.store(h) }

func Pipeline() PipelineHooks { return pipelineSlot.load() }
func View() ViewHooks         { return viewSlot.load() }
func Cache() CacheHooks       { return cacheSlot.load() }
func HTTP() HTTPHooks         { return httpSlot.load() }

// Reset uninstalls every hook set.
func Reset() {
	pipelineSlot.clear()
	viewSlot.clear()
	cacheSlot.clear()
	httpSlot.clear()
}
