package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/matzehuels/pageviz/pkg/pipeline"
	"github.com/matzehuels/pageviz/pkg/viewer"
)

// Session is an open document: its record plus the live handle.
type Session struct {
	ID     string
	Source string
	Handle *viewer.Handle
}

// Registry maps session ids to live handles, restoring them from a Store on
// demand.
type Registry struct {
	store Store
	opts  viewer.Options
	ttl   time.Duration

	mu      sync.Mutex
	handles map[string]*Session
}

// NewRegistry creates a registry over store. opts is used for every load;
// ttl of zero means DefaultTTL.
func NewRegistry(store Store, opts viewer.Options, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		store:   store,
		opts:    opts,
		ttl:     ttl,
		handles: make(map[string]*Session),
	}
}

// Open loads data and registers it under a new id. A document that fails to
// load is not registered.
func (r *Registry) Open(ctx context.Context, source string, data []byte) (*Session, error) {
	opts := r.opts
	opts.Pipeline.Source = source
	h, err := viewer.Load(ctx, data, opts)
	if err != nil {
		return nil, err
	}

	rec := NewRecord(source, data, r.ttl)
	if err := r.store.Set(ctx, rec); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	sess := &Session{ID: rec.ID, Source: source, Handle: h}
	r.mu.Lock()
	r.handles[rec.ID] = sess
	r.mu.Unlock()
	return sess, nil
}

// Get returns the session with the given id, rebuilding its handle from the
// store if this process has not loaded it yet. It returns ErrNotFound for
// unknown or expired ids.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		r.mu.Lock()
		delete(r.handles, id)
		r.mu.Unlock()
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sess, ok := r.handles[id]; ok {
		return sess, nil
	}

	opts := r.opts
	opts.Pipeline.Source = rec.Source
	opts.Pipeline.Collapse = rec.Collapsed
	opts.Pipeline.Query = rec.Query
	h, err := viewer.Load(ctx, rec.Document, opts)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	sess := &Session{ID: id, Source: rec.Source, Handle: h}
	r.handles[id] = sess
	return sess, nil
}

// Save writes the current view state of a session back to the store.
func (r *Registry) Save(ctx context.Context, id string) error {
	r.mu.Lock()
	sess, ok := r.handles[id]
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrExpired
	}
	rec.Collapsed = sess.Handle.Collapsed()
	rec.Query = sess.Handle.Query()
	return r.store.Set(ctx, rec)
}

// Replace swaps the document of a session, keeping its view state where the
// new document allows.
func (r *Registry) Replace(ctx context.Context, id string, data []byte) error {
	sess, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := sess.Handle.Reload(ctx, data); err != nil {
		return err
	}
	rec, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrExpired
	}
	rec.Document = data
	rec.Collapsed = sess.Handle.Collapsed()
	return r.store.Set(ctx, rec)
}

// Close removes a session.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.handles, id)
	r.mu.Unlock()
	return r.store.Delete(ctx, id)
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Cleanup drops expired records and their handles.
func (r *Registry) Cleanup(ctx context.Context) error {
	if err := r.store.Cleanup(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	ids := make([]string, 0, len(r.handles))
	for id := range r.handles {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		rec, err := r.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			r.mu.Lock()
			delete(r.handles, id)
			r.mu.Unlock()
		}
	}
	return nil
}

// Runner returns the pipeline runner shared by all sessions, or a fresh
// uncached one.
func (r *Registry) Runner() *pipeline.Runner {
	if r.opts.Runner != nil {
		return r.opts.Runner
	}
	return pipeline.NewRunner(nil, nil, r.opts.Logger)
}

// Shutdown releases the store.
func (r *Registry) Shutdown() error {
	return r.store.Close()
}
