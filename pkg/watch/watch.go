// Package watch reloads a displayed document when its file changes on disk.
//
// A [Watcher] observes the directory containing the file, which keeps working
// when editors save by writing a temporary file and renaming it over the
// original. Bursts of events are coalesced by a [Debouncer] before the change
// callback runs.
//
// [Reload] wires a watcher to a [viewer.Handle]: on every change the file is
// read and handed to [viewer.Handle.Reload]. A file that fails to parse is
// logged and the previous document stays on screen.
package watch

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/pageviz/pkg/source"
	"github.com/matzehuels/pageviz/pkg/viewer"
)

// ErrFileRemoved is reported when the watched file is deleted.
var ErrFileRemoved = stderrors.New("watched file was removed")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is reported.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithOnChange sets the callback invoked after a change settles.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback invoked for watcher errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher reports changes to a single file.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	onError  func(error)

	debouncer *Debouncer
	changeCh  chan struct{}

	mu      sync.Mutex
	running bool
}

// New returns a watcher for path. Nothing is observed until Run is called.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		onChange: func() {},
		onError:  func(error) {},
		changeCh: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Changed receives once per settled change that has not been consumed yet.
func (w *Watcher) Changed() <-chan struct{} { return w.changeCh }

// Run observes the file until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		w.debouncer.Cancel()
	}()

	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove):
				w.onError(ErrFileRemoved)
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create), event.Has(fsnotify.Rename):
				w.debouncer.Trigger(w.notify)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) notify() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if !running {
		return
	}

	w.onChange()
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

// Reload watches path and reloads h from it on every change until ctx is
// done. Read and parse failures are logged; h keeps its previous document.
func Reload(ctx context.Context, path string, h *viewer.Handle, logger *log.Logger, opts ...Option) error {
	if logger == nil {
		logger = log.Default()
	}
	onChange := func() {
		data, err := source.ReadFile(path)
		if err == nil {
			err = h.Reload(ctx, data)
		}
		if err != nil {
			logger.Warn("reload failed", "path", path, "err", err)
			return
		}
		logger.Info("reloaded", "path", path, "nodes", h.Graph().NodeCount())
	}
	onError := func(err error) {
		logger.Warn("watch", "path", path, "err", err)
	}

	opts = append([]Option{WithOnChange(onChange), WithOnError(onError)}, opts...)
	w, err := New(path, opts...)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
