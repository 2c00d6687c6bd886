package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pageviz/pkg/viewer"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() { called.Store(true) })
	d.Cancel()
	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback ran after Cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	if d := NewDebouncer(0); d.Duration() != DefaultDebounce {
		t.Errorf("Duration() = %v, want %v", d.Duration(), DefaultDebounce)
	}
}

// touchUntil rewrites path every interval until done is closed or the
// deadline passes. Writes made before the watcher is registered are lost,
// so a single write would make the tests racy.
func touchUntil(t *testing.T, path string, content []byte, done <-chan struct{}) bool {
	t.Helper()
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		if err := os.WriteFile(path, content, 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case <-done:
			return true
		case <-deadline:
			return false
		case <-tick.C:
		}
	}
}

func TestWatcher_DetectsChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := New(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(w.Path()) {
		t.Errorf("Path() = %q, want absolute", w.Path())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx) }()

	done := make(chan struct{})
	go func() {
		<-w.Changed()
		close(done)
	}()
	if !touchUntil(t, path, []byte(`{"doc_name":"x"}`), done) {
		t.Fatal("no change reported")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Run() = %v", err)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outline.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w, err := New(path, WithDebounce(10*time.Millisecond), WithOnChange(func() { calls.Add(1) }))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	time.Sleep(100 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("onChange ran %d times for a sibling file", n)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.json")
	before := []byte(`{"doc_name":"Guide","structure":[{"title":"One"}]}`)
	after := []byte(`{"doc_name":"Guide","structure":[{"title":"One"},{"title":"Two"}]}`)
	if err := os.WriteFile(path, before, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := viewer.Load(ctx, before, viewer.Options{})
	if err != nil {
		t.Fatal(err)
	}
	updates, stop := h.Subscribe()
	defer stop()
	<-updates

	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	go Reload(ctx, path, h, logger, WithDebounce(20*time.Millisecond))

	done := make(chan struct{})
	go func() {
		for p := range updates {
			if len(p.Nodes) == 3 {
				close(done)
				return
			}
		}
	}()
	if !touchUntil(t, path, after, done) {
		t.Fatalf("handle not reloaded, nodes = %d", h.Graph().NodeCount())
	}
}

func TestReload_KeepsDocumentOnParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outline.json")
	good := []byte(`{"doc_name":"Guide","structure":[{"title":"One"}]}`)
	if err := os.WriteFile(path, good, 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h, err := viewer.Load(ctx, good, viewer.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var failures atomic.Int32
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	w, err := New(path,
		WithDebounce(20*time.Millisecond),
		WithOnChange(func() {
			data, _ := os.ReadFile(path)
			if h.Reload(ctx, data) != nil {
				failures.Add(1)
			}
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	go w.Run(ctx)

	done := make(chan struct{})
	go func() {
		<-w.Changed()
		close(done)
	}()
	if !touchUntil(t, path, []byte(`{"structure":[{"summary":"no title"}]}`), done) {
		t.Fatal("no change reported")
	}
	if failures.Load() == 0 {
		t.Error("malformed document reloaded without error")
	}
	if n := h.Graph().NodeCount(); n != 2 {
		t.Errorf("NodeCount() = %d, want previous 2", n)
	}
}
