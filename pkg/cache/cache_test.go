package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	key := NewDefaultKeyer().LayoutKey("graph-hash", LayoutKeyOpts{Engine: "tidy"})
	if err := c.Set(ctx, key, []byte(`{"engine":"tidy"}`), TTLLayout); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if data, hit, err := c.Get(ctx, key); err != nil || hit || data != nil {
		t.Errorf("Get after Set = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// DocumentKey
	docKey := k.DocumentKey("mongo", "reports/42")
	if docKey != "doc:mongo:reports/42" {
		t.Errorf("DocumentKey unexpected: %s", docKey)
	}

	if got := k.GraphKey("abc"); got != "graph:abc" {
		t.Errorf("GraphKey unexpected: %s", got)
	}

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "tidy", RankSep: 100})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Engine: "graphviz", RankSep: 100})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Engine: "tidy", RankSep: 100}) {
		t.Error("LayoutKey should be deterministic")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:123:")

	// All keys should be prefixed
	docKey := scoped.DocumentKey("file", "a.json")
	if docKey != "tenant:123:doc:file:a.json" {
		t.Errorf("ScopedKeyer DocumentKey unexpected: %s", docKey)
	}

	layoutKey := scoped.LayoutKey("h", LayoutKeyOpts{})
	if len(layoutKey) < 15 || layoutKey[:11] != "tenant:123:" {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", layoutKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.GraphKey("h")
	if key != "prefix:graph:h" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	// Expired entries are misses
	if err := c.Set(ctx, "old", []byte("x"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired entry should be a miss")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of a missing key should succeed: %v", err)
	}

	_ = c.Set(ctx, "a", []byte("1"), 0)
	if err := Clear(ctx, c); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestFileCacheRejectsBadEntries(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fc := c.(*FileCache)

	tests := []struct {
		name string
		raw  string
	}{
		{"Corrupt", `{"key":`},
		{"ForeignKey", `{"key":"graph:other","data":"eA=="}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "graph:" + tt.name
			path := fc.path(key)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(tt.raw), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, hit, err := c.Get(ctx, key); hit || err != nil {
				t.Errorf("Get = hit %v, err %v; want a miss", hit, err)
			}
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Error("bad entry should be removed")
			}
		})
	}

	// Set leaves no temporary files behind.
	if err := c.Set(ctx, "layout:abc", []byte("{}"), TTLLayout); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(fc.Dir(), "*", ".entry-*"))
	if len(matches) != 0 {
		t.Errorf("temporary files left: %v", matches)
	}
}

func TestClearUnsupported(t *testing.T) {
	if err := Clear(context.Background(), NewNullCache()); err != nil {
		t.Errorf("Clear on NullCache should be a no-op: %v", err)
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisCache should fail without a server")
	}
}

func TestUnavailable(t *testing.T) {
	if Unavailable("redis", "ping", nil) != nil {
		t.Error("Unavailable(nil) should return nil")
	}

	refused := errors.New("connection refused")
	err := Unavailable("redis", "ping 127.0.0.1:1", refused)

	if !IsRetryable(err) {
		t.Error("backend errors should be retryable")
	}
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, refused) {
		t.Errorf("errors.Is misses the sentinel or the cause: %v", err)
	}
	var be *BackendError
	if !errors.As(err, &be) || be.Backend != "redis" {
		t.Errorf("errors.As(*BackendError) = %+v", be)
	}
	if want := "redis ping 127.0.0.1:1: unavailable: connection refused"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if IsRetryable(refused) {
		t.Error("plain errors are not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelays
	retryDelays = []time.Duration{time.Millisecond, time.Millisecond}
	t.Cleanup(func() { retryDelays = old })

	dropped := Unavailable("mongo", "find outlines", errors.New("connection reset"))
	malformed := errors.New("malformed document")

	tests := []struct {
		name      string
		errs      []error // returned by successive calls; nil once exhausted
		wantErr   error
		wantCalls int
	}{
		{name: "FirstTry", wantCalls: 1},
		{name: "Permanent", errs: []error{malformed}, wantErr: malformed, wantCalls: 1},
		{name: "RecoversAfterDrop", errs: []error{dropped}, wantCalls: 2},
		{name: "GivesUp", errs: []error{dropped, dropped, dropped, dropped}, wantErr: dropped, wantCalls: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), func() error {
				calls++
				if calls <= len(tt.errs) {
					return tt.errs[calls-1]
				}
				return nil
			})
			if err != tt.wantErr {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Unavailable("redis", "ping", errors.New("i/o timeout"))
	})
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
