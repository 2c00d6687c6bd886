package session

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-json"
)

const recordExt = ".session.json"

// FileStore keeps one JSON file per record in a directory. Writes go
// through a temporary file and a rename so a crash never leaves a
// truncated record behind.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore opens dir as a record store, creating it if needed. An
// empty dir selects pageviz/sessions under the user config directory.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(base, "pageviz", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) file(id string) string {
	return filepath.Join(s.dir, id+recordExt)
}

// readRecord decodes the record at path. A missing file yields nil, nil.
func readRecord(path string) (*Record, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec := new(Record)
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	if !ValidID(id) {
		return nil, nil
	}
	s.mu.RLock()
	rec, err := readRecord(s.file(id))
	s.mu.RUnlock()
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.IsExpired() {
		return nil, s.Delete(ctx, id)
	}
	return rec, nil
}

func (s *FileStore) Set(_ context.Context, rec *Record) error {
	if !ValidID(rec.ID) {
		return fmt.Errorf("invalid session id %q", rec.ID)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, ".record-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.file(rec.ID))
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if !ValidID(id) {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.file(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Cleanup removes expired records. Files that do not decode are left in
// place for inspection.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("list session dir: %w", err)
	}
	var errs []error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), recordExt) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		rec, err := readRecord(path)
		if err != nil || rec == nil || !rec.IsExpired() {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
