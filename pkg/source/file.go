package source

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/pageviz/pkg/errors"
)

// =============================================================================
// Dir
// =============================================================================

// Dir serves the *.json files of one directory. Subdirectories are not
// searched.
type Dir struct {
	Root string
}

// NewDir returns a source over root.
func NewDir(root string) *Dir { return &Dir{Root: root} }

// Name implements Source.
func (d *Dir) Name() string { return "dir:" + d.Root }

// List implements Source.
func (d *Dir) List(ctx context.Context) ([]Entry, error) {
	entries, err := os.ReadDir(d.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", d.Root)
		}
		return nil, err
	}

	var out []Entry
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Entry{
			Key:     e.Name(),
			Name:    strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	slices.SortFunc(out, func(a, b Entry) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

// Fetch implements Source. key is a file name relative to Root; paths that
// leave Root are rejected with INVALID_PATH.
func (d *Dir) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := errors.ValidatePath(key); err != nil {
		return nil, err
	}
	return readFile(filepath.Join(d.Root, filepath.FromSlash(key)))
}

// Path returns the file path of key.
func (d *Dir) Path(key string) string {
	return filepath.Join(d.Root, filepath.FromSlash(key))
}

// =============================================================================
// File
// =============================================================================

// File serves a single file under its base name.
type File struct {
	Path string
}

// NewFile returns a source over path.
func NewFile(path string) *File { return &File{Path: path} }

// Name implements Source.
func (f *File) Name() string { return "file:" + f.Path }

// List implements Source.
func (f *File) List(ctx context.Context) ([]Entry, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "stat %s", f.Path)
		}
		return nil, err
	}
	base := filepath.Base(f.Path)
	return []Entry{{
		Key:     base,
		Name:    strings.TrimSuffix(base, filepath.Ext(base)),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}}, nil
}

// Fetch implements Source. An empty key or the file's base name selects the
// file.
func (f *File) Fetch(ctx context.Context, key string) ([]byte, error) {
	if key != "" && key != filepath.Base(f.Path) {
		return nil, errors.New(errors.ErrCodeNotFound, "document %q not found", key)
	}
	return readFile(f.Path)
}

// ReadFile reads a document file, mapping a missing file to FILE_NOT_FOUND.
func ReadFile(path string) ([]byte, error) {
	return readFile(path)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s not found", path)
		}
		return nil, err
	}
	return data, nil
}

var (
	_ Source = (*Dir)(nil)
	_ Source = (*File)(nil)
)
