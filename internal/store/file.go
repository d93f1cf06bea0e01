package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// File keeps every key in one JSON document. Put rewrites the document through
// a temp file and rename so readers never see a half-written file.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a File store rooted at path. The parent directory is created.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("file store: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "file store: create directory")
	}
	return &File{path: path}, nil
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := doc[key]
	return v, ok, nil
}

func (f *File) Put(_ context.Context, entries map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		// an unreadable document is replaced rather than blocking every save
		doc = make(map[string]string, len(entries))
	}
	for k, v := range entries {
		doc[k] = v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "file store: encode")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kv-*")
	if err != nil {
		return errors.Wrap(err, "file store: temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "file store: write")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "file store: sync")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "file store: close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "file store: rename")
}

func (f *File) Close() error { return nil }

func (f *File) read() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "file store: read")
	}
	doc := make(map[string]string)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "file store: decode")
	}
	return doc, nil
}
