package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/todolist/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// Every key holds a JSON value; the file is one object of key -> value.
// No locking; there is a single writer per process. Writes replace the
// file by rename, so a reader sees either the old or the new document.

// DefaultFileName is used when no data file is configured.
const DefaultFileName = "todos.json"

var ErrNotJSON = errors.New("value is not valid JSON")

// Store is a store.Store backed by a single JSON file.
type Store struct {
	path   string
	closed bool
}

var _ store.Store = (*Store)(nil)

// New returns a store writing to path. The file is created on first Set.
func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() (map[string]json.RawMessage, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	doc := map[string]json.RawMessage{}
	if len(b) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return doc, nil
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	if s.closed {
		return nil, false, store.ErrClosed
	}
	doc, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (s *Store) Set(key string, value []byte) error {
	if s.closed {
		return store.ErrClosed
	}
	if !json.Valid(value) {
		return fmt.Errorf("set %q: %w", key, ErrNotJSON)
	}
	doc, err := s.load()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(value)

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return writeFile(s.path, append(b, '\n'))
}

// writeFile writes data to a temp file next to path, syncs it and renames
// it into place.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	fail := func(step string, err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%s: %w", step, err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail("write temp file", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail("chmod temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.closed = true
	return nil
}
