// Package memstore keeps values in process memory.
package memstore

import (
	"sync"

	"github.com/idilsaglam/todolist/internal/store"
)

// Store is an in-memory store.Store. Writes counts Set calls.
type Store struct {
	mu     sync.RWMutex
	data   map[string][]byte
	writes int
	closed bool
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, false, store.ErrClosed
	}
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	// callers may keep the slice
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return store.ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	s.writes++
	return nil
}

// Writes returns how many times Set succeeded.
func (s *Store) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
