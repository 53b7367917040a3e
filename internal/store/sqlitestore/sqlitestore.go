// Package sqlitestore keeps values in a single-table SQLite database.
package sqlitestore

import (
	"fmt"
	"sync"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/idilsaglam/todolist/internal/store"
)

// DefaultFileName is used when no data file is configured.
const DefaultFileName = "todos.db"

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store is a store.Store backed by a SQLite file. A sqlite.Conn is not
// safe for concurrent use, so every call holds mu.
type Store struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	path string
}

var _ store.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and ensures the kv
// table exists. The caller must Close it.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlitestore: path is required")
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: opening %s: %w", path, err)
	}
	for _, stmt := range []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		schema,
	} {
		if err := sqlitex.ExecuteTransient(conn, stmt, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlitestore: %s: %w", stmt, err)
		}
	}
	return &Store{conn: conn, path: path}, nil
}

func (s *Store) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil, false, store.ErrClosed
	}
	var (
		value []byte
		found bool
	)
	err := sqlitex.Execute(s.conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = []byte(stmt.ColumnText(0))
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("sqlitestore: get %q: %w", key, err)
	}
	return value, found, nil
}

func (s *Store) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return store.ErrClosed
	}
	err := sqlitex.Execute(s.conn,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		&sqlitex.ExecOptions{Args: []any{key, string(value)}})
	if err != nil {
		return fmt.Errorf("sqlitestore: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	if err != nil {
		return fmt.Errorf("sqlitestore: closing %s: %w", s.path, err)
	}
	return nil
}
