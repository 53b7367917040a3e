// Package store defines the key-value port the todo list persists through.
package store

import "errors"

// DefaultKey is the slot the whole list is written to.
const DefaultKey = "todolist"

var ErrClosed = errors.New("store is closed")

// Store is a durable key-value slot. Set overwrites; there is no merge.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Close() error
}
