// Package todolist holds the live todo list: Items that report their own
// changes, and the List that owns them, applies filters and writes the
// whole collection to a store.Store after every reported change.
//
// A List is driven from a single goroutine (a bubbletea Update loop or one
// CLI command) and is not safe for concurrent use.
package todolist
