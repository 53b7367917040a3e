package model

import (
	"fmt"
	"strings"
)

// Filter selects which records are shown. It never changes the records.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

func (f Filter) String() string {
	switch f {
	case FilterActive:
		return "active"
	case FilterCompleted:
		return "completed"
	default:
		return "all"
	}
}

// Shows reports whether r is visible under f.
func (f Filter) Shows(r Record) bool {
	switch f {
	case FilterActive:
		return !r.Completed
	case FilterCompleted:
		return r.Completed
	default:
		return true
	}
}

// ParseFilter accepts all, active (or todo) and completed (or done).
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "active", "todo":
		return FilterActive, nil
	case "completed", "done":
		return FilterCompleted, nil
	}
	return FilterAll, fmt.Errorf("unknown filter %q (want all, active or completed)", s)
}
