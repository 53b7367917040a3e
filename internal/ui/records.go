package ui

import (
	"fmt"
	"strings"

	"github.com/idilsaglam/todolist/internal/model"
)

const maxTitle = 80

// Header is the summary line shown above a listing.
func Header(done, pending int, filter model.Filter) string {
	t := current
	parts := []string{
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone) + fmt.Sprintf(" %d", done),
		t.Pending.Render(t.SymPending) + fmt.Sprintf(" %d", pending),
		t.Accent.Render("Total") + fmt.Sprintf(" %d", done+pending),
	}
	if filter != model.FilterAll {
		parts = append(parts, t.Muted.Render("["+filter.String()+"]"))
	}
	return strings.Join(parts, "  ")
}

// Box returns the checkbox for a task state.
func Box(completed bool) string {
	if completed {
		return current.Success.Render(current.BoxDone)
	}
	return current.Muted.Render(current.BoxPending)
}

// Truncate shortens titles longer than the listing width.
func Truncate(title string) string {
	if runes := []rune(title); len(runes) > maxTitle {
		return string(runes[:maxTitle-3]) + "..."
	}
	return title
}

// RecordLines renders one line per record, keyed by id.
func RecordLines(recs []model.Record) []string {
	if len(recs) == 0 {
		return []string{current.Muted.Render("no tasks")}
	}
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, fmt.Sprintf("%s %s %s",
			Box(r.Completed), current.Muted.Render(fmt.Sprintf("#%d", r.ID)), Truncate(r.Title)))
	}
	return out
}

// GroupLines renders pending records first, then done ones.
func GroupLines(recs []model.Record) []string {
	var pend, done []model.Record
	for _, r := range recs {
		if r.Completed {
			done = append(done, r)
		} else {
			pend = append(pend, r)
		}
	}
	section := func(title string, rs []model.Record) []string {
		lines := []string{current.Accent.Render(title)}
		if len(rs) == 0 {
			return append(lines, current.Muted.Render("(none)"))
		}
		return append(lines, RecordLines(rs)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
