package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OK, Fail and Hint print one status line each.
func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Success.Render(current.SymOK+" "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Error.Render(current.SymFail+" "+msg))
}

func Hint(w io.Writer, msg string) { fmt.Fprintln(w, current.Muted.Render(msg)) }

// ProgressBar renders done/total as a bar of width cells plus a percentage.
func ProgressBar(done, total, width int) string {
	width = max(width, 5)
	ratio := 0.0
	if total > 0 {
		ratio = min(float64(done)/float64(total), 1)
	}
	filled := int(ratio * float64(width))
	return fmt.Sprintf("%s%s %3d%%",
		strings.Repeat(current.BarFull, filled),
		strings.Repeat(current.BarEmpty, width-filled),
		int(ratio*100))
}

// Panel frames lines in the theme border, padded to the widest line.
func Panel(w io.Writer, lines []string) {
	box := lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.Muted.GetForeground()).
		Padding(0, 1)
	fmt.Fprintln(w, box.Render(strings.Join(lines, "\n")))
}
