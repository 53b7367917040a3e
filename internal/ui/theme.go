package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is shared by the CLI output and the TUI. Colors are dropped by
// lipgloss when the output is not a terminal or NO_COLOR is set.
type Theme struct {
	Name string

	Title, Muted, Accent    lipgloss.Style
	Success, Error, Pending lipgloss.Style

	Border lipgloss.Border

	BoxPending, BoxDone string
	SymDone, SymPending string
	SymOK, SymFail      string
	BarFull, BarEmpty   string
}

var asciiBorder = lipgloss.Border{
	Top: "-", Bottom: "-", Left: "|", Right: "|",
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
}

func fg(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

func classic() Theme {
	return Theme{
		Name:    "classic",
		Title:   lipgloss.NewStyle().Bold(true),
		Muted:   fg("8"),
		Accent:  fg("4"),
		Success: fg("2"),
		Error:   fg("1").Bold(true),
		Pending: fg("3"),
		Border:  lipgloss.NormalBorder(),

		BoxPending: "☐", BoxDone: "☑",
		SymDone: "✔", SymPending: "•",
		SymOK: "✔", SymFail: "✖",
		BarFull: "█", BarEmpty: "░",
	}
}

func neon() Theme {
	t := classic()
	t.Name = "neon"
	t.Title = fg("13").Bold(true)
	t.Accent = fg("14")
	t.Success = fg("10")
	t.Error = fg("9").Bold(true)
	t.Pending = fg("11")
	t.Border = lipgloss.RoundedBorder()
	t.BoxPending, t.BoxDone = "◻", "◼"
	return t
}

// mono is plain ASCII without color, for logs and golden output.
func mono() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Name:  "mono",
		Title: plain, Muted: plain, Accent: plain,
		Success: plain, Error: plain, Pending: plain,
		Border: asciiBorder,

		BoxPending: "[ ]", BoxDone: "[x]",
		SymDone: "x", SymPending: "-",
		SymOK: "ok:", SymFail: "error:",
		BarFull: "#", BarEmpty: ".",
	}
}

var current = classic()

// SetTheme selects classic, neon or mono. Unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "neon":
		current = neon()
	case "mono":
		current = mono()
	default:
		current = classic()
	}
}

func Current() Theme { return current }
