package tui

import "github.com/charmbracelet/lipgloss"

// Colors come from the ui theme; these only add emphasis.
var (
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

func (m Model) frame() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(m.theme.Border).
		BorderForeground(m.theme.Muted.GetForeground()).
		Padding(0, 1)
}
