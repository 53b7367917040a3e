// Package tui is the interactive front end. Every key press is turned into
// a todolist.List call on bubbletea's single Update goroutine, and the list
// persists itself after each change.
package tui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todolist/internal/model"
	"github.com/idilsaglam/todolist/internal/todolist"
	"github.com/idilsaglam/todolist/internal/ui"
)

// listItem adapts a task to bubbles/list.Item. Actions go to the item
// itself, so rows sharing an id stay distinct.
type listItem struct {
	item *todolist.Item
}

func (i listItem) Title() string       { return i.item.Title() }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.item.Title() }

type mode int

const (
	modeViewing mode = iota
	modeAdding
	modeEditing
	modeConfirmClear
)

// Model is the bubbletea model around a todo list.
type Model struct {
	todos *todolist.List
	list  list.Model
	ti    textinput.Model

	theme ui.Theme

	mode    mode
	editing *todolist.Item // set in modeEditing

	status string
	err    string

	width, height int
}

// itemDelegate renders one task per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}
	text := ui.Truncate(it.item.Title())
	if it.item.Completed() {
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, ui.Box(it.item.Completed()), text)
}

var (
	addBind    = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind   = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleBind = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteBind = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	filterBind = key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1/2/3", "all/active/completed"))
	clearBind  = key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed"))
)

// New builds the model. The list must already be loaded.
func New(todos *todolist.List) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	th := ui.Current()
	l.Styles.Title = th.Title
	l.Styles.HelpStyle = th.Muted
	l.Styles.PaginationStyle = th.Muted
	l.SetStatusBarItemName("task", "tasks")
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, editBind, toggleBind, deleteBind}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{addBind, editBind, toggleBind, deleteBind, filterBind, clearBind}
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	m := Model{todos: todos, list: l, ti: ti, theme: th}
	m.refresh()
	return m
}

// Run starts the program and blocks until the user quits.
func Run(todos *todolist.List) error {
	_, err := tea.NewProgram(New(todos), tea.WithAltScreen()).Run()
	return err
}

// refresh rebuilds the visible rows and header from the list.
func (m *Model) refresh() {
	visible := m.todos.Visible()
	items := make([]list.Item, 0, len(visible))
	for _, it := range visible {
		items = append(items, listItem{item: it})
	}
	m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}

	done, pending := m.todos.Stats()
	m.list.Title = ui.Header(done, pending, m.todos.Filter())
}

func (m Model) selected() (listItem, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it, ok
}

// apply records the outcome of a list call and redraws.
func (m *Model) apply(status string, err error) {
	m.err = ""
	m.status = status
	if err != nil {
		m.status = ""
		m.err = err.Error()
	}
	m.refresh()
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	switch m.mode {
	case modeAdding:
		return m.updateAdding(msg)
	case modeEditing:
		return m.updateEditing(msg)
	case modeConfirmClear:
		return m.updateConfirm(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case " ":
			if it, ok := m.selected(); ok {
				m.apply("toggled", it.item.Toggle())
			}
			return m, nil
		case "d":
			if it, ok := m.selected(); ok {
				m.apply("removed", it.item.Remove())
			}
			return m, nil
		case "a":
			m.mode = modeAdding
			m.ti.SetValue("")
			m.ti.Placeholder = "New task title..."
			m.resize()
			cmd := m.ti.Focus()
			return m, cmd
		case "e":
			if it, ok := m.selected(); ok {
				m.mode = modeEditing
				m.editing = it.item
				m.ti.SetValue(it.item.Title())
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit task title..."
				m.resize()
				cmd := m.ti.Focus()
				return m, cmd
			}
			return m, nil
		case "1", "2", "3":
			m.todos.SetFilter(model.Filter(km.String()[0] - '1'))
			m.apply("showing "+m.todos.Filter().String(), nil)
			return m, nil
		case "C":
			m.mode = modeConfirmClear
			m.resize()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdding(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			_, err := m.todos.Add(m.ti.Value())
			m.ti.SetValue("")
			if errors.Is(err, todolist.ErrEmptyTitle) {
				// blank submit only clears the input
				return m, nil
			}
			m.list.Select(0)
			m.apply("added", err)
			return m, nil
		case "esc":
			m.leaveInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			changed, err := m.editing.Edit(m.ti.Value())
			m.leaveInput()
			status := "unchanged"
			if changed {
				status = "edited"
			}
			m.apply(status, err)
			return m, nil
		case "esc":
			m.leaveInput()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch km.String() {
	case "y", "Y":
		m.mode = modeViewing
		n, err := m.todos.ClearCompleted(todolist.Confirmed)
		m.resize()
		m.apply(fmt.Sprintf("cleared %d", n), err)
	case "n", "N", "esc", "q":
		m.mode = modeViewing
		m.resize()
		m.apply("", nil)
	}
	return m, nil
}

func (m *Model) leaveInput() {
	m.mode = modeViewing
	m.editing = nil
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 5
	if m.mode != modeViewing {
		h -= 4
	}
	if h < 1 {
		h = 1
	}
	m.list.SetSize(m.width-4, h)
}

func (m Model) View() string {
	content := m.list.View()

	switch m.mode {
	case modeAdding, modeEditing:
		title := "Add task"
		if m.mode == modeEditing {
			title = "Edit task"
		}
		content += "\n" + m.frame().Render(title+"\n"+m.ti.View())
	case modeConfirmClear:
		content += "\n" + m.frame().Render(todolist.ClearCompletedPrompt+"  (y/n)")
	}

	switch {
	case m.err != "":
		content += "\n" + m.theme.Error.Render(m.theme.SymFail+" "+m.err)
	case m.status != "":
		content += "\n" + m.theme.Muted.Render(m.status)
	}
	return m.frame().Render(content)
}
