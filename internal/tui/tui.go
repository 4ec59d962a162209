// Package tui renders the day view and translates key presses into
// engine operations. All state shown on screen comes from engine
// snapshots; the model itself only tracks selection and input modes.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ethan-dean/todue/internal/engine"
	"github.com/ethan-dean/todue/internal/todo"
)

// opTimeout bounds every user-triggered network call so a dead server
// cannot wedge the UI behind an in-flight operation.
const opTimeout = 30 * time.Second

type (
	// changedMsg fires whenever the engine's store changed; the view
	// re-reads snapshots on the next render.
	changedMsg struct{}

	// opErrMsg carries a failed operation's error into the status line.
	opErrMsg struct{ err error }

	// opDoneMsg clears the status line after a successful operation.
	opDoneMsg struct{}
)

// Model is the Bubble Tea model for the day view.
type Model struct {
	eng    *engine.Engine
	logger *slog.Logger

	width  int
	height int

	// row is the selected index within the anchor column's bucket,
	// clamped against the bucket on every render.
	row int

	adding  bool
	editing bool
	ti      textinput.Model
	editID  todo.Identity

	status   string
	inputErr string
}

// New builds the day-view model around a loaded engine.
func New(eng *engine.Engine, logger *slog.Logger) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	return Model{
		eng:    eng,
		logger: logger,
		ti:     ti,
		width:  80,
		height: 24,
	}
}

// waitForChange blocks on the engine's change channel and re-arms
// itself from Update after each delivery.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return changedMsg{}
	}
}

// runOp executes an engine operation off the UI goroutine.
func runOp(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		if err := op(ctx); err != nil {
			return opErrMsg{err: err}
		}

		return opDoneMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForChange(m.eng.Changed())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m, nil

	case changedMsg:
		return m, waitForChange(m.eng.Changed())

	case opErrMsg:
		m.status = describeError(msg.err)
		m.logger.Warn("operation failed", "error", msg.err)

		return m, nil

	case opDoneMsg:
		m.status = ""

		return m, nil

	case tea.KeyMsg:
		if m.adding || m.editing {
			return m.updateInput(msg)
		}

		return m.updateBrowse(msg)
	}

	return m, nil
}

// updateInput handles key presses while the add/edit bar is open.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := strings.TrimSpace(m.ti.Value())
		if text == "" {
			m.inputErr = "text cannot be empty"
			return m, nil
		}

		var cmd tea.Cmd
		if m.adding {
			date := m.eng.Anchor()
			cmd = runOp(func(ctx context.Context) error {
				return m.eng.Create(ctx, text, date)
			})
		} else {
			id := m.editID
			cmd = runOp(func(ctx context.Context) error {
				return m.eng.UpdateText(ctx, id, text)
			})
		}

		m.closeInput()

		return m, cmd

	case "esc":
		m.closeInput()

		return m, nil
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)

	return m, cmd
}

func (m *Model) closeInput() {
	m.adding = false
	m.editing = false
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
}

// updateBrowse handles key presses in normal browse mode.
func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "left":
		return m.shiftAnchor(-1)

	case "right":
		return m.shiftAnchor(1)

	case "up", "k":
		if m.row > 0 {
			m.row--
		}

		return m, nil

	case "down", "j":
		if m.row < len(m.anchorBucket())-1 {
			m.row++
		}

		return m, nil

	case " ":
		return m.toggleComplete()

	case "a":
		m.adding = true
		m.ti.Placeholder = "New todo..."
		m.ti.Focus()

		return m, nil

	case "e":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}

		m.editing = true
		m.editID = t.Identity()
		m.ti.Placeholder = "Edit todo..."
		m.ti.SetValue(t.Text)
		m.ti.CursorEnd()
		m.ti.Focus()

		return m, nil

	case "d":
		return m.deleteSelected(false)

	case "D":
		return m.deleteSelected(true)

	case "K", "shift+up":
		return m.moveSelected(-1)

	case "J", "shift+down":
		return m.moveSelected(1)

	case "[":
		return m.moveSelectedToDay(-1)

	case "]":
		return m.moveSelectedToDay(1)

	case "t":
		return m.jumpToDate(todo.DateKey(time.Now()))

	case "1", "3", "5", "7":
		days := int(msg.String()[0] - '0')
		m.eng.SetView(m.eng.Anchor(), days)

		return m, runOp(m.eng.LoadVisible)

	case "g":
		return m, runOp(func(ctx context.Context) error {
			m.eng.RefetchVisible(ctx)
			return nil
		})
	}

	return m, nil
}

func (m Model) shiftAnchor(days int) (tea.Model, tea.Cmd) {
	return m.jumpToDate(todo.AddDays(m.eng.Anchor(), days))
}

func (m Model) jumpToDate(date string) (tea.Model, tea.Cmd) {
	m.eng.SetView(date, len(m.eng.VisibleWindow()))
	m.row = 0

	return m, runOp(m.eng.LoadVisible)
}

func (m Model) anchorBucket() []todo.Todo {
	items, _ := m.eng.Snapshot(m.eng.Anchor())

	return items
}

// selected returns the todo under the cursor, clamping the row first.
func (m *Model) selected() (todo.Todo, bool) {
	items := m.anchorBucket()
	if len(items) == 0 {
		return todo.Todo{}, false
	}

	if m.row >= len(items) {
		m.row = len(items) - 1
	}

	return items[m.row], true
}

func (m Model) toggleComplete() (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}

	id := t.Identity()
	if t.IsCompleted {
		return m, runOp(func(ctx context.Context) error {
			return m.eng.Uncomplete(ctx, id)
		})
	}

	return m, runOp(func(ctx context.Context) error {
		return m.eng.Complete(ctx, id)
	})
}

func (m Model) deleteSelected(allFuture bool) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}

	if allFuture && t.RecurringTodoID == 0 {
		m.status = "not a recurring todo"
		return m, nil
	}

	id := t.Identity()

	return m, runOp(func(ctx context.Context) error {
		return m.eng.Delete(ctx, id, allFuture)
	})
}

func (m Model) moveSelected(delta int) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}

	target := m.row + delta
	if target < 0 || target >= len(m.anchorBucket()) {
		return m, nil
	}

	id := t.Identity()
	m.row = target

	return m, runOp(func(ctx context.Context) error {
		return m.eng.Move(ctx, id, target)
	})
}

func (m Model) moveSelectedToDay(days int) (tea.Model, tea.Cmd) {
	t, ok := m.selected()
	if !ok {
		return m, nil
	}

	id := t.Identity()
	toDate := todo.AddDays(m.eng.Anchor(), days)

	return m, runOp(func(ctx context.Context) error {
		return m.eng.MoveToDate(ctx, id, toDate)
	})
}

func (m Model) View() string {
	dates := m.eng.VisibleWindow()
	anchor := m.eng.Anchor()
	today := todo.DateKey(time.Now())

	colWidth := m.width/len(dates) - 4
	if colWidth < 16 {
		colWidth = 16
	}

	cols := make([]string, 0, len(dates))
	for _, date := range dates {
		cols = append(cols, m.renderColumn(date, date == anchor, date == today, colWidth))
	}

	view := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	if m.adding || m.editing {
		title := "Add todo"
		if m.editing {
			title = "Edit todo"
		}

		if m.inputErr != "" {
			title += "  " + errorStyle.Render(m.inputErr)
		}

		view += "\n" + inputBarStyle.Render(title+"\n"+m.ti.View())
	}

	if m.status != "" {
		view += "\n" + errorStyle.Render(m.status)
	}

	help := "←/→ day  ↑/↓ select  space done  a add  e edit  d delete  D all future  J/K reorder  [/] move day  t today  1/3/5/7 view  g refresh  q quit"
	view += "\n" + helpStyle.Render(help)

	return view
}

func (m Model) renderColumn(date string, isAnchor, isToday bool, width int) string {
	header := date
	if t, err := todo.ParseDateKey(date); err == nil {
		header = t.Format("Mon Jan 2")
	}

	switch {
	case isToday:
		header = todayStyle.Render(header)
	case isAnchor:
		header = titleStyle.Render(header)
	default:
		header = mutedStyle.Render(header)
	}

	items, loaded := m.eng.Snapshot(date)

	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\n")

	if !loaded {
		b.WriteString(mutedStyle.Render("loading..."))
	} else if len(items) == 0 {
		b.WriteString(mutedStyle.Render("nothing due"))
	}

	row := m.row
	if row >= len(items) {
		row = len(items) - 1
	}

	for i, t := range items {
		line := renderTodo(t, width)
		if isAnchor && i == row {
			line = selectedStyle.Render(line)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	style := columnStyle
	if isAnchor {
		style = anchorColumnStyle
	}

	return style.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func renderTodo(t todo.Todo, width int) string {
	box := boxUnchecked
	if t.IsCompleted {
		box = successStyle.Render(boxChecked)
	}

	text := t.Text
	if max := width - 6; max > 0 && len(text) > max {
		text = text[:max-1] + "…"
	}

	if t.IsCompleted {
		text = doneStyle.Render(text)
	}

	marks := ""
	if t.RecurringTodoID != 0 {
		marks += " " + virtualStyle.Render(recurMark)
	}

	if t.IsRolledOver {
		marks += " " + mutedStyle.Render(rolloverMark)
	}

	return fmt.Sprintf("%s %s%s", box, text, marks)
}

// describeError turns engine errors into short status-line text.
func describeError(err error) string {
	switch {
	case todo.IsValidation(err):
		return err.Error()
	case todo.IsNetwork(err):
		return "network error, change rolled back"
	case todo.IsConflict(err):
		return "someone else changed this, view refreshed"
	default:
		return err.Error()
	}
}
