package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/runoshun/todolog/internal/domain"
)

// todoItem is one list row. Elapsed is the running segment at render time.
type todoItem struct {
	todo    domain.Todo
	elapsed time.Duration
}

func (t todoItem) FilterValue() string {
	return t.todo.Text
}

// timeLabel shows logged time, plus the running segment when one is open.
func (t todoItem) timeLabel() string {
	logged := t.todo.Session.Accumulated
	if t.todo.Session.State.IsInProgress() {
		return fmt.Sprintf("%s +%s", domain.FormatDuration(logged), domain.FormatDuration(int64(t.elapsed/time.Second)))
	}
	if logged == 0 {
		return ""
	}
	return domain.FormatDuration(logged)
}

type todoDelegate struct {
	styles Styles
}

func newTodoDelegate(styles Styles) todoDelegate {
	return todoDelegate{styles: styles}
}

func (d todoDelegate) Height() int {
	return 1
}

func (d todoDelegate) Spacing() int {
	return 0
}

func (d todoDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d todoDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(todoItem)
	if !ok {
		return
	}
	todo := ti.todo
	selected := index == m.Index()

	indicatorChar := " "
	if selected {
		indicatorChar = ">"
	}

	state := todo.Session.State
	idStr := fmt.Sprintf("%4s", todo.Ref())
	stateText := fmt.Sprintf("%-12s", state.Display())
	timeStr := ti.timeLabel()

	// "  > " + id + "  " + box + " " + icon + " " + state + "  " + text + "  " + time
	prefixWidth := 4 + 4 + 2 + 3 + 1 + 1 + 1 + 12 + 2
	listWidth := m.Width()
	maxTextLen := listWidth - prefixWidth - runewidth.StringWidth(timeStr) - 4
	if maxTextLen < 10 {
		maxTextLen = 10
	}

	text := todo.Text
	if runewidth.StringWidth(text) > maxTextLen {
		text = runewidth.Truncate(text, maxTextLen-3, "...")
	}

	textStyle := d.styles.TodoText
	switch {
	case selected:
		textStyle = d.styles.TodoTextSelected
	case todo.Completed:
		textStyle = d.styles.TodoTextDone
	}
	stateStyle := d.styles.SessionStyle(state)

	line := "  " + d.styles.SelectionIndicator.Render(indicatorChar) + " " +
		d.styles.TodoID.Render(idStr) + "  " +
		CheckBox(todo.Completed) + " " +
		stateStyle.Render(SessionIcon(state)) + " " +
		stateStyle.Render(stateText) + "  " +
		textStyle.Render(text)
	if timeStr != "" {
		line += "  " + d.styles.TodoTime.Render(timeStr)
	}

	lineWidth := runewidth.StringWidth(line)
	if lineWidth < listWidth {
		line += fmt.Sprintf("%*s", listWidth-lineWidth, "")
	}
	_, _ = fmt.Fprint(w, line)
}
