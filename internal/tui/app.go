package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/todolog/internal/app"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase"
)

// tickInterval is how often running segments are redrawn.
const tickInterval = time.Second

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	err       error

	// State
	now      time.Time
	todos    []domain.Todo
	issueKey string
	notice   string

	// Components
	keys      KeyMap
	styles    Styles
	help      help.Model
	todoList  list.Model
	textInput textinput.Model

	// Numeric state (smaller types last)
	mode      Mode
	pending   PendingAction
	pendingID int
	completed int
	width     int
	height    int
}

// New creates a new TUI Model for one issue.
func New(c *app.Container, issueKey string) *Model {
	ti := textinput.New()
	ti.CharLimit = 500

	styles := DefaultStyles()
	todoList := list.New([]list.Item{}, newTodoDelegate(styles), 0, 0)
	todoList.SetShowTitle(false)
	todoList.SetShowStatusBar(false)
	todoList.SetShowHelp(false)
	todoList.SetShowPagination(false)
	todoList.SetFilteringEnabled(false)
	todoList.DisableQuitKeybindings()

	return &Model{
		container: c,
		issueKey:  issueKey,
		now:       c.Clock.Now(),
		keys:      DefaultKeyMap(),
		styles:    styles,
		help:      help.New(),
		todoList:  todoList,
		textInput: ti,
		mode:      ModeNormal,
	}
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadTodos(),
		m.tick(),
	)
}

// tick schedules the next redraw of running segments.
func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return MsgTick{Now: t}
	})
}

// loadTodos returns a command that reads the checklist.
func (m *Model) loadTodos() tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.ListTodosUseCase().Execute(context.Background(), usecase.ListTodosInput{
			IssueKey: m.issueKey,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTodosLoaded{Todos: out.Todos, Completed: out.Completed}
	}
}

// SelectedTodo returns the currently selected todo, or nil if none.
func (m *Model) SelectedTodo() *domain.Todo {
	if m.todoList.SelectedItem() == nil {
		return nil
	}
	if ti, ok := m.todoList.SelectedItem().(todoItem); ok {
		todo := ti.todo
		return &todo
	}
	return nil
}

// updateTodoList rebuilds the list items, keeping the cursor position.
func (m *Model) updateTodoList() {
	items := make([]list.Item, 0, len(m.todos))
	for _, t := range m.todos {
		items = append(items, todoItem{todo: t, elapsed: t.Session.Elapsed(m.now)})
	}
	idx := m.todoList.Index()
	m.todoList.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.todoList.Select(idx)
	}
}

func (m *Model) updateLayoutSizes() {
	height := m.height - 8
	if height < 3 {
		height = 3
	}
	m.todoList.SetSize(m.width-4, height)
}

// runningTotal is the time logged on the issue's todos plus open segments.
func (m *Model) runningTotal() (logged int64, running time.Duration) {
	for _, t := range m.todos {
		logged += t.Session.Accumulated
		running += t.Session.Elapsed(m.now)
	}
	return logged, running
}

// startTodo returns a command that starts or resumes work.
func (m *Model) startTodo(todo *domain.Todo) tea.Cmd {
	ref := todo.Ref()
	return func() tea.Msg {
		out, err := m.container.StartTodoWorkUseCase().Execute(context.Background(), usecase.StartTodoWorkInput{
			IssueKey: m.issueKey,
			Ref:      ref,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: fmt.Sprintf("Started todo %s", out.Todo.Ref())}
	}
}

// checkpointTodo returns a command that logs the open segment.
func (m *Model) checkpointTodo(ref, comment string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.CheckpointTodoWorkUseCase().Execute(context.Background(), usecase.CheckpointTodoWorkInput{
			IssueKey: m.issueKey,
			Ref:      ref,
			Comment:  comment,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: closedNotice("Checkpointed", out)}
	}
}

// pauseTodo returns a command that logs the open segment and pauses.
func (m *Model) pauseTodo(todo *domain.Todo) tea.Cmd {
	ref := todo.Ref()
	return func() tea.Msg {
		out, err := m.container.PauseTodoWorkUseCase().Execute(context.Background(), usecase.PauseTodoWorkInput{
			IssueKey: m.issueKey,
			Ref:      ref,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: closedNotice("Paused", out)}
	}
}

// completeTodo returns a command that logs the final segment.
func (m *Model) completeTodo(ref, comment string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.CompleteTodoWorkUseCase().Execute(context.Background(), usecase.CompleteTodoWorkInput{
			IssueKey: m.issueKey,
			Ref:      ref,
			Comment:  comment,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: closedNotice("Completed", out)}
	}
}

// cancelTodo returns a command that drops the open segment.
func (m *Model) cancelTodo(ref string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.CancelTodoWorkUseCase().Execute(context.Background(), usecase.CancelTodoWorkInput{
			IssueKey: m.issueKey,
			Ref:      ref,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: fmt.Sprintf("Cancelled todo %s, discarded %s",
			out.Todo.Ref(), domain.FormatDuration(int64(out.Discarded/time.Second)))}
	}
}

// toggleTodo returns a command that flips the checkbox.
func (m *Model) toggleTodo(todo *domain.Todo) tea.Cmd {
	ref := todo.Ref()
	completed := !todo.Completed
	return func() tea.Msg {
		out, err := m.container.SetTodoStatusUseCase().Execute(context.Background(), usecase.SetTodoStatusInput{
			IssueKey:  m.issueKey,
			Ref:       ref,
			Completed: completed,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		verb := "Unchecked"
		if completed {
			verb = "Checked"
		}
		return MsgActionDone{Notice: fmt.Sprintf("%s todo %s", verb, out.Todo.Ref())}
	}
}

// addTodo returns a command that appends a todo.
func (m *Model) addTodo(text string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.AddTodoUseCase().Execute(context.Background(), usecase.AddTodoInput{
			IssueKey: m.issueKey,
			Text:     text,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: fmt.Sprintf("Added todo %s", out.Todo.Ref())}
	}
}

// removeTodo returns a command that deletes a todo line.
// An open segment is dropped along with it.
func (m *Model) removeTodo(ref string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.RemoveTodoUseCase().Execute(context.Background(), usecase.RemoveTodoInput{
			IssueKey: m.issueKey,
			Ref:      ref,
			Force:    true,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgActionDone{Notice: fmt.Sprintf("Removed todo %s", out.Todo.Ref())}
	}
}

func closedNotice(verb string, out *usecase.CloseOutput) string {
	notice := fmt.Sprintf("%s todo %s: logged %s", verb, out.Todo.Ref(), domain.FormatDuration(out.Seconds))
	if out.Recovered {
		notice += " (recovered)"
	}
	return notice
}
