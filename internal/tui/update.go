package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateLayoutSizes()
		return m, nil

	case MsgTodosLoaded:
		m.todos = msg.Todos
		m.completed = msg.Completed
		m.updateTodoList()
		return m, nil

	case MsgActionDone:
		m.err = nil
		m.notice = msg.Notice
		m.resetPending()
		return m, m.loadTodos()

	case MsgTick:
		m.now = m.container.Clock.Now()
		m.updateTodoList()
		return m, m.tick()

	case MsgError:
		m.err = msg.Err
		m.notice = ""
		m.resetPending()
		return m, nil

	case MsgClearError:
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m *Model) resetPending() {
	m.mode = ModeNormal
	m.pending = ActionNone
	m.pendingID = 0
	m.textInput.Reset()
	m.textInput.Blur()
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeAdd, ModeComment:
		return m.handleInputMode(msg)
	case ModeConfirm:
		return m.handleConfirmMode(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
			m.mode = ModeNormal
		}
		return m, nil
	case ModeNormal:
		return m.handleNormalMode(msg)
	}
	return m, nil
}

// handleNormalMode handles keys in normal mode.
func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.err = nil
		return m, m.loadTodos()

	case key.Matches(msg, m.keys.Add):
		return m, m.enterInput(ModeAdd, ActionNone, 0, "New todo")
	}

	todo := m.SelectedTodo()
	if todo == nil {
		// Let the list handle navigation on an empty board.
		var cmd tea.Cmd
		m.todoList, cmd = m.todoList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Start):
		return m, m.startTodo(todo)

	case key.Matches(msg, m.keys.Checkpoint):
		return m, m.enterInput(ModeComment, ActionCheckpoint, todo.ID, "Partial work on todo: "+todo.Text)

	case key.Matches(msg, m.keys.Pause):
		return m, m.pauseTodo(todo)

	case key.Matches(msg, m.keys.Complete):
		return m, m.enterInput(ModeComment, ActionComplete, todo.ID, "Work on todo: "+todo.Text)

	case key.Matches(msg, m.keys.Cancel):
		m.enterConfirm(ActionCancel, todo.ID)
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleTodo(todo)

	case key.Matches(msg, m.keys.Delete):
		m.enterConfirm(ActionRemove, todo.ID)
		return m, nil
	}

	var cmd tea.Cmd
	m.todoList, cmd = m.todoList.Update(msg)
	return m, cmd
}

// enterInput focuses the text input. The placeholder shows what an empty
// submission logs.
func (m *Model) enterInput(mode Mode, action PendingAction, todoID int, placeholder string) tea.Cmd {
	m.mode = mode
	m.pending = action
	m.pendingID = todoID
	m.textInput.Reset()
	m.textInput.Placeholder = placeholder
	return m.textInput.Focus()
}

func (m *Model) enterConfirm(action PendingAction, todoID int) {
	m.mode = ModeConfirm
	m.pending = action
	m.pendingID = todoID
}

// handleInputMode handles keys while typing a todo or a comment.
func (m *Model) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.resetPending()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		value := strings.TrimSpace(m.textInput.Value())
		ref := refOf(m.pendingID)
		switch {
		case m.mode == ModeAdd:
			if value == "" {
				m.resetPending()
				return m, nil
			}
			return m, m.addTodo(value)
		case m.pending == ActionCheckpoint:
			return m, m.checkpointTodo(ref, value)
		case m.pending == ActionComplete:
			return m, m.completeTodo(ref, value)
		}
		m.resetPending()
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// handleConfirmMode handles keys in the confirmation dialog.
func (m *Model) handleConfirmMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Confirm) {
		m.resetPending()
		return m, nil
	}
	ref := refOf(m.pendingID)
	switch m.pending {
	case ActionCancel:
		return m, m.cancelTodo(ref)
	case ActionRemove:
		return m, m.removeTodo(ref)
	case ActionNone, ActionCheckpoint, ActionComplete:
	}
	m.resetPending()
	return m, nil
}

func refOf(todoID int) string {
	return "#" + strconv.Itoa(todoID)
}
