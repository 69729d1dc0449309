package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/todolog/internal/domain"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeNormal, ModeAdd, ModeComment, ModeConfirm:
		content = m.viewMain()
	}

	return m.styles.App.Render(content)
}

// viewMain renders the board.
func (m *Model) viewMain() string {
	var b strings.Builder

	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.ErrorMsg.Render("Error: "+m.err.Error()) + "\n\n")
	}

	if len(m.todos) == 0 {
		b.WriteString(m.styles.Footer.Render("No todos yet. Press a to add one."))
		b.WriteString("\n")
	} else {
		b.WriteString(m.todoList.View())
		b.WriteString("\n")
	}

	switch m.mode {
	case ModeNormal, ModeHelp:
	case ModeAdd, ModeComment:
		b.WriteString("\n")
		b.WriteString(m.viewInput())
	case ModeConfirm:
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
	}

	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

// viewHeader renders the issue key, progress and the time totals.
func (m *Model) viewHeader() string {
	logged, running := m.runningTotal()
	progress := fmt.Sprintf("%d/%d completed", m.completed, len(m.todos))
	total := "logged " + domain.FormatDuration(logged)
	if running > 0 {
		total += " +" + domain.FormatDuration(int64(running/time.Second)) + " running"
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Header.Render("todolog"),
		"  ",
		m.styles.HeaderText.Render(m.issueKey),
		"  ",
		m.styles.Progress.Render(progress+"  ·  "+total),
	)
}

// viewInput renders the todo or comment input line.
func (m *Model) viewInput() string {
	prompt := "New todo: "
	if m.mode == ModeComment {
		prompt = fmt.Sprintf("%s todo #%d, comment: ", titleCase(m.pending.String()), m.pendingID)
	}
	return m.styles.InputPrompt.Render(prompt) + m.textInput.View() + "\n" +
		m.styles.Footer.Render("enter submit · esc cancel")
}

// viewConfirmDialog renders the confirmation dialog.
func (m *Model) viewConfirmDialog() string {
	var question string
	switch m.pending {
	case ActionCancel:
		question = fmt.Sprintf("Discard the running segment of todo #%d? Its time is not logged.", m.pendingID)
	case ActionRemove:
		question = fmt.Sprintf("Remove todo #%d? Logged worklog entries are kept.", m.pendingID)
	case ActionNone, ActionCheckpoint, ActionComplete:
		question = "Continue?"
	}
	content := m.styles.DialogTitle.Render("Confirm "+m.pending.String()) + "\n\n" +
		question + "\n\n" +
		m.styles.Footer.Render("y confirm · any other key cancels")
	return m.styles.Dialog.Render(content)
}

// viewFooter renders the status line and the short help.
func (m *Model) viewFooter() string {
	var b strings.Builder
	if m.notice != "" {
		b.WriteString(m.styles.Notice.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

// viewHelp renders the help overlay.
func (m *Model) viewHelp() string {
	content := m.styles.DialogTitle.Render("Keybindings") + "\n\n" +
		m.help.FullHelpView(m.keys.FullHelp()) + "\n\n" +
		m.styles.Footer.Render("Checkpoint and complete ask for a worklog comment; leave it empty for the default.") + "\n" +
		m.styles.Footer.Render("esc or ? to close")
	return m.styles.Help.Render(content)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
