package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/todolog/internal/domain"
)

// Colors defines the color palette for the TUI.
var Colors = struct {
	// Base colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color

	// Session colors
	Open       lipgloss.Color
	Running    lipgloss.Color
	Paused     lipgloss.Color
	Done       lipgloss.Color
	LoggedTime lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow (selected)

	Open:       lipgloss.Color("#74B9FF"), // Light blue
	Running:    lipgloss.Color("#FDCB6E"), // Yellow
	Paused:     lipgloss.Color("#A29BFE"), // Lavender
	Done:       lipgloss.Color("#00B894"), // Green
	LoggedTime: lipgloss.Color("#B2BEC3"), // Light gray
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderText lipgloss.Style
	Progress   lipgloss.Style

	// Todo list
	TodoID             lipgloss.Style
	TodoText           lipgloss.Style
	TodoTextSelected   lipgloss.Style
	TodoTextDone       lipgloss.Style
	TodoTime           lipgloss.Style
	SelectionIndicator lipgloss.Style

	// Session badges
	SessionOpen    lipgloss.Style
	SessionRunning lipgloss.Style
	SessionPaused  lipgloss.Style
	SessionDone    lipgloss.Style

	// Help
	Help lipgloss.Style

	// Footer
	Footer lipgloss.Style
	Notice lipgloss.Style

	// Dialog
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	// Input
	InputPrompt lipgloss.Style

	// Error
	ErrorMsg lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		HeaderText: lipgloss.NewStyle().
			Bold(true),

		Progress: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TodoID: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		TodoText: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TodoTextSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		TodoTextDone: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Strikethrough(true),

		TodoTime: lipgloss.NewStyle().
			Foreground(Colors.LoggedTime),

		SelectionIndicator: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected),

		SessionOpen: lipgloss.NewStyle().
			Foreground(Colors.Open),

		SessionRunning: lipgloss.NewStyle().
			Foreground(Colors.Running).
			Bold(true),

		SessionPaused: lipgloss.NewStyle().
			Foreground(Colors.Paused),

		SessionDone: lipgloss.NewStyle().
			Foreground(Colors.Done),

		Help: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Muted),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Notice: lipgloss.NewStyle().
			Foreground(Colors.Success),

		Dialog: lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		InputPrompt: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),
	}
}

// SessionStyle returns the badge style for a session state.
func (s Styles) SessionStyle(state domain.SessionState) lipgloss.Style {
	switch state {
	case domain.SessionActive, domain.SessionCheckpointed:
		return s.SessionRunning
	case domain.SessionPaused:
		return s.SessionPaused
	case domain.SessionCompleted:
		return s.SessionDone
	case domain.SessionNotStarted:
		return s.SessionOpen
	default:
		return s.SessionOpen
	}
}

// SessionIcon returns an icon for a session state.
func SessionIcon(state domain.SessionState) string {
	switch state {
	case domain.SessionNotStarted:
		return "○"
	case domain.SessionActive:
		return "●"
	case domain.SessionCheckpointed:
		return "◉"
	case domain.SessionPaused:
		return "‖"
	case domain.SessionCompleted:
		return "✓"
	default:
		return "?"
	}
}

// CheckBox returns the checklist marker of a todo.
func CheckBox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}
