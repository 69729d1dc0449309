// Package tui provides the interactive todo board for todolog.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal  Mode = iota // Default navigation mode
	ModeAdd                 // New todo text input
	ModeComment             // Worklog comment input for checkpoint or complete
	ModeConfirm             // Confirmation dialog mode
	ModeHelp                // Help overlay mode
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeAdd:
		return "add"
	case ModeComment:
		return "comment"
	case ModeConfirm:
		return "confirm"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}

// IsInputMode returns true if the mode accepts text input.
func (m Mode) IsInputMode() bool {
	switch m {
	case ModeAdd, ModeComment:
		return true
	case ModeNormal, ModeConfirm, ModeHelp:
		return false
	}
	return false
}

// PendingAction is the session operation waiting for a comment or a confirmation.
type PendingAction int

const (
	ActionNone       PendingAction = iota
	ActionCheckpoint               // Log the open segment, keep working
	ActionComplete                 // Log the final segment
	ActionCancel                   // Drop the open segment
	ActionRemove                   // Delete the todo line
)

// String returns a human-readable description of the action.
func (a PendingAction) String() string {
	switch a {
	case ActionNone:
		return ""
	case ActionCheckpoint:
		return "checkpoint"
	case ActionComplete:
		return "complete"
	case ActionCancel:
		return "cancel"
	case ActionRemove:
		return "remove"
	}
	return ""
}
