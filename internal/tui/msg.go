package tui

import (
	"time"

	"github.com/runoshun/todolog/internal/domain"
)

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTodosLoaded is sent when the checklist is read from the store.
type MsgTodosLoaded struct {
	Todos     []domain.Todo
	Completed int
}

func (MsgTodosLoaded) sealed() {}

// MsgActionDone is sent after a todo or session operation succeeded.
// Notice is shown in the status line until the next action.
type MsgActionDone struct {
	Notice string
}

func (MsgActionDone) sealed() {}

// MsgError is sent when an error occurs.
type MsgError struct {
	Err error
}

func (MsgError) sealed() {}

// MsgClearError is sent to clear the current error.
type MsgClearError struct{}

func (MsgClearError) sealed() {}

// MsgTick is sent every second so running segments keep counting.
type MsgTick struct {
	Now time.Time
}

func (MsgTick) sealed() {}
