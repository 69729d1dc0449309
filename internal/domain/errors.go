package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors.
var (
	ErrTodoNotFound          = errors.New("todo not found")
	ErrDuplicateTodoID       = errors.New("duplicate todo id")
	ErrParse                 = errors.New("malformed checklist")
	ErrAlreadyActive         = errors.New("work session already active")
	ErrNotActive             = errors.New("no active work session")
	// ErrNotCheckpointed is reserved. Complete accepts active and checkpointed
	// sessions alike, so nothing returns it yet.
	ErrNotCheckpointed       = errors.New("work session not checkpointed")
	ErrTodoAlreadyCompleted  = errors.New("todo already completed")
	ErrVersionConflict       = errors.New("description changed concurrently")
	ErrWorklogEmitFailed     = errors.New("worklog emit failed")
	ErrStoreUnavailable      = errors.New("document store unavailable")
	ErrIssueNotFound         = errors.New("issue not found")
	ErrSegmentTooLong        = errors.New("segment exceeds maximum length; provide explicit time spent")
	ErrInvalidTodoRef        = errors.New("invalid todo reference (use a 1-based index or #id)")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrEmptyText             = errors.New("todo text cannot be empty")
	ErrNoIssue               = errors.New("no issue key given and no default_issue configured")
	ErrInvalidDurationInput  = errors.New("invalid duration")
	ErrConfigExists          = errors.New("config file already exists")
	ErrUnknownStoreBackend   = errors.New("unknown store backend")
	ErrMultilineTodoRejected = errors.New("todo text must be a single line")
	ErrNoLogs                = errors.New("no log file")
	ErrNotGitRepository      = errors.New("not a git repository")
	ErrSyncUnsupported       = errors.New("store backend does not support sync")
)

// TodoError carries the context of a failed todo operation.
// It unwraps to one of the sentinel errors above.
// Fields are ordered to minimize memory padding.
type TodoError struct {
	Err      error
	IssueKey string
	Ref      string
	State    SessionState
	TodoID   int
}

func (e *TodoError) Error() string {
	var b strings.Builder
	b.WriteString(e.IssueKey)
	if e.TodoID > 0 {
		fmt.Fprintf(&b, " todo #%d", e.TodoID)
	} else if e.Ref != "" {
		fmt.Fprintf(&b, " todo %s", e.Ref)
	}
	if e.TodoID > 0 {
		fmt.Fprintf(&b, " (%s)", e.State.Display())
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *TodoError) Unwrap() error {
	return e.Err
}

// NewTodoError wraps err with the todo's context.
func NewTodoError(issueKey string, ref TodoRef, todo *Todo, err error) *TodoError {
	te := &TodoError{Err: err, IssueKey: issueKey, Ref: ref.String()}
	if todo != nil {
		te.TodoID = todo.ID
		te.State = todo.Session.State
	}
	return te
}
