package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// CompleteTodoWorkInput contains the parameters for completing work on a todo.
// Fields are ordered to minimize memory padding.
type CompleteTodoWorkInput struct {
	MarkCompleted *bool  // Check the todo; nil uses the configured default
	IssueKey      string // Issue owning the checklist (required)
	Ref           string // Todo reference: 1-based index or #id (required)
	Comment       string // Worklog comment; empty uses "Work on todo: <text>"
	TimeSpent     string // Explicit time spent; empty uses the measured time
}

// CompleteTodoWork logs the final segment and closes the session.
type CompleteTodoWork struct {
	sessions      *shared.WorkSessionManager
	logger        domain.Logger
	markCompleted bool
}

// NewCompleteTodoWork creates a new CompleteTodoWork use case.
// markCompleted is the default for inputs that leave MarkCompleted unset.
func NewCompleteTodoWork(sessions *shared.WorkSessionManager, logger domain.Logger, markCompleted bool) *CompleteTodoWork {
	return &CompleteTodoWork{
		sessions:      sessions,
		logger:        logger,
		markCompleted: markCompleted,
	}
}

// Execute completes the session.
func (uc *CompleteTodoWork) Execute(ctx context.Context, in CompleteTodoWorkInput) (*CloseOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}
	ref, err := domain.ParseTodoRef(in.Ref)
	if err != nil {
		return nil, err
	}
	opts, err := closeOptions(in.Comment, in.TimeSpent)
	if err != nil {
		return nil, err
	}
	mark := uc.markCompleted
	if in.MarkCompleted != nil {
		mark = *in.MarkCompleted
	}

	res, err := uc.sessions.Complete(ctx, key, ref, opts, mark)
	if err != nil {
		return nil, fmt.Errorf("complete todo: %w", err)
	}

	uc.logger.Info(key, "session", fmt.Sprintf("completed todo %s: logged %s (total %s)",
		res.Todo.Ref(), domain.FormatDuration(res.Seconds), domain.FormatDuration(res.Todo.Session.Accumulated)))
	return newCloseOutput(res), nil
}
