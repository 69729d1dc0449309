package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// StartTodoWorkInput contains the parameters for starting work on a todo.
type StartTodoWorkInput struct {
	IssueKey string // Issue owning the checklist (required)
	Ref      string // Todo reference: 1-based index or #id (required)
}

// StartTodoWorkOutput contains the started todo.
type StartTodoWorkOutput struct {
	Todo   domain.Todo
	Folded int // Segments recovered from the worklog before starting
}

// StartTodoWork opens a work segment on a todo.
// A paused todo is resumed.
type StartTodoWork struct {
	sessions *shared.WorkSessionManager
	logger   domain.Logger
}

// NewStartTodoWork creates a new StartTodoWork use case.
func NewStartTodoWork(sessions *shared.WorkSessionManager, logger domain.Logger) *StartTodoWork {
	return &StartTodoWork{
		sessions: sessions,
		logger:   logger,
	}
}

// Execute starts the session.
func (uc *StartTodoWork) Execute(ctx context.Context, in StartTodoWorkInput) (*StartTodoWorkOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}
	ref, err := domain.ParseTodoRef(in.Ref)
	if err != nil {
		return nil, err
	}

	res, err := uc.sessions.Start(ctx, key, ref)
	if err != nil {
		return nil, fmt.Errorf("start todo: %w", err)
	}

	uc.logger.Info(key, "session", fmt.Sprintf("started todo %s: %s", res.Todo.Ref(), res.Todo.Text))
	return &StartTodoWorkOutput{Todo: res.Todo, Folded: res.Folded}, nil
}
