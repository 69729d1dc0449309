package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// CancelTodoWorkInput contains the parameters for cancelling a segment.
type CancelTodoWorkInput struct {
	IssueKey string // Issue owning the checklist (required)
	Ref      string // Todo reference: 1-based index or #id (required)
}

// CancelTodoWorkOutput contains the todo after cancelling.
type CancelTodoWorkOutput struct {
	Todo      domain.Todo
	Discarded time.Duration // Length of the dropped segment
}

// CancelTodoWork drops the open segment without logging it.
type CancelTodoWork struct {
	sessions *shared.WorkSessionManager
	logger   domain.Logger
}

// NewCancelTodoWork creates a new CancelTodoWork use case.
func NewCancelTodoWork(sessions *shared.WorkSessionManager, logger domain.Logger) *CancelTodoWork {
	return &CancelTodoWork{
		sessions: sessions,
		logger:   logger,
	}
}

// Execute cancels the open segment.
func (uc *CancelTodoWork) Execute(ctx context.Context, in CancelTodoWorkInput) (*CancelTodoWorkOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}
	ref, err := domain.ParseTodoRef(in.Ref)
	if err != nil {
		return nil, err
	}

	res, err := uc.sessions.Cancel(ctx, key, ref)
	if err != nil {
		return nil, fmt.Errorf("cancel todo: %w", err)
	}

	uc.logger.Info(key, "session", fmt.Sprintf("cancelled todo %s, discarded %s",
		res.Todo.Ref(), domain.FormatDuration(int64(res.Elapsed/time.Second))))
	return &CancelTodoWorkOutput{Todo: res.Todo, Discarded: res.Elapsed}, nil
}
