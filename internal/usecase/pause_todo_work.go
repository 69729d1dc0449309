package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// PauseTodoWorkInput contains the parameters for pausing work.
type PauseTodoWorkInput struct {
	IssueKey  string // Issue owning the checklist (required)
	Ref       string // Todo reference: 1-based index or #id (required)
	Comment   string // Worklog comment; empty uses "Partial work on todo: <text>"
	TimeSpent string // Explicit time spent; empty uses the measured time
}

// PauseTodoWork logs the open segment and leaves the todo paused.
type PauseTodoWork struct {
	sessions *shared.WorkSessionManager
	logger   domain.Logger
}

// NewPauseTodoWork creates a new PauseTodoWork use case.
func NewPauseTodoWork(sessions *shared.WorkSessionManager, logger domain.Logger) *PauseTodoWork {
	return &PauseTodoWork{
		sessions: sessions,
		logger:   logger,
	}
}

// Execute pauses the session.
func (uc *PauseTodoWork) Execute(ctx context.Context, in PauseTodoWorkInput) (*CloseOutput, error) {
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

	res, err := uc.sessions.Pause(ctx, key, ref, opts)
	if err != nil {
		return nil, fmt.Errorf("pause todo: %w", err)
	}

	uc.logger.Info(key, "session", fmt.Sprintf("paused todo %s: logged %s", res.Todo.Ref(), domain.FormatDuration(res.Seconds)))
	return newCloseOutput(res), nil
}
