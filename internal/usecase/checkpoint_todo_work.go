package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// CheckpointTodoWorkInput contains the parameters for a checkpoint.
type CheckpointTodoWorkInput struct {
	IssueKey  string // Issue owning the checklist (required)
	Ref       string // Todo reference: 1-based index or #id (required)
	Comment   string // Worklog comment; empty uses "Partial work on todo: <text>"
	TimeSpent string // Explicit time spent, e.g. "1h30m"; empty uses the measured time
}

// CheckpointTodoWork logs the open segment and keeps the todo in progress.
type CheckpointTodoWork struct {
	sessions *shared.WorkSessionManager
	logger   domain.Logger
}

// NewCheckpointTodoWork creates a new CheckpointTodoWork use case.
func NewCheckpointTodoWork(sessions *shared.WorkSessionManager, logger domain.Logger) *CheckpointTodoWork {
	return &CheckpointTodoWork{
		sessions: sessions,
		logger:   logger,
	}
}

// Execute closes the segment, logs it and opens the next one.
func (uc *CheckpointTodoWork) Execute(ctx context.Context, in CheckpointTodoWorkInput) (*CloseOutput, error) {
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

	res, err := uc.sessions.Checkpoint(ctx, key, ref, opts)
	if err != nil {
		return nil, fmt.Errorf("checkpoint todo: %w", err)
	}

	uc.logger.Info(key, "session", fmt.Sprintf("checkpoint todo %s: logged %s (total %s)",
		res.Todo.Ref(), domain.FormatDuration(res.Seconds), domain.FormatDuration(res.Todo.Session.Accumulated)))
	return newCloseOutput(res), nil
}
