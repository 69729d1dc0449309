package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// ListSessionsInput contains the parameters for listing work sessions.
// Fields are ordered to minimize memory padding.
type ListSessionsInput struct {
	IssueKey   string // Issue owning the checklist (required)
	ActiveOnly bool   // Only sessions with an open segment
}

// ListSessionsOutput contains the sessions of an issue.
type ListSessionsOutput struct {
	Sessions     []shared.SessionView
	TotalSeconds int64 // Logged seconds across the listed sessions
}

// ListSessions lists the todos that have a work session.
type ListSessions struct {
	sessions *shared.WorkSessionManager
}

// NewListSessions creates a new ListSessions use case.
func NewListSessions(sessions *shared.WorkSessionManager) *ListSessions {
	return &ListSessions{sessions: sessions}
}

// Execute returns the sessions with their worklog ledger.
func (uc *ListSessions) Execute(ctx context.Context, in ListSessionsInput) (*ListSessionsOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}

	views, err := uc.sessions.Sessions(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := &ListSessionsOutput{}
	for _, v := range views {
		if in.ActiveOnly && !v.Todo.Session.State.IsInProgress() {
			continue
		}
		out.Sessions = append(out.Sessions, v)
		out.TotalSeconds += domain.SumSeconds(v.Ledger)
	}
	return out, nil
}
