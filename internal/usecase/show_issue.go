package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// ShowIssueInput contains the parameters for showing an issue.
type ShowIssueInput struct {
	IssueKey string // Issue to show (required)
}

// ShowIssueOutput contains the issue description and its time summary.
// Fields are ordered to minimize memory padding.
type ShowIssueOutput struct {
	Description   string               // Raw description
	Todos         []domain.Todo        // Parsed todos in document order
	Ledger        []domain.LedgerEntry // Worklog entries written by todo sessions
	LoggedSeconds int64                // Sum of Ledger
	OtherEntries  int                  // Worklog entries not tied to a todo
}

// ShowIssue reads an issue's description together with its worklog.
type ShowIssue struct {
	editor  *shared.Editor
	worklog domain.WorklogAPI
}

// NewShowIssue creates a new ShowIssue use case.
func NewShowIssue(editor *shared.Editor, worklog domain.WorklogAPI) *ShowIssue {
	return &ShowIssue{
		editor:  editor,
		worklog: worklog,
	}
}

// Execute returns the description, todos and logged time.
func (uc *ShowIssue) Execute(ctx context.Context, in ShowIssueInput) (*ShowIssueOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}

	list, doc, err := uc.editor.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("show issue: %w", err)
	}
	entries, err := uc.worklog.ListWorklogs(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("show issue: list worklogs: %w", err)
	}
	ledger := shared.BuildLedger(entries)

	out := &ShowIssueOutput{
		Description:   doc,
		Ledger:        ledger,
		LoggedSeconds: domain.SumSeconds(ledger),
		OtherEntries:  len(entries) - len(ledger),
	}
	for _, t := range list.Todos {
		out.Todos = append(out.Todos, *t)
	}
	return out, nil
}
