package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// SetTodoStatusInput contains the parameters for checking or unchecking a todo.
// Fields are ordered to minimize memory padding.
type SetTodoStatusInput struct {
	IssueKey  string // Issue owning the checklist (required)
	Ref       string // Todo reference: 1-based index or #id (required)
	Completed bool   // Desired checkbox state
}

// SetTodoStatusOutput contains the updated todo.
// Fields are ordered to minimize memory padding.
type SetTodoStatusOutput struct {
	Todo    domain.Todo
	Changed bool // False when the todo already had the requested state
}

// SetTodoStatus toggles a todo's checkbox. Work sessions are not touched.
type SetTodoStatus struct {
	editor *shared.Editor
	logger domain.Logger
}

// NewSetTodoStatus creates a new SetTodoStatus use case.
func NewSetTodoStatus(editor *shared.Editor, logger domain.Logger) *SetTodoStatus {
	return &SetTodoStatus{
		editor: editor,
		logger: logger,
	}
}

// Execute sets the checkbox of the referenced todo.
func (uc *SetTodoStatus) Execute(ctx context.Context, in SetTodoStatusInput) (*SetTodoStatusOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}
	ref, err := domain.ParseTodoRef(in.Ref)
	if err != nil {
		return nil, err
	}

	out := &SetTodoStatusOutput{}
	_, err = uc.editor.Edit(ctx, key, func(_ context.Context, list *checklist.List, _ int) error {
		todo, err := resolve(key, ref, list)
		if err != nil {
			return err
		}
		// Retries address the same todo even if positions moved.
		ref = domain.TodoRef{Raw: ref.Raw, ID: todo.ID}
		out.Changed = todo.Completed != in.Completed
		todo.Completed = in.Completed
		out.Todo = *todo
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set todo status: %w", err)
	}

	if out.Changed {
		verb := "unchecked"
		if in.Completed {
			verb = "checked"
		}
		uc.logger.Info(key, "todo", fmt.Sprintf("%s todo %s", verb, out.Todo.Ref()))
	}
	return out, nil
}
