package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// RemoveTodoInput contains the parameters for removing a todo.
// Fields are ordered to minimize memory padding.
type RemoveTodoInput struct {
	IssueKey string // Issue owning the checklist (required)
	Ref      string // Todo reference: 1-based index or #id (required)
	Force    bool   // Remove even if a segment is open; its unlogged time is lost
}

// RemoveTodoOutput contains the removed todo.
type RemoveTodoOutput struct {
	Todo domain.Todo
}

// RemoveTodo deletes a todo line. Its id is never handed out again.
type RemoveTodo struct {
	editor *shared.Editor
	logger domain.Logger
}

// NewRemoveTodo creates a new RemoveTodo use case.
func NewRemoveTodo(editor *shared.Editor, logger domain.Logger) *RemoveTodo {
	return &RemoveTodo{
		editor: editor,
		logger: logger,
	}
}

// Execute removes the referenced todo.
func (uc *RemoveTodo) Execute(ctx context.Context, in RemoveTodoInput) (*RemoveTodoOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}
	ref, err := domain.ParseTodoRef(in.Ref)
	if err != nil {
		return nil, err
	}

	out := &RemoveTodoOutput{}
	_, err = uc.editor.Edit(ctx, key, func(_ context.Context, list *checklist.List, _ int) error {
		todo, err := resolve(key, ref, list)
		if err != nil {
			return err
		}
		ref = domain.TodoRef{Raw: ref.Raw, ID: todo.ID}
		if todo.Session.State.IsInProgress() && !in.Force {
			return domain.NewTodoError(key, ref, todo, domain.ErrAlreadyActive)
		}
		out.Todo = *todo
		list.Remove(todo.ID)
		renumber(list)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove todo: %w", err)
	}

	if out.Todo.Session.State.IsInProgress() {
		uc.logger.Warn(key, "todo", fmt.Sprintf("removed todo %s with an open segment", out.Todo.Ref()))
	} else {
		uc.logger.Info(key, "todo", fmt.Sprintf("removed todo %s", out.Todo.Ref()))
	}
	return out, nil
}
