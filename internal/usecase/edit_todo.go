package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// EditTodoInput contains the parameters for changing a todo's text.
type EditTodoInput struct {
	IssueKey string // Issue owning the checklist (required)
	Ref      string // Todo reference: 1-based index or #id (required)
	Text     string // New text (required, single line)
}

// EditTodoOutput contains the edited todo.
type EditTodoOutput struct {
	Todo    domain.Todo
	OldText string
}

// EditTodo is the use case for changing a todo's text. Its id and session are kept.
type EditTodo struct {
	editor *shared.Editor
	logger domain.Logger
}

// NewEditTodo creates a new EditTodo use case.
func NewEditTodo(editor *shared.Editor, logger domain.Logger) *EditTodo {
	return &EditTodo{
		editor: editor,
		logger: logger,
	}
}

// Execute replaces the text of the referenced todo.
func (uc *EditTodo) Execute(ctx context.Context, in EditTodoInput) (*EditTodoOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}
	ref, err := domain.ParseTodoRef(in.Ref)
	if err != nil {
		return nil, err
	}
	text, err := normalizeText(in.Text)
	if err != nil {
		return nil, err
	}

	out := &EditTodoOutput{}
	_, err = uc.editor.Edit(ctx, key, func(_ context.Context, list *checklist.List, _ int) error {
		todo, err := resolve(key, ref, list)
		if err != nil {
			return err
		}
		ref = domain.TodoRef{Raw: ref.Raw, ID: todo.ID}
		out.OldText = todo.Text
		todo.Text = text
		out.Todo = *todo
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("edit todo: %w", err)
	}

	uc.logger.Info(key, "todo", fmt.Sprintf("edited todo %s: %q -> %q", out.Todo.Ref(), out.OldText, out.Todo.Text))
	return out, nil
}
