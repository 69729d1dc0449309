package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// AddTodoInput contains the parameters for adding a todo.
// Fields are ordered to minimize memory padding.
type AddTodoInput struct {
	IssueKey string // Issue owning the checklist (required)
	Text     string // Todo text (required, single line)
	Prepend  bool   // Insert before the existing todos instead of after
}

// AddTodoOutput contains the result of adding a todo.
type AddTodoOutput struct {
	Todo domain.Todo // The created todo
}

// AddTodo is the use case for adding a todo to an issue's checklist.
type AddTodo struct {
	editor *shared.Editor
	clock  domain.Clock
	logger domain.Logger
}

// NewAddTodo creates a new AddTodo use case.
func NewAddTodo(editor *shared.Editor, clock domain.Clock, logger domain.Logger) *AddTodo {
	return &AddTodo{
		editor: editor,
		clock:  clock,
		logger: logger,
	}
}

// Execute adds a todo with a freshly allocated id.
func (uc *AddTodo) Execute(ctx context.Context, in AddTodoInput) (*AddTodoOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}
	text, err := normalizeText(in.Text)
	if err != nil {
		return nil, err
	}

	var added *domain.Todo
	_, err = uc.editor.Edit(ctx, key, func(_ context.Context, list *checklist.List, _ int) error {
		added = &domain.Todo{
			ID:        list.Allocate(),
			Text:      text,
			CreatedAt: uc.clock.Now().UTC().Truncate(time.Second),
		}
		insertTodos(list, []*domain.Todo{added}, in.Prepend)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add todo: %w", err)
	}

	uc.logger.Info(key, "todo", fmt.Sprintf("added todo %s: %s", added.Ref(), added.Text))
	return &AddTodoOutput{Todo: *added}, nil
}
