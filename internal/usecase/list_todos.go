package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// ListTodosInput contains the parameters for listing todos.
type ListTodosInput struct {
	IssueKey string            // Issue owning the checklist (required)
	Status   domain.TodoStatus // Filter; empty lists every todo
}

// ListTodosOutput contains the listed todos.
// Fields are ordered to minimize memory padding.
type ListTodosOutput struct {
	Todos     []domain.Todo // Matching todos in document order
	Total     int           // Number of todos before filtering
	Completed int           // Number of checked todos
}

// ListTodos is the use case for listing an issue's todos.
type ListTodos struct {
	editor *shared.Editor
}

// NewListTodos creates a new ListTodos use case.
func NewListTodos(editor *shared.Editor) *ListTodos {
	return &ListTodos{editor: editor}
}

// Execute returns the todos of the issue, optionally filtered by status.
func (uc *ListTodos) Execute(ctx context.Context, in ListTodosInput) (*ListTodosOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}

	list, _, err := uc.editor.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	out := &ListTodosOutput{Total: len(list.Todos)}
	for _, t := range list.Todos {
		if t.Completed {
			out.Completed++
		}
		if in.Status != "" && t.Status() != in.Status {
			continue
		}
		out.Todos = append(out.Todos, *t)
	}
	return out, nil
}
