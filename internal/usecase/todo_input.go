// Package usecase contains the application use cases.
package usecase

import (
	"strings"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
)

// requireIssue trims the issue key and rejects an empty one.
func requireIssue(issueKey string) (string, error) {
	key := strings.TrimSpace(issueKey)
	if key == "" {
		return "", domain.ErrNoIssue
	}
	return key, nil
}

// normalizeText validates todo text for a single checklist line.
func normalizeText(text string) (string, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", domain.ErrEmptyText
	}
	if strings.ContainsAny(t, "\r\n") {
		return "", domain.ErrMultilineTodoRejected
	}
	return t, nil
}

// insertTodos places new todos at the front or the back of the list and
// renumbers positions.
func insertTodos(list *checklist.List, todos []*domain.Todo, prepend bool) {
	if prepend {
		list.Todos = append(append([]*domain.Todo{}, todos...), list.Todos...)
	} else {
		list.Todos = append(list.Todos, todos...)
	}
	renumber(list)
}

func renumber(list *checklist.List) {
	for i, t := range list.Todos {
		t.Order = i + 1
	}
}

// resolve finds the referenced todo and wraps failures with the todo context.
func resolve(issueKey string, ref domain.TodoRef, list *checklist.List) (*domain.Todo, error) {
	todo, err := ref.Resolve(list.Todos)
	if err != nil {
		return nil, domain.NewTodoError(issueKey, ref, nil, err)
	}
	return todo, nil
}
