package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/usecase/shared"
)

// SeedTodosInput contains the parameters for adding several todos at once.
// Fields are ordered to minimize memory padding.
type SeedTodosInput struct {
	IssueKey string   // Issue owning the checklist (required)
	Texts    []string // Todo texts in the order they should appear
	Prepend  bool     // Insert before the existing todos instead of after
}

// SeedTodosOutput contains the created todos.
type SeedTodosOutput struct {
	Todos []domain.Todo
}

// SeedTodos adds several todos in a single document write.
type SeedTodos struct {
	editor *shared.Editor
	clock  domain.Clock
	logger domain.Logger
}

// NewSeedTodos creates a new SeedTodos use case.
func NewSeedTodos(editor *shared.Editor, clock domain.Clock, logger domain.Logger) *SeedTodos {
	return &SeedTodos{
		editor: editor,
		clock:  clock,
		logger: logger,
	}
}

// Execute validates every text before touching the document, so either all
// todos are added or none.
func (uc *SeedTodos) Execute(ctx context.Context, in SeedTodosInput) (*SeedTodosOutput, error) {
	key, err := requireIssue(in.IssueKey)
	if err != nil {
		return nil, err
	}
	if len(in.Texts) == 0 {
		return nil, domain.ErrEmptyText
	}
	texts := make([]string, 0, len(in.Texts))
	for i, raw := range in.Texts {
		text, err := normalizeText(raw)
		if err != nil {
			return nil, fmt.Errorf("todo %d: %w", i+1, err)
		}
		texts = append(texts, text)
	}

	var added []*domain.Todo
	_, err = uc.editor.Edit(ctx, key, func(_ context.Context, list *checklist.List, _ int) error {
		created := uc.clock.Now().UTC().Truncate(time.Second)
		added = make([]*domain.Todo, 0, len(texts))
		for _, text := range texts {
			added = append(added, &domain.Todo{ID: list.Allocate(), Text: text, CreatedAt: created})
		}
		insertTodos(list, added, in.Prepend)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("seed todos: %w", err)
	}

	out := &SeedTodosOutput{Todos: make([]domain.Todo, 0, len(added))}
	for _, t := range added {
		out.Todos = append(out.Todos, *t)
	}
	uc.logger.Info(key, "todo", fmt.Sprintf("seeded %d todos", len(out.Todos)))
	return out, nil
}
