package shared

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
)

// maxConflictRetries is how often a write is retried after a version conflict.
const maxConflictRetries = 1

// EditFunc mutates a freshly parsed list. It runs again on every retry, so it
// must derive its changes from the list it is given. attempt starts at 0.
type EditFunc func(ctx context.Context, list *checklist.List, attempt int) error

// EditResult is the outcome of an edit.
type EditResult struct {
	List    *checklist.List // List as written (or as read when nothing changed)
	Version string          // Version the edit was based on
	Written bool            // False when the document was already up to date
}

// Editor runs parse, mutate, render and conditional write under the issue lock.
type Editor struct {
	docs     domain.DocumentStore
	worklogs domain.WorklogAPI // Optional; keeps ids tagged in the worklog from being allocated again
	codec    *checklist.Codec
	locks    *IssueLocks
	logger   domain.Logger
}

// NewEditor creates a new Editor.
// When docs also serves the worklog, new ids are allocated above every todo id
// tagged there.
func NewEditor(docs domain.DocumentStore, codec *checklist.Codec, locks *IssueLocks, logger domain.Logger) *Editor {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	worklogs, _ := docs.(domain.WorklogAPI)
	return &Editor{
		docs:     docs,
		worklogs: worklogs,
		codec:    codec,
		locks:    locks,
		logger:   logger,
	}
}

// Read parses the issue's todo list without locking.
func (e *Editor) Read(ctx context.Context, issueKey string) (*checklist.List, string, error) {
	doc, _, err := e.docs.GetDescription(ctx, issueKey)
	if err != nil {
		return nil, "", fmt.Errorf("get description: %w", err)
	}
	list, err := e.codec.Parse(doc)
	if err != nil {
		return nil, "", fmt.Errorf("parse %s: %w", issueKey, err)
	}
	bindIssue(list, issueKey)
	return list, doc, nil
}

// Edit applies fn to the issue's todo list and writes the result back.
// A version conflict re-reads the document and re-applies fn once before
// ErrVersionConflict is returned. When fn fails nothing is written.
func (e *Editor) Edit(ctx context.Context, issueKey string, fn EditFunc) (*EditResult, error) {
	release, err := e.locks.Acquire(ctx, issueKey)
	if err != nil {
		return nil, err
	}
	defer release()

	for attempt := 0; ; attempt++ {
		doc, version, err := e.docs.GetDescription(ctx, issueKey)
		if err != nil {
			return nil, fmt.Errorf("get description: %w", err)
		}
		list, err := e.codec.Parse(doc)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", issueKey, err)
		}
		bindIssue(list, issueKey)

		var floorErr error
		if e.worklogs != nil {
			list.SetFloor(func() int {
				high, err := e.taggedHighWater(ctx, issueKey)
				floorErr = err
				return high
			})
		}

		if err := fn(ctx, list, attempt); err != nil {
			return nil, err
		}
		if floorErr != nil {
			return nil, floorErr
		}

		out, err := e.codec.Render(list, doc)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", issueKey, err)
		}
		if out == doc {
			return &EditResult{List: list, Version: version}, nil
		}

		// A cancelled call must not start the write.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err = e.docs.SetDescription(ctx, issueKey, out, version)
		if err == nil {
			e.logger.Debug(issueKey, "edit", fmt.Sprintf("description written (base version %q)", version))
			return &EditResult{List: list, Version: version, Written: true}, nil
		}
		if errors.Is(err, domain.ErrVersionConflict) && attempt < maxConflictRetries {
			e.logger.Warn(issueKey, "edit", "version conflict, retrying")
			continue
		}
		return nil, fmt.Errorf("set description: %w", err)
	}
}

// taggedHighWater is the highest todo id the issue's worklog refers to.
func (e *Editor) taggedHighWater(ctx context.Context, issueKey string) (int, error) {
	entries, err := e.worklogs.ListWorklogs(ctx, issueKey)
	if err != nil {
		return 0, fmt.Errorf("list worklogs: %w", err)
	}
	return LedgerHighWater(entries), nil
}

func bindIssue(list *checklist.List, issueKey string) {
	for _, t := range list.Todos {
		t.Session.IssueKey = issueKey
		t.Session.TodoID = t.ID
	}
}
