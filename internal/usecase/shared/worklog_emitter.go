package shared

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/runoshun/todolog/internal/domain"
)

// WorklogEmitter turns closed segments into worklog API calls.
type WorklogEmitter struct {
	api    domain.WorklogAPI
	logger domain.Logger
}

// NewWorklogEmitter creates a new WorklogEmitter.
func NewWorklogEmitter(api domain.WorklogAPI, logger domain.Logger) *WorklogEmitter {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &WorklogEmitter{api: api, logger: logger}
}

// Emit appends one worklog entry for the segment.
// The segment tag is appended to the comment so the entry can be recognized later.
// Errors wrap domain.ErrWorklogEmitFailed.
func (e *WorklogEmitter) Emit(ctx context.Context, seg domain.Segment) (*domain.WorklogEntry, error) {
	in := domain.WorklogInput{
		Started: seg.Start,
		Comment: seg.Tag().AppendTo(seg.Comment),
		Seconds: seg.Seconds,
	}
	entry, err := e.api.AppendWorklog(ctx, seg.IssueKey, in)
	if err != nil {
		e.logger.Error(seg.IssueKey, "worklog", fmt.Sprintf("emit %s failed: %v", seg.Tag(), err))
		return nil, fmt.Errorf("%w: %w", domain.ErrWorklogEmitFailed, err)
	}
	e.logger.Info(seg.IssueKey, "worklog",
		fmt.Sprintf("logged %s for %s (worklog %s)", domain.FormatDuration(seg.Seconds), seg.Tag(), entry.ID))
	return entry, nil
}

// Ledger returns the issue's tagged worklog entries ordered by todo and segment.
// Entries without a segment tag were not written by this tool and are skipped.
func (e *WorklogEmitter) Ledger(ctx context.Context, issueKey string) ([]domain.LedgerEntry, error) {
	entries, err := e.api.ListWorklogs(ctx, issueKey)
	if err != nil {
		return nil, fmt.Errorf("list worklogs: %w", err)
	}
	return BuildLedger(entries), nil
}

// BuildLedger extracts tagged entries. Duplicate tags keep the first entry.
func BuildLedger(entries []domain.WorklogEntry) []domain.LedgerEntry {
	ledger := make([]domain.LedgerEntry, 0, len(entries))
	seen := make(map[[2]int]bool)
	for _, entry := range entries {
		tag, comment, ok := domain.ParseSegmentTag(entry.Comment)
		if !ok {
			continue
		}
		key := [2]int{tag.TodoID, tag.Seq}
		if seen[key] {
			continue
		}
		seen[key] = true
		ledger = append(ledger, domain.LedgerEntry{Entry: entry, Comment: comment, Tag: tag})
	}
	sort.SliceStable(ledger, func(i, j int) bool {
		if ledger[i].Tag.TodoID != ledger[j].Tag.TodoID {
			return ledger[i].Tag.TodoID < ledger[j].Tag.TodoID
		}
		return ledger[i].Tag.Seq < ledger[j].Tag.Seq
	})
	return ledger
}

// ForTodo returns the ledger entries of one todo.
func ForTodo(ledger []domain.LedgerEntry, todoID int) []domain.LedgerEntry {
	var out []domain.LedgerEntry
	for _, le := range ledger {
		if le.Tag.TodoID == todoID {
			out = append(out, le)
		}
	}
	return out
}

// FoldLedger applies entries that were emitted for the todo's open session but
// never recorded in the document, e.g. because the document write failed.
// An entry only belongs to the open segment when it started where the segment
// did; entries left behind by an earlier todo with the same id are skipped.
// It returns the folded entries.
func FoldLedger(todo *domain.Todo, ledger []domain.LedgerEntry) []domain.LedgerEntry {
	var folded []domain.LedgerEntry
	for todo.Session.State.IsInProgress() {
		next, ok := findSegment(ledger, todo.ID, todo.Session.Segments+1)
		if !ok || !sameInstant(next.Entry.Started, todo.Session.SegmentStart) {
			break
		}
		secs := next.Entry.TimeSpentSeconds
		reopen := todo.Session.SegmentStart.Add(secsToDuration(secs))
		if after, ok := findSegment(ledger, todo.ID, todo.Session.Segments+2); ok && after.Entry.Started.After(next.Entry.Started) {
			// An explicit time spent reopens at the close instant, not at start plus seconds.
			reopen = after.Entry.Started
		}
		if err := todo.Session.CloseSegment(secs, next.Tag.Kind.NextState(), reopen); err != nil {
			break
		}
		if next.Tag.Kind == domain.SegmentDone {
			todo.Completed = true
		}
		folded = append(folded, next)
	}
	return folded
}

// sameInstant compares at millisecond precision, the finest a worklog backend keeps.
func sameInstant(a, b time.Time) bool {
	return a.Truncate(time.Millisecond).Equal(b.Truncate(time.Millisecond))
}

// LedgerHighWater returns the highest todo id tagged in the issue's worklog.
func LedgerHighWater(entries []domain.WorklogEntry) int {
	high := 0
	for _, entry := range entries {
		if tag, _, ok := domain.ParseSegmentTag(entry.Comment); ok {
			high = max(high, tag.TodoID)
		}
	}
	return high
}

func findSegment(ledger []domain.LedgerEntry, todoID, seq int) (domain.LedgerEntry, bool) {
	for _, le := range ledger {
		if le.Tag.TodoID == todoID && le.Tag.Seq == seq {
			return le, true
		}
	}
	return domain.LedgerEntry{}, false
}
