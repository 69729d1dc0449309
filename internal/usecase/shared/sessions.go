package shared

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
)

// SessionResult is the outcome of a session operation.
// Fields are ordered to minimize memory padding.
type SessionResult struct {
	Todo      domain.Todo          // Todo after the operation
	Entry     *domain.WorklogEntry // Worklog entry logged or recovered by this call
	Elapsed   time.Duration        // Measured length of the closed or discarded segment
	Seconds   int64                // Logged seconds
	Folded    int                  // Ledger entries recovered into the document
	Recovered bool                 // The operation had already been logged by an earlier attempt
	Written   bool                 // The document was updated
}

// CloseOptions configures checkpoint, pause and complete.
type CloseOptions struct {
	Override *time.Duration // Explicit time spent instead of the measured segment
	Comment  string         // Worklog comment; empty uses the default
}

// SessionView is a read-only view of one todo's session.
// Fields are ordered to minimize memory padding.
type SessionView struct {
	Todo    domain.Todo
	Ledger  []domain.LedgerEntry // Tagged worklog entries of this todo, by segment
	Elapsed time.Duration        // Running segment length
	Pending int                  // Logged segments the document does not know about yet
}

// WorkSessionManager runs the per-todo time tracking state machine.
// Session state lives in the document; worklog entries are emitted before the
// document write, and entries whose write was lost are folded back in from the
// ledger on the next operation.
type WorkSessionManager struct {
	editor     *Editor
	emitter    *WorklogEmitter
	clock      domain.Clock
	logger     domain.Logger
	starts     map[string]time.Time // Monotonic segment starts keyed by issue#todo
	maxSegment time.Duration
	mu         sync.Mutex
}

// NewWorkSessionManager creates a new WorkSessionManager.
// A zero maxSegment disables the long segment guard.
func NewWorkSessionManager(editor *Editor, emitter *WorklogEmitter, clock domain.Clock, logger domain.Logger, maxSegment time.Duration) *WorkSessionManager {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &WorkSessionManager{
		editor:     editor,
		emitter:    emitter,
		clock:      clock,
		logger:     logger,
		starts:     make(map[string]time.Time),
		maxSegment: maxSegment,
	}
}

// sessionAction mutates the resolved todo. It returns sentinel errors; the
// caller attaches the todo context.
type sessionAction func(ctx context.Context, todo *domain.Todo, res *SessionResult) error

// recoverCheck reports whether folded ledger entries already complete the
// requested operation.
type recoverCheck func(todo *domain.Todo, folded []domain.LedgerEntry) bool

// Start opens a segment.
func (m *WorkSessionManager) Start(ctx context.Context, issueKey string, ref domain.TodoRef) (*SessionResult, error) {
	return m.run(ctx, issueKey, ref, nil, func(_ context.Context, todo *domain.Todo, _ *SessionResult) error {
		if todo.Completed {
			return domain.ErrTodoAlreadyCompleted
		}
		return todo.Session.Open(m.clock.Now())
	})
}

// Checkpoint logs the open segment and immediately opens the next one.
func (m *WorkSessionManager) Checkpoint(ctx context.Context, issueKey string, ref domain.TodoRef, opts CloseOptions) (*SessionResult, error) {
	recovered := func(todo *domain.Todo, folded []domain.LedgerEntry) bool {
		last := folded[len(folded)-1]
		return last.Tag.Kind == domain.SegmentCheckpoint &&
			strings.TrimSpace(last.Comment) == strings.TrimSpace(checkpointComment(todo, opts.Comment))
	}
	return m.run(ctx, issueKey, ref, recovered, m.closeAction(issueKey, domain.SegmentCheckpoint, opts))
}

// Pause logs the open segment without opening a new one.
func (m *WorkSessionManager) Pause(ctx context.Context, issueKey string, ref domain.TodoRef, opts CloseOptions) (*SessionResult, error) {
	recovered := func(todo *domain.Todo, _ []domain.LedgerEntry) bool {
		return todo.Session.State == domain.SessionPaused
	}
	return m.run(ctx, issueKey, ref, recovered, m.closeAction(issueKey, domain.SegmentPause, opts))
}

// Complete logs the final segment and closes the session.
// markCompleted also checks the todo.
func (m *WorkSessionManager) Complete(ctx context.Context, issueKey string, ref domain.TodoRef, opts CloseOptions, markCompleted bool) (*SessionResult, error) {
	kind := domain.SegmentFinal
	if markCompleted {
		kind = domain.SegmentDone
	}
	recovered := func(todo *domain.Todo, _ []domain.LedgerEntry) bool {
		return todo.Session.State.IsTerminal()
	}
	return m.run(ctx, issueKey, ref, recovered, m.closeAction(issueKey, kind, opts))
}

// Cancel discards the open segment without logging it.
func (m *WorkSessionManager) Cancel(ctx context.Context, issueKey string, ref domain.TodoRef) (*SessionResult, error) {
	return m.run(ctx, issueKey, ref, nil, func(_ context.Context, todo *domain.Todo, res *SessionResult) error {
		start := m.segmentStart(issueKey, todo)
		if err := todo.Session.Discard(); err != nil {
			return err
		}
		res.Elapsed = m.clock.Now().Sub(start)
		return nil
	})
}

// Sessions returns every todo that has a session, with its ledger.
func (m *WorkSessionManager) Sessions(ctx context.Context, issueKey string) ([]SessionView, error) {
	list, _, err := m.editor.Read(ctx, issueKey)
	if err != nil {
		return nil, err
	}
	ledger, err := m.emitter.Ledger(ctx, issueKey)
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	var views []SessionView
	for _, t := range list.Todos {
		entries := ForTodo(ledger, t.ID)
		if t.Session.State == domain.SessionNotStarted && len(entries) == 0 {
			continue
		}
		todo := *t
		folded := FoldLedger(&todo, entries)
		for _, le := range entries {
			if le.Tag.Seq <= todo.Session.Segments {
				todo.Session.CommentHistory = append(todo.Session.CommentHistory, le.Comment)
			}
		}
		view := SessionView{Todo: todo, Ledger: entries, Pending: len(folded)}
		if todo.Session.State.IsInProgress() {
			view.Elapsed = max(now.Sub(m.segmentStart(issueKey, &todo)), 0)
		}
		views = append(views, view)
	}
	return views, nil
}

func (m *WorkSessionManager) run(ctx context.Context, issueKey string, ref domain.TodoRef, recovered recoverCheck, act sessionAction) (*SessionResult, error) {
	var (
		res     *SessionResult
		pinned  = ref
		emitted *domain.WorklogEntry // Entry logged by an earlier attempt of this call
	)

	edit, err := m.editor.Edit(ctx, issueKey, func(ctx context.Context, list *checklist.List, attempt int) error {
		res = &SessionResult{}
		todo, err := pinned.Resolve(list.Todos)
		if err != nil {
			return domain.NewTodoError(issueKey, ref, nil, err)
		}
		// Retries address the same todo even if positions moved.
		pinned = domain.TodoRef{Raw: ref.Raw, ID: todo.ID}

		if todo.Session.State.IsInProgress() {
			ledger, err := m.emitter.Ledger(ctx, issueKey)
			if err != nil {
				return domain.NewTodoError(issueKey, ref, todo, err)
			}
			ledger = withEntry(ledger, emitted)
			folded := FoldLedger(todo, ForTodo(ledger, todo.ID))
			res.Folded = len(folded)

			if emitted != nil {
				if !containsTag(folded, emitted) {
					return domain.NewTodoError(issueKey, ref, todo, orphanError(emitted))
				}
				res.Entry, res.Seconds, res.Todo = emitted, emitted.TimeSpentSeconds, *todo
				return nil
			}
			if len(folded) > 0 {
				m.logger.Warn(issueKey, "session",
					fmt.Sprintf("todo %s: recovered %d logged segment(s) missing from the description", todo.Ref(), len(folded)))
				if recovered != nil && recovered(todo, folded) {
					last := folded[len(folded)-1].Entry
					res.Entry, res.Seconds, res.Recovered, res.Todo = &last, last.TimeSpentSeconds, true, *todo
					return nil
				}
			}
		} else if emitted != nil {
			// Another writer changed the session after this call logged its segment.
			return domain.NewTodoError(issueKey, ref, todo, orphanError(emitted))
		}

		if err := act(ctx, todo, res); err != nil {
			var te *domain.TodoError
			if errors.As(err, &te) {
				return err
			}
			return domain.NewTodoError(issueKey, ref, todo, err)
		}
		if res.Entry != nil {
			emitted = res.Entry
		}
		res.Todo = *todo
		return nil
	})
	if err != nil {
		return nil, err
	}

	res.Written = edit.Written
	m.rememberStart(issueKey, &res.Todo)
	return res, nil
}

// closeAction closes the open segment as kind and emits its worklog entry.
// Nothing is mutated unless the emit succeeds.
func (m *WorkSessionManager) closeAction(issueKey string, kind domain.SegmentKind, opts CloseOptions) sessionAction {
	return func(ctx context.Context, todo *domain.Todo, res *SessionResult) error {
		s := &todo.Session
		if err := s.State.CheckTransition(kind.NextState()); err != nil {
			return err
		}

		now := m.clock.Now()
		start := m.segmentStart(issueKey, todo)
		secs, reopen := domain.CloseSegment(start, now)
		res.Elapsed = now.Sub(start)

		if opts.Override != nil {
			measured := secs
			secs = int64(*opts.Override / time.Second)
			reopen = now
			if drift(measured, secs) > 0.2 {
				m.logger.Warn(issueKey, "session", fmt.Sprintf("todo %s: explicit time %s differs from measured %s",
					todo.Ref(), domain.FormatDuration(secs), domain.FormatDuration(measured)))
			}
		} else if m.maxSegment > 0 && res.Elapsed > m.maxSegment {
			return fmt.Errorf("segment running for %s (limit %s): %w",
				domain.FormatDuration(secs), domain.FormatDuration(int64(m.maxSegment/time.Second)), domain.ErrSegmentTooLong)
		}

		comment := opts.Comment
		if kind == domain.SegmentCheckpoint || kind == domain.SegmentPause {
			comment = checkpointComment(todo, comment)
		} else {
			comment = completeComment(todo, comment)
		}

		entry, err := m.emitter.Emit(ctx, domain.Segment{
			Start:    start,
			IssueKey: issueKey,
			Comment:  comment,
			Kind:     kind,
			Seconds:  secs,
			TodoID:   todo.ID,
			Seq:      s.Segments + 1,
		})
		if err != nil {
			return err
		}

		res.Entry = entry
		res.Seconds = secs
		if err := s.CloseSegment(secs, kind.NextState(), reopen); err != nil {
			return err
		}
		s.CommentHistory = append(s.CommentHistory, comment)
		if kind == domain.SegmentDone {
			todo.Completed = true
		}
		return nil
	}
}

// segmentStart prefers the in-process start, which carries a monotonic clock
// reading, as long as it matches the persisted one.
func (m *WorkSessionManager) segmentStart(issueKey string, todo *domain.Todo) time.Time {
	persisted := todo.Session.SegmentStart
	m.mu.Lock()
	defer m.mu.Unlock()
	if cached, ok := m.starts[startKey(issueKey, todo.ID)]; ok && cached.Equal(persisted) {
		return cached
	}
	return persisted
}

func (m *WorkSessionManager) rememberStart(issueKey string, todo *domain.Todo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := startKey(issueKey, todo.ID)
	if todo.Session.State.IsInProgress() {
		m.starts[key] = todo.Session.SegmentStart
		return
	}
	delete(m.starts, key)
}

func startKey(issueKey string, todoID int) string {
	return issueKey + "#" + strconv.Itoa(todoID)
}

// checkpointComment is the worklog comment for checkpoint and pause.
func checkpointComment(todo *domain.Todo, comment string) string {
	if strings.TrimSpace(comment) != "" {
		return strings.TrimSpace(comment)
	}
	return "Partial work on todo: " + todo.Text
}

func completeComment(todo *domain.Todo, comment string) string {
	if strings.TrimSpace(comment) != "" {
		return strings.TrimSpace(comment)
	}
	return "Work on todo: " + todo.Text
}

func withEntry(ledger []domain.LedgerEntry, entry *domain.WorklogEntry) []domain.LedgerEntry {
	if entry == nil {
		return ledger
	}
	tag, comment, ok := domain.ParseSegmentTag(entry.Comment)
	if !ok {
		return ledger
	}
	if _, found := findSegment(ledger, tag.TodoID, tag.Seq); found {
		return ledger
	}
	return append(ledger, domain.LedgerEntry{Entry: *entry, Comment: comment, Tag: tag})
}

func containsTag(ledger []domain.LedgerEntry, entry *domain.WorklogEntry) bool {
	tag, _, ok := domain.ParseSegmentTag(entry.Comment)
	if !ok {
		return false
	}
	_, found := findSegment(ledger, tag.TodoID, tag.Seq)
	return found
}

func orphanError(entry *domain.WorklogEntry) error {
	return fmt.Errorf("%w: segment was logged as worklog %s but the session changed concurrently",
		domain.ErrVersionConflict, entry.ID)
}

func drift(measured, explicit int64) float64 {
	if measured <= 0 {
		return 0
	}
	d := float64(explicit-measured) / float64(measured)
	if d < 0 {
		d = -d
	}
	return d
}

func secsToDuration(secs int64) time.Duration {
	return time.Duration(secs) * time.Second
}
