package shared

import (
	"testing"
	"time"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worklogEntry(id string, started time.Time, secs int64, comment string) domain.WorklogEntry {
	return domain.WorklogEntry{ID: id, Started: started, TimeSpentSeconds: secs, Comment: comment}
}

func TestBuildLedger_KeepsFirstTagAndSkipsUntagged(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ledger := BuildLedger([]domain.WorklogEntry{
		worklogEntry("1", at, 60, "meeting"),
		worklogEntry("2", at, 30, "b [todo #2 seg 1]"),
		worklogEntry("3", at, 10, "a [todo #1 seg 1 done]"),
		worklogEntry("4", at, 99, "again [todo #2 seg 1]"),
	})

	require.Len(t, ledger, 2)
	assert.Equal(t, 1, ledger[0].Tag.TodoID)
	assert.Equal(t, "2", ledger[1].Entry.ID)
	assert.Equal(t, "b", ledger[1].Comment)
}

func TestLedgerHighWater(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, LedgerHighWater(nil))
	assert.Equal(t, 5, LedgerHighWater([]domain.WorklogEntry{
		worklogEntry("1", at, 60, "meeting #9"),
		worklogEntry("2", at, 30, "x [todo #5 seg 2 pause]"),
		worklogEntry("3", at, 10, "y [todo #3 seg 1]"),
	}))
}

func TestFoldLedger_AppliesSegmentStartedAtOpenSegment(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	todo := &domain.Todo{ID: 2, Text: "B", Session: domain.WorkSession{State: domain.SessionActive, SegmentStart: start}}
	ledger := BuildLedger([]domain.WorklogEntry{
		worklogEntry("1", start, 40, "first [todo #2 seg 1]"),
		worklogEntry("2", start.Add(40*time.Second), 20, "second [todo #2 seg 2 pause]"),
	})

	folded := FoldLedger(todo, ledger)
	assert.Len(t, folded, 2)
	assert.Equal(t, domain.SessionPaused, todo.Session.State)
	assert.Equal(t, int64(60), todo.Session.Accumulated)
	assert.Equal(t, 2, todo.Session.Segments)
}

func TestFoldLedger_SkipsEntriesOfEarlierTodoWithSameID(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	todo := &domain.Todo{ID: 2, Text: "Brand new", Session: domain.WorkSession{State: domain.SessionActive, SegmentStart: start}}
	ledger := BuildLedger([]domain.WorklogEntry{
		worklogEntry("1", start.Add(-time.Hour), 600, "old [todo #2 seg 1]"),
		worklogEntry("2", start.Add(-50*time.Minute), 300, "old [todo #2 seg 2 done]"),
	})

	folded := FoldLedger(todo, ledger)
	assert.Empty(t, folded)
	assert.Equal(t, domain.SessionActive, todo.Session.State)
	assert.False(t, todo.Completed)
	assert.Equal(t, 0, todo.Session.Segments)
}

func TestFoldLedger_ToleratesMillisecondStartPrecision(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 123_456_789, time.UTC)
	todo := &domain.Todo{ID: 1, Text: "A", Session: domain.WorkSession{State: domain.SessionActive, SegmentStart: start}}
	ledger := BuildLedger([]domain.WorklogEntry{
		worklogEntry("1", start.Truncate(time.Millisecond), 5, "cp [todo #1 seg 1]"),
	})

	assert.Len(t, FoldLedger(todo, ledger), 1)
	assert.Equal(t, domain.SessionCheckpointed, todo.Session.State)
}

func TestFoldLedger_ExplicitTimeReopensAtNextEntry(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	todo := &domain.Todo{ID: 1, Text: "A", Session: domain.WorkSession{State: domain.SessionActive, SegmentStart: start}}
	ledger := BuildLedger([]domain.WorklogEntry{
		// Logged as one hour after two minutes of measured work.
		worklogEntry("1", start, 3600, "cp [todo #1 seg 1]"),
		worklogEntry("2", start.Add(2*time.Minute), 60, "cp [todo #1 seg 2]"),
	})

	folded := FoldLedger(todo, ledger)
	assert.Len(t, folded, 2)
	assert.Equal(t, int64(3660), todo.Session.Accumulated)
	assert.True(t, todo.Session.SegmentStart.Equal(start.Add(3*time.Minute)))
}
