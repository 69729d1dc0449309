package usecase

import (
	"testing"
	"time"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/testutil"
	"github.com/runoshun/todolog/internal/usecase/shared"
	"github.com/stretchr/testify/require"
)

const (
	issue    = "PROJ-1"
	twoTodos = "Intro text.\n\n- [ ] A <!-- todo:1 -->\n- [ ] B <!-- todo:2 -->\n"
	created  = "2026-03-02T09:00:00Z"
)

type fixture struct {
	store    *testutil.MockIssueStore
	clock    *testutil.MockClock
	logger   *testutil.MockLogger
	editor   *shared.Editor
	sessions *shared.WorkSessionManager
}

func newFixture(t *testing.T, doc string) *fixture {
	t.Helper()
	store := testutil.NewMockIssueStore()
	if doc != "" {
		store.SetDoc(issue, doc)
	}
	clock := &testutil.MockClock{NowTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	logger := &testutil.MockLogger{}
	editor := shared.NewEditor(store, checklist.NewCodec(domain.DefaultSectionHeader), shared.NewIssueLocks(), logger)
	emitter := shared.NewWorklogEmitter(store, logger)
	return &fixture{
		store:    store,
		clock:    clock,
		logger:   logger,
		editor:   editor,
		sessions: shared.NewWorkSessionManager(editor, emitter, clock, logger, domain.DefaultMaxSegment),
	}
}

func (f *fixture) list(t *testing.T) *checklist.List {
	t.Helper()
	list, err := checklist.Parse(f.store.Doc(issue))
	require.NoError(t, err)
	return list
}

func (f *fixture) todo(t *testing.T, id int) *domain.Todo {
	t.Helper()
	todo := f.list(t).Find(id)
	require.NotNil(t, todo, "todo #%d", id)
	return todo
}
