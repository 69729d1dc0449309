package shared

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/runoshun/todolog/internal/checklist"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoTodos = "- [ ] A <!-- todo:1 -->\n- [ ] B <!-- todo:2 -->\n"

func newTestEditor(store *testutil.MockIssueStore) *Editor {
	return NewEditor(store, checklist.NewCodec(""), NewIssueLocks(), nil)
}

func addTodo(text string) EditFunc {
	return func(_ context.Context, list *checklist.List, _ int) error {
		list.Todos = append(list.Todos, &domain.Todo{ID: list.Allocate(), Text: text})
		return nil
	}
}

func TestEditor_Edit_Writes(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", twoTodos)
	editor := newTestEditor(store)

	res, err := editor.Edit(context.Background(), "PROJ-1", addTodo("C"))
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, twoTodos+"- [ ] C <!-- todo:3 -->\n<!-- todo-seq:3 -->\n", store.Doc("PROJ-1"))
	assert.Equal(t, "PROJ-1", res.List.Todos[0].Session.IssueKey)
}

func TestEditor_Edit_NoChangeSkipsWrite(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", twoTodos)
	editor := newTestEditor(store)

	res, err := editor.Edit(context.Background(), "PROJ-1", func(context.Context, *checklist.List, int) error {
		return nil
	})
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Equal(t, 0, store.SetCalls)
}

func TestEditor_Edit_FuncErrorWritesNothing(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", twoTodos)
	editor := newTestEditor(store)

	boom := errors.New("boom")
	_, err := editor.Edit(context.Background(), "PROJ-1", func(_ context.Context, list *checklist.List, _ int) error {
		list.Todos[0].Completed = true
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.SetCalls)
	assert.Equal(t, twoTodos, store.Doc("PROJ-1"))
}

func TestEditor_Edit_RetriesOnceOnConflict(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", twoTodos)
	store.ConcurrentEdits = []func(string) string{
		func(doc string) string { return doc + "- [ ] C <!-- todo:3 -->\n" },
	}
	editor := newTestEditor(store)

	res, err := editor.Edit(context.Background(), "PROJ-1", addTodo("X"))
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Equal(t, 2, store.SetCalls)

	// Both the concurrent todo and ours survive, with distinct ids.
	list, err := checklist.Parse(store.Doc("PROJ-1"))
	require.NoError(t, err)
	require.Len(t, list.Todos, 4)
	assert.Equal(t, "C", list.Todos[2].Text)
	assert.Equal(t, 3, list.Todos[2].ID)
	assert.Equal(t, "X", list.Todos[3].Text)
	assert.Equal(t, 4, list.Todos[3].ID)
}

func TestEditor_Edit_SurfacesSecondConflict(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", twoTodos)
	touch := func(doc string) string { return doc + "edited\n" }
	store.ConcurrentEdits = []func(string) string{touch, touch}
	editor := newTestEditor(store)

	_, err := editor.Edit(context.Background(), "PROJ-1", addTodo("X"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, 2, store.SetCalls)
	assert.NotContains(t, store.Doc("PROJ-1"), "X <!--")
}

func TestEditor_Edit_CancelledContextLeavesDocument(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", twoTodos)
	editor := newTestEditor(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := editor.Edit(ctx, "PROJ-1", addTodo("X"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.SetCalls)
	assert.Equal(t, twoTodos, store.Doc("PROJ-1"))
}

func TestEditor_Edit_ParseErrorIsReturned(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", "- [ ] A <!-- todo:1 -->\n- [ ] B <!-- todo:1 -->\n")
	editor := newTestEditor(store)

	_, err := editor.Edit(context.Background(), "PROJ-1", addTodo("X"))
	assert.ErrorIs(t, err, domain.ErrDuplicateTodoID)
	assert.Equal(t, 0, store.SetCalls)
}

func TestEditor_Edit_SerializesSameIssue(t *testing.T) {
	store := testutil.NewMockIssueStore()
	editor := newTestEditor(store)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := editor.Edit(context.Background(), "PROJ-1", addTodo(fmt.Sprintf("todo %d", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := checklist.Parse(store.Doc("PROJ-1"))
	require.NoError(t, err)
	assert.Len(t, list.Todos, 10)
	assert.Equal(t, 10, list.HighWater)
}

func TestIssueLocks_IndependentKeys(t *testing.T) {
	locks := NewIssueLocks()
	releaseA, err := locks.Acquire(context.Background(), "A")
	require.NoError(t, err)
	defer releaseA()

	// A different issue is not blocked.
	releaseB, err := locks.Acquire(context.Background(), "B")
	require.NoError(t, err)
	releaseB()

	// The same issue blocks until ctx is done.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = locks.Acquire(ctx, "A")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEditor_Edit_AllocateSkipsIDsTaggedInWorklog(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", twoTodos)
	_, err := store.AppendWorklog(context.Background(), "PROJ-1", domain.WorklogInput{
		Comment: "old work [todo #7 seg 1 done]", Seconds: 60,
	})
	require.NoError(t, err)
	editor := newTestEditor(store)

	res, err := editor.Edit(context.Background(), "PROJ-1", addTodo("C"))
	require.NoError(t, err)
	assert.Equal(t, 8, res.List.Todos[2].ID)
	assert.Equal(t, twoTodos+"- [ ] C <!-- todo:8 -->\n<!-- todo-seq:8 -->\n", store.Doc("PROJ-1"))
}

func TestEditor_Edit_WorklogLookupOnlyWhenAllocating(t *testing.T) {
	store := testutil.NewMockIssueStore()
	store.SetDoc("PROJ-1", twoTodos)
	store.ListErr = domain.ErrStoreUnavailable
	editor := newTestEditor(store)

	res, err := editor.Edit(context.Background(), "PROJ-1", func(_ context.Context, list *checklist.List, _ int) error {
		list.Todos[0].Completed = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, res.Written)

	before := store.Doc("PROJ-1")
	_, err = editor.Edit(context.Background(), "PROJ-1", addTodo("C"))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, before, store.Doc("PROJ-1"))
}
