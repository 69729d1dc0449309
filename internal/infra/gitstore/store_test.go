package gitstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/testutil"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func setupTestStore(t *testing.T) (*Store, *git.Repository) {
	t.Helper()

	repo, err := git.Init(memory.NewStorage(), nil)
	require.NoError(t, err)
	return NewWithRepo(repo, "todolog-test", "alice", &testutil.MockClock{NowTime: testNow}), repo
}

func TestStore_GetDescription_Missing(t *testing.T) {
	store, _ := setupTestStore(t)

	text, version, err := store.GetDescription(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, version)
}

func TestStore_SetDescription_CreateAndUpdate(t *testing.T) {
	store, repo := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetDescription(ctx, "PROJ-1", "- [ ] A <!-- todo:1 -->\n", ""))

	text, v1, err := store.GetDescription(ctx, "PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "- [ ] A <!-- todo:1 -->\n", text)
	assert.NotEmpty(t, v1)

	ref, err := repo.Reference(plumbing.ReferenceName("refs/todolog-test/issues/PROJ-1/description"), true)
	require.NoError(t, err)
	assert.Equal(t, v1, ref.Hash().String())

	require.NoError(t, store.SetDescription(ctx, "PROJ-1", "updated\n", v1))
	text, v2, err := store.GetDescription(ctx, "PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "updated\n", text)
	assert.NotEqual(t, v1, v2)
}

func TestStore_SetDescription_Conflict(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetDescription(ctx, "PROJ-1", "first\n", ""))
	_, v1, err := store.GetDescription(ctx, "PROJ-1")
	require.NoError(t, err)
	require.NoError(t, store.SetDescription(ctx, "PROJ-1", "second\n", v1))

	// Stale version
	err = store.SetDescription(ctx, "PROJ-1", "third\n", v1)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	// Creating over an existing description
	err = store.SetDescription(ctx, "PROJ-1", "fourth\n", "")
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	// Expecting a description that does not exist
	err = store.SetDescription(ctx, "PROJ-2", "x\n", v1)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	text, _, err := store.GetDescription(ctx, "PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "second\n", text)
}

func TestStore_SetDescription_CancelledContext(t *testing.T) {
	store, _ := setupTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.SetDescription(ctx, "PROJ-1", "x\n", "")
	assert.ErrorIs(t, err, context.Canceled)

	text, version, err := store.GetDescription(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Empty(t, text)
	assert.Empty(t, version)
}

func TestStore_Worklogs(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	started := testNow.Add(-time.Hour)

	first, err := store.AppendWorklog(ctx, "PROJ-1", domain.WorklogInput{
		Started: started,
		Comment: "Work on todo [todo #1 seg 1]",
		Seconds: 3600,
	})
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "alice", first.Author)
	assert.Equal(t, testNow, first.CreatedAt)

	second, err := store.AppendWorklog(ctx, "PROJ-2", domain.WorklogInput{Started: started, Comment: "other", Seconds: 60})
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)

	entries, err := store.ListWorklogs(ctx, "PROJ-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Work on todo [todo #1 seg 1]", entries[0].Comment)
	assert.Equal(t, int64(3600), entries[0].TimeSpentSeconds)
	assert.True(t, started.Equal(entries[0].Started))

	// Worklogs do not create a description.
	_, version, err := store.GetDescription(ctx, "PROJ-1")
	require.NoError(t, err)
	assert.Empty(t, version)
}

func TestStore_ListWorklogs_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	entries, err := store.ListWorklogs(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNew_OpensRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	store, err := New(dir, "", "alice", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNamespace, store.namespace)

	require.NoError(t, store.SetDescription(context.Background(), "PROJ-1", "hello\n", ""))

	// A second store on the same repository sees the write.
	other, err := New(dir, "", "bob", nil)
	require.NoError(t, err)
	text, _, err := other.GetDescription(context.Background(), "PROJ-1")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", text)
}

func TestNew_NotARepository(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# Test"), 0o644))

	_, err := New(dir, "", "alice", nil)
	assert.Error(t, err)
}

func TestStore_SyncWithoutPath(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Error(t, store.Push(context.Background()))
	assert.Error(t, store.Fetch(context.Background()))
}
