package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/infra/gitstore"
	"github.com/runoshun/todolog/internal/infra/jira"
	"github.com/runoshun/todolog/internal/infra/jsonstore"
	"github.com/runoshun/todolog/internal/testutil"
)

// isolate keeps the user's global config and environment out of the test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(domain.EnvDefaultIssue, "")
}

func writeRepoConfig(t *testing.T, root, content string) {
	t.Helper()
	dir := domain.RepoConfigDir(root)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644))
}

func TestNew_JSONBackendOutsideGit(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeRepoConfig(t, dir, `
default_issue = "PROJ-9"

[store]
backend = "json"
`)

	c, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, dir, c.Config.RepoRoot)
	assert.IsType(t, &jsonstore.Store{}, c.Store)
	assert.Nil(t, c.Syncer)
	assert.NotNil(t, c.ConfigManager)

	key, err := c.ResolveIssue("")
	require.NoError(t, err)
	assert.Equal(t, "PROJ-9", key)
}

func TestNew_GitBackend(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	c, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &gitstore.Store{}, c.Store)
	assert.NotNil(t, c.Syncer)
}

func TestNew_JiraBackend(t *testing.T) {
	isolate(t)
	t.Setenv("TODOLOG_TEST_JIRA_TOKEN", "secret")
	dir := t.TempDir()
	writeRepoConfig(t, dir, `
[store]
backend = "jira"

[jira]
base_url = "https://example.atlassian.net"
auth = "bearer"
token_env = "TODOLOG_TEST_JIRA_TOKEN"
`)

	c, err := New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.IsType(t, &jira.Client{}, c.Store)
	assert.Nil(t, c.Syncer)
}

func TestNew_JiraBackendWithoutToken(t *testing.T) {
	isolate(t)
	t.Setenv("TODOLOG_TEST_JIRA_TOKEN", "")
	dir := t.TempDir()
	writeRepoConfig(t, dir, `
[store]
backend = "jira"

[jira]
base_url = "https://example.atlassian.net"
auth = "bearer"
token_env = "TODOLOG_TEST_JIRA_TOKEN"
`)

	_, err := New(dir)
	assert.Error(t, err)
}

func TestNew_InvalidConfig(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeRepoConfig(t, dir, "[store]\nbackend = \"svn\"\n")

	_, err := New(dir)
	assert.Error(t, err)
}

func TestNewWithDeps_Defaults(t *testing.T) {
	store := testutil.NewMockIssueStore()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}

	c := NewWithDeps(Config{}, nil, store, clock, nil)

	assert.NotNil(t, c.AppConfig)
	assert.IsType(t, domain.NopLogger{}, c.Logger)
	assert.NoError(t, c.Close())

	_, err := c.ResolveIssue("")
	assert.ErrorIs(t, err, domain.ErrNoIssue)

	assert.NotNil(t, c.AddTodoUseCase())
	assert.NotNil(t, c.StartTodoWorkUseCase())
	assert.NotNil(t, c.CompleteTodoWorkUseCase())
	assert.NotNil(t, c.SyncRefsUseCase())
	assert.NotNil(t, c.ShowLogsUseCase())
}
