package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/todolog/internal/domain"
	"github.com/runoshun/todolog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_Execute(t *testing.T) {
	mgr := &testutil.MockConfigManager{
		RepoInfo:   domain.ConfigInfo{Path: "/repo/.todolog/config.toml"},
		GlobalInfo: domain.ConfigInfo{Path: "/home/me/.config/todolog/config.toml"},
	}
	uc := NewInitConfig(mgr)

	out, err := uc.Execute(context.Background(), InitConfigInput{})
	require.NoError(t, err)
	assert.Equal(t, "/repo/.todolog/config.toml", out.Path)
	assert.True(t, mgr.InitedRepo)
	require.NotNil(t, mgr.InitedConfig)
	assert.Equal(t, domain.StoreBackendGit, mgr.InitedConfig.Store.Backend)

	out, err = uc.Execute(context.Background(), InitConfigInput{Global: true})
	require.NoError(t, err)
	assert.Equal(t, "/home/me/.config/todolog/config.toml", out.Path)
	assert.True(t, mgr.InitedGlobal)
}

func TestInitConfig_Execute_Exists(t *testing.T) {
	mgr := &testutil.MockConfigManager{InitErr: domain.ErrConfigExists}

	_, err := NewInitConfig(mgr).Execute(context.Background(), InitConfigInput{})
	assert.ErrorIs(t, err, domain.ErrConfigExists)
}

func TestShowConfig_Execute(t *testing.T) {
	mgr := &testutil.MockConfigManager{
		RepoInfo: domain.ConfigInfo{Path: "p", Content: "default_issue = \"X-1\"\n", Exists: true},
	}
	cfg := domain.NewDefaultConfig()

	out, err := NewShowConfig(mgr, cfg).Execute(context.Background(), ShowConfigInput{})
	require.NoError(t, err)
	assert.True(t, out.RepoConfig.Exists)
	assert.False(t, out.GlobalConfig.Exists)
	assert.Same(t, cfg, out.Effective)
}

func TestShowLogs_Execute(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(domain.IssueLogPath(dir, issue), []byte("one\ntwo\nthree\n"), 0o600))

	uc := NewShowLogs(dir)
	out, err := uc.Execute(context.Background(), ShowLogsInput{IssueKey: issue, Lines: 2})
	require.NoError(t, err)
	assert.Equal(t, "two\nthree", out.Content)
	assert.Equal(t, filepath.Join(dir, "issue-PROJ-1.log"), out.LogPath)

	out, err = uc.Execute(context.Background(), ShowLogsInput{IssueKey: issue})
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\nthree", out.Content)

	_, err = uc.Execute(context.Background(), ShowLogsInput{})
	assert.ErrorIs(t, err, domain.ErrNoLogs)
}
