package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644))
}

func TestLoader_Load_Defaults(t *testing.T) {
	t.Setenv(domain.EnvDefaultIssue, "")
	loader := NewLoaderWithGlobalDir(t.TempDir(), t.TempDir())

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.StoreBackendGit, cfg.Store.Backend)
	assert.Equal(t, domain.DefaultNamespace, cfg.Store.Namespace)
	assert.Equal(t, domain.DefaultSectionHeader, cfg.Tracking.SectionHeader)
	assert.Equal(t, domain.DefaultMaxSegment, cfg.MaxSegmentDuration())
	assert.True(t, cfg.ShouldMarkCompleted())
	assert.Empty(t, cfg.Warnings)
}

func TestLoader_Load_MergeRepoOverridesGlobal(t *testing.T) {
	t.Setenv(domain.EnvDefaultIssue, "")
	repoDir := t.TempDir()
	globalDir := t.TempDir()

	writeConfig(t, globalDir, `
default_issue = "GLOBAL-1"

[store]
backend = "json"

[jira]
base_url = "https://example.atlassian.net"
email = "me@example.com"

[log]
level = "debug"
`)
	writeConfig(t, repoDir, `
default_issue = "PROJ-7"

[tracking]
max_segment = "10h"
mark_completed = false
section_header = "### Checklist"
`)

	cfg, err := NewLoaderWithGlobalDir(repoDir, globalDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "PROJ-7", cfg.DefaultIssue)
	assert.Equal(t, domain.StoreBackendJSON, cfg.Store.Backend)
	assert.Equal(t, "https://example.atlassian.net", cfg.Jira.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10*time.Hour, cfg.MaxSegmentDuration())
	assert.False(t, cfg.ShouldMarkCompleted())
	assert.Equal(t, "### Checklist", cfg.Tracking.SectionHeader)
}

func TestLoader_Load_EnvIssueWins(t *testing.T) {
	repoDir := t.TempDir()
	writeConfig(t, repoDir, `default_issue = "PROJ-7"`)
	t.Setenv(domain.EnvDefaultIssue, "ENV-3")

	cfg, err := NewLoaderWithGlobalDir(repoDir, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "ENV-3", cfg.DefaultIssue)
}

func TestLoader_Load_UnknownKeysWarn(t *testing.T) {
	t.Setenv(domain.EnvDefaultIssue, "")
	repoDir := t.TempDir()
	writeConfig(t, repoDir, `
[store]
backend = "git"
colour = "blue"

[tracking]
max_segment = 5

[agents]
x = 1
`)

	cfg, err := NewLoaderWithGlobalDir(repoDir, "").Load()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"unknown key or invalid value in [store]: colour",
		"unknown key or invalid value in [tracking]: max_segment",
		"unknown section: agents",
	}, cfg.Warnings)
}

func TestLoader_Load_InvalidToml(t *testing.T) {
	repoDir := t.TempDir()
	writeConfig(t, repoDir, `[store`)

	_, err := NewLoaderWithGlobalDir(repoDir, "").Load()
	assert.Error(t, err)
}

func TestLoader_Load_ValidationErrors(t *testing.T) {
	t.Setenv(domain.EnvDefaultIssue, "")
	repoDir := t.TempDir()
	writeConfig(t, repoDir, `
[store]
backend = "svn"

[tracking]
max_segment = "forever"

[log]
level = "loud"
`)

	_, err := NewLoaderWithGlobalDir(repoDir, "").Load()
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 3)
}

func TestValidate_JiraBackend(t *testing.T) {
	cfg := domain.NewDefaultConfig()
	cfg.Store.Backend = domain.StoreBackendJira

	err := Validate(cfg)
	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"jira.base_url", "jira.token_env", "jira.email"}, fields)

	cfg.Jira = domain.JiraConfig{
		BaseURL:  "https://example.atlassian.net",
		TokenEnv: "JIRA_TOKEN",
		Auth:     domain.JiraAuthBearer,
	}
	assert.NoError(t, Validate(cfg))
}
