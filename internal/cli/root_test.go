package cli

import (
	"bytes"
	"testing"

	"github.com/runoshun/todolog/internal/app"
	"github.com/stretchr/testify/assert"
)

func TestNewRootCommand_NoArgs_LaunchesTUI(t *testing.T) {
	// Save original function and restore after test
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	called := false
	var gotIssue string
	launchTUIFunc = func(_ *app.Container, issue string) error {
		called = true
		gotIssue = issue
		return nil
	}

	// Create root command with nil container (not used in this test)
	root := NewRootCommand(nil, "test-version")
	root.SetArgs([]string{"--issue", "PROJ-1"})
	err := root.Execute()

	assert.NoError(t, err)
	assert.True(t, called, "launchTUIFunc should be called when no arguments are provided")
	assert.Equal(t, "PROJ-1", gotIssue)
}

func TestNewRootCommand_WithHelp_ShowsHelp(t *testing.T) {
	originalFunc := launchTUIFunc
	defer func() {
		launchTUIFunc = originalFunc
	}()

	called := false
	launchTUIFunc = func(*app.Container, string) error {
		called = true
		return nil
	}

	root := NewRootCommand(nil, "test-version")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})
	err := root.Execute()

	// cobra's --help displays help and returns nil
	assert.NoError(t, err)
	assert.False(t, called, "launchTUIFunc should NOT be called when --help is provided")
	assert.Contains(t, buf.String(), "Todo Management:")
	assert.Contains(t, buf.String(), "Work Sessions:")
}

func TestNewRootCommand_PrintsConfigWarnings(t *testing.T) {
	c, _, _ := newTestContainer(t, "")
	c.AppConfig.Warnings = []string{"unknown section: foo"}

	root := NewRootCommand(c, "test-version")
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"config", "template"})

	assert.NoError(t, root.Execute())
	assert.Contains(t, stderr.String(), "Warning: unknown section: foo")
}
