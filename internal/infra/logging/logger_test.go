package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/runoshun/todolog/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel}, // default
		{"", zerolog.InfoLevel},        // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestLogger_Info(t *testing.T) {
	logDir := t.TempDir()
	logger := New(logDir, zerolog.InfoLevel)
	defer func() { _ = logger.Close() }()

	logger.Info("PROJ-1", "session", "started todo #1")

	content, err := os.ReadFile(domain.GlobalLogPath(logDir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "INF")
	assert.Contains(t, string(content), "[PROJ-1]")
	assert.Contains(t, string(content), "[session]")
	assert.Contains(t, string(content), "started todo #1")

	issueContent, err := os.ReadFile(domain.IssueLogPath(logDir, "PROJ-1"))
	require.NoError(t, err)
	assert.Contains(t, string(issueContent), "started todo #1")
}

func TestLogger_GlobalLogOnly(t *testing.T) {
	logDir := t.TempDir()
	logger := New(logDir, zerolog.InfoLevel)
	defer func() { _ = logger.Close() }()

	logger.Info("", "config", "global message")

	content, err := os.ReadFile(domain.GlobalLogPath(logDir))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[global]")
	assert.Contains(t, string(content), "global message")

	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLogger_LevelFiltering(t *testing.T) {
	logDir := t.TempDir()
	logger := New(logDir, zerolog.WarnLevel)
	defer func() { _ = logger.Close() }()

	logger.Debug("PROJ-1", "edit", "debug message")
	logger.Info("PROJ-1", "edit", "info message")
	logger.Warn("PROJ-1", "edit", "warn message")
	logger.Error("PROJ-1", "edit", "error message")

	content, err := os.ReadFile(domain.GlobalLogPath(logDir))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "debug message")
	assert.NotContains(t, string(content), "info message")
	assert.Contains(t, string(content), "warn message")
	assert.Contains(t, string(content), "error message")
}

func TestLogger_DisabledWhenEmptyDir(t *testing.T) {
	logger := New("", zerolog.InfoLevel)
	defer func() { _ = logger.Close() }()

	// Must not panic.
	logger.Info("PROJ-1", "todo", "test message")
	logger.Error("PROJ-1", "todo", "error message")
}

func TestLogger_OneLinePerEntry(t *testing.T) {
	logDir := t.TempDir()
	logger := New(logDir, zerolog.InfoLevel)
	defer func() { _ = logger.Close() }()

	logger.Info("PROJ-1", "todo", `added todo #3: "write tests"`)

	content, err := os.ReadFile(domain.GlobalLogPath(logDir))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `added todo #3: "write tests"`)
	assert.Less(t, strings.Index(lines[0], "[PROJ-1]"), strings.Index(lines[0], "[todo]"))
}

func TestLogger_SeparateIssueFiles(t *testing.T) {
	logDir := t.TempDir()
	logger := New(logDir, zerolog.InfoLevel)
	defer func() { _ = logger.Close() }()

	logger.Info("PROJ-1", "todo", "message for one")
	logger.Info("PROJ-2", "todo", "message for two")

	one, err := os.ReadFile(domain.IssueLogPath(logDir, "PROJ-1"))
	require.NoError(t, err)
	assert.Contains(t, string(one), "message for one")
	assert.NotContains(t, string(one), "message for two")

	global, err := os.ReadFile(domain.GlobalLogPath(logDir))
	require.NoError(t, err)
	assert.Contains(t, string(global), "message for one")
	assert.Contains(t, string(global), "message for two")
}

func TestLogger_CloseAndReopen(t *testing.T) {
	logDir := t.TempDir()
	logger := New(logDir, zerolog.InfoLevel)

	logger.Info("PROJ-1", "todo", "before close")
	require.NoError(t, logger.Close())
	logger.Info("PROJ-1", "todo", "after close")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(domain.IssueLogPath(logDir, "PROJ-1"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "before close")
	assert.Contains(t, string(content), "after close")
}
