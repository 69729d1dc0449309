package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/todolog/internal/domain"
)

// ShowLogsInput contains the parameters for showing logs.
type ShowLogsInput struct {
	IssueKey string // Issue whose log to show; empty shows the global log
	Lines    int    // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the log content.
type ShowLogsOutput struct {
	LogPath string // Path to the log file
	Content string // Log file content
}

// ShowLogs is the use case for viewing operation logs.
type ShowLogs struct {
	logDir string
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(logDir string) *ShowLogs {
	return &ShowLogs{logDir: logDir}
}

// Execute reads and returns the log content.
func (uc *ShowLogs) Execute(_ context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	logPath := domain.GlobalLogPath(uc.logDir)
	if key := strings.TrimSpace(in.IssueKey); key != "" {
		logPath = domain.IssueLogPath(uc.logDir, key)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", logPath, domain.ErrNoLogs)
		}
		return nil, fmt.Errorf("read log file: %w", err)
	}

	result := strings.TrimRight(string(content), "\n")
	if in.Lines > 0 {
		lines := strings.Split(result, "\n")
		if len(lines) > in.Lines {
			lines = lines[len(lines)-in.Lines:]
		}
		result = strings.Join(lines, "\n")
	}

	return &ShowLogsOutput{
		LogPath: logPath,
		Content: result,
	}, nil
}
