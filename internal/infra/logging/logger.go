// Package logging provides file-based logging for todolog.
// It outputs logs to both a global log file (.todolog/logs/todolog.log)
// and issue-specific log files (.todolog/logs/issue-KEY.log).
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/runoshun/todolog/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes zerolog console-formatted entries to log files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	global *zerolog.Logger
	issues map[string]*zerolog.Logger
	files  []*os.File
	logDir string
	mu     sync.Mutex
	level  zerolog.Level
}

// New creates a new Logger that writes to logDir.
// If logDir is empty, logging is disabled.
func New(logDir string, level zerolog.Level) *Logger {
	return &Logger{
		logDir: logDir,
		level:  level,
		issues: make(map[string]*zerolog.Logger),
	}
}

// ParseLevel parses a log level string. Unknown values fall back to info.
func ParseLevel(levelStr string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelStr)))
	if err != nil || levelStr == "" || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// newFileLogger opens path for appending and wraps it in a console writer.
// The caller holds l.mu.
func (l *Logger) newFileLogger(path string) (*zerolog.Logger, error) {
	if err := os.MkdirAll(l.logDir, 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.files = append(l.files, f)
	logger := zerolog.New(consoleWriter(f)).Level(l.level).With().Timestamp().Logger()
	return &logger, nil
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: "2006-01-02 15:04:05",
		PartsOrder: []string{
			zerolog.TimestampFieldName,
			zerolog.LevelFieldName,
			"issue",
			"cmp",
			zerolog.MessageFieldName,
		},
		FieldsExclude: []string{"issue", "cmp"},
	}
}

// loggersFor returns the global logger and, for a non-empty issue key, the issue logger.
// The caller holds l.mu.
func (l *Logger) loggersFor(issueKey string) []*zerolog.Logger {
	var out []*zerolog.Logger
	if l.global == nil {
		if g, err := l.newFileLogger(domain.GlobalLogPath(l.logDir)); err == nil {
			l.global = g
		}
	}
	if l.global != nil {
		out = append(out, l.global)
	}
	if issueKey == "" {
		return out
	}
	il, ok := l.issues[issueKey]
	if !ok {
		var err error
		if il, err = l.newFileLogger(domain.IssueLogPath(l.logDir, issueKey)); err != nil {
			return out
		}
		l.issues[issueKey] = il
	}
	return append(out, il)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	l.files = nil
	l.global = nil
	l.issues = make(map[string]*zerolog.Logger)
	return lastErr
}

// log writes an entry to the global log and, if issueKey is set, to the issue log.
func (l *Logger) log(level zerolog.Level, issueKey, category, msg string) {
	if l.logDir == "" || level < l.level {
		return
	}

	issue := issueKey
	if issue == "" {
		issue = "global"
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, zl := range l.loggersFor(issueKey) {
		zl.WithLevel(level).Str("issue", "["+issue+"]").Str("cmp", "["+category+"]").Msg(msg)
	}
}

// Info logs an info message.
func (l *Logger) Info(issueKey, category, msg string) {
	l.log(zerolog.InfoLevel, issueKey, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(issueKey, category, msg string) {
	l.log(zerolog.DebugLevel, issueKey, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(issueKey, category, msg string) {
	l.log(zerolog.WarnLevel, issueKey, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(issueKey, category, msg string) {
	l.log(zerolog.ErrorLevel, issueKey, category, msg)
}
