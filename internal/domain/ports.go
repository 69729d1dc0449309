package domain

import (
	"context"
	"time"
)

// DocumentStore reads and conditionally writes an issue's description.
// The version is opaque; an empty version means the issue has no description yet.
type DocumentStore interface {
	// GetDescription returns the description and its current version.
	GetDescription(ctx context.Context, issueKey string) (text, version string, err error)

	// SetDescription writes the description if the stored version still equals
	// expectedVersion. Returns ErrVersionConflict otherwise.
	SetDescription(ctx context.Context, issueKey, text, expectedVersion string) error
}

// WorklogAPI appends and lists an issue's worklog entries.
type WorklogAPI interface {
	// AppendWorklog appends an entry and returns it with its assigned ID.
	AppendWorklog(ctx context.Context, issueKey string, in WorklogInput) (*WorklogEntry, error)

	// ListWorklogs returns the issue's entries, oldest first.
	ListWorklogs(ctx context.Context, issueKey string) ([]WorklogEntry, error)
}

// IssueStore is a backend providing both the document and the worklog ledger.
type IssueStore interface {
	DocumentStore
	WorklogAPI
}

// RefSyncer exchanges stored issues with a remote.
type RefSyncer interface {
	Push(ctx context.Context) error
	Fetch(ctx context.Context) error
}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (repo + global).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigInfo describes one config file.
// Fields are ordered to minimize memory padding.
type ConfigInfo struct {
	Path    string // File path
	Content string // File content (empty if missing)
	Exists  bool   // Whether the file exists
}

// ConfigManager inspects and creates config files.
type ConfigManager interface {
	GetRepoConfigInfo() ConfigInfo
	GetGlobalConfigInfo() ConfigInfo
	// InitRepoConfig writes a commented template. Returns ErrConfigExists if present.
	InitRepoConfig(cfg *Config) error
	InitGlobalConfig(cfg *Config) error
}

// Logger writes operation logs.
// issueKey may be empty for global events.
type Logger interface {
	Debug(issueKey, category, msg string)
	Info(issueKey, category, msg string)
	Warn(issueKey, category, msg string)
	Error(issueKey, category, msg string)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, string, string) {}
func (NopLogger) Info(string, string, string)  {}
func (NopLogger) Warn(string, string, string)  {}
func (NopLogger) Error(string, string, string) {}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}
