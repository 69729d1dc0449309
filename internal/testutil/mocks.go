// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/runoshun/todolog/internal/domain"
)

// Ensure MockIssueStore implements domain.IssueStore.
var _ domain.IssueStore = (*MockIssueStore)(nil)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// Advance moves the clock forward.
func (m *MockClock) Advance(d time.Duration) {
	m.NowTime = m.NowTime.Add(d)
}

// MockIssueStore is an in-memory domain.IssueStore with failure injection.
// Fields are ordered to minimize memory padding.
type MockIssueStore struct {
	Docs     map[string]string
	Versions map[string]int
	Worklogs map[string][]domain.WorklogEntry

	// ConcurrentEdits are applied one per SetDescription call, before the
	// version check, as if another writer got there first.
	ConcurrentEdits []func(doc string) string

	GetErr    error
	SetErr    error
	AppendErr error
	ListErr   error

	SetCalls    int
	AppendCalls int

	mu     sync.Mutex
	nextID int
}

// NewMockIssueStore creates a new MockIssueStore with initialized maps.
func NewMockIssueStore() *MockIssueStore {
	return &MockIssueStore{
		Docs:     make(map[string]string),
		Versions: make(map[string]int),
		Worklogs: make(map[string][]domain.WorklogEntry),
		nextID:   10000,
	}
}

// SetDoc seeds a description.
func (m *MockIssueStore) SetDoc(issueKey, doc string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs[issueKey] = doc
	m.Versions[issueKey]++
}

// Doc returns the stored description.
func (m *MockIssueStore) Doc(issueKey string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Docs[issueKey]
}

// GetDescription returns the description and its version.
func (m *MockIssueStore) GetDescription(_ context.Context, issueKey string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", "", m.GetErr
	}
	return m.Docs[issueKey], m.version(issueKey), nil
}

// SetDescription writes the description if the version matches.
func (m *MockIssueStore) SetDescription(ctx context.Context, issueKey, text, expectedVersion string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.SetErr != nil {
		return m.SetErr
	}
	if len(m.ConcurrentEdits) > 0 {
		edit := m.ConcurrentEdits[0]
		m.ConcurrentEdits = m.ConcurrentEdits[1:]
		m.Docs[issueKey] = edit(m.Docs[issueKey])
		m.Versions[issueKey]++
	}
	if m.version(issueKey) != expectedVersion {
		return domain.ErrVersionConflict
	}
	m.Docs[issueKey] = text
	m.Versions[issueKey]++
	return nil
}

func (m *MockIssueStore) version(issueKey string) string {
	v, ok := m.Versions[issueKey]
	if !ok {
		return ""
	}
	return strconv.Itoa(v)
}

// AppendWorklog records a worklog entry.
func (m *MockIssueStore) AppendWorklog(_ context.Context, issueKey string, in domain.WorklogInput) (*domain.WorklogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls++
	if m.AppendErr != nil {
		return nil, m.AppendErr
	}
	m.nextID++
	entry := domain.WorklogEntry{
		ID:               fmt.Sprintf("%d", m.nextID),
		IssueKey:         issueKey,
		Comment:          in.Comment,
		Started:          in.Started,
		CreatedAt:        in.Started.Add(time.Duration(in.Seconds) * time.Second),
		TimeSpentSeconds: in.Seconds,
	}
	m.Worklogs[issueKey] = append(m.Worklogs[issueKey], entry)
	return &entry, nil
}

// ListWorklogs returns the recorded entries.
func (m *MockIssueStore) ListWorklogs(_ context.Context, issueKey string) ([]domain.WorklogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	out := make([]domain.WorklogEntry, len(m.Worklogs[issueKey]))
	copy(out, m.Worklogs[issueKey])
	return out, nil
}

// Entries returns the recorded entries of an issue.
func (m *MockIssueStore) Entries(issueKey string) []domain.WorklogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.WorklogEntry(nil), m.Worklogs[issueKey]...)
}

// LogRecord is one message captured by MockLogger.
type LogRecord struct {
	Level    string
	IssueKey string
	Category string
	Msg      string
}

// MockLogger captures log calls.
type MockLogger struct {
	Records []LogRecord
	mu      sync.Mutex
}

func (l *MockLogger) add(level, issueKey, category, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Records = append(l.Records, LogRecord{Level: level, IssueKey: issueKey, Category: category, Msg: msg})
}

// Debug records a debug message.
func (l *MockLogger) Debug(issueKey, category, msg string) { l.add("debug", issueKey, category, msg) }

// Info records an info message.
func (l *MockLogger) Info(issueKey, category, msg string) { l.add("info", issueKey, category, msg) }

// Warn records a warning.
func (l *MockLogger) Warn(issueKey, category, msg string) { l.add("warn", issueKey, category, msg) }

// Error records an error.
func (l *MockLogger) Error(issueKey, category, msg string) { l.add("error", issueKey, category, msg) }

// Count returns how many records have the given level.
func (l *MockLogger) Count(level string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, r := range l.Records {
		if r.Level == level {
			n++
		}
	}
	return n
}

// Ensure MockConfigManager implements domain.ConfigManager.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	InitErr      error
	InitedConfig *domain.Config
	RepoInfo     domain.ConfigInfo
	GlobalInfo   domain.ConfigInfo
	InitedRepo   bool
	InitedGlobal bool
}

// GetRepoConfigInfo returns RepoInfo.
func (m *MockConfigManager) GetRepoConfigInfo() domain.ConfigInfo { return m.RepoInfo }

// GetGlobalConfigInfo returns GlobalInfo.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo { return m.GlobalInfo }

// InitRepoConfig records the call.
func (m *MockConfigManager) InitRepoConfig(cfg *domain.Config) error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.InitedRepo = true
	m.InitedConfig = cfg
	return nil
}

// InitGlobalConfig records the call.
func (m *MockConfigManager) InitGlobalConfig(cfg *domain.Config) error {
	if m.InitErr != nil {
		return m.InitErr
	}
	m.InitedGlobal = true
	m.InitedConfig = cfg
	return nil
}

// MockRefSyncer records push and fetch calls.
type MockRefSyncer struct {
	Err     error
	Pushes  int
	Fetches int
}

// Push records a push.
func (m *MockRefSyncer) Push(context.Context) error {
	m.Pushes++
	return m.Err
}

// Fetch records a fetch.
func (m *MockRefSyncer) Fetch(context.Context) error {
	m.Fetches++
	return m.Err
}
