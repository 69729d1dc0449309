// Package jsonstore provides a JSON file-based implementation of domain.IssueStore.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/runoshun/todolog/internal/domain"
)

// Ensure Store implements domain.IssueStore.
var _ domain.IssueStore = (*Store)(nil)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Issues map[string]*issueData `json:"issues"`
	Meta   meta                  `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	NextWorklogID int `json:"nextWorklogID"`
}

// issueData is the JSON representation of one issue (the key is the map key).
// Fields are ordered to minimize memory padding.
type issueData struct {
	Description string                `json:"description"`
	Worklogs    []domain.WorklogEntry `json:"worklogs,omitempty"`
	Version     int                   `json:"version"`
}

// version is empty until the description is first written, so an issue
// that only has worklogs reads like a missing one.
func (d *issueData) version() string {
	if d.Version == 0 {
		return ""
	}
	return strconv.Itoa(d.Version)
}

// Store implements domain.IssueStore using a single JSON file.
// Every call takes an flock on a sidecar lock file, so several processes
// can share the file.
type Store struct {
	clock    domain.Clock
	path     string
	lockPath string
	author   string
}

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path, author string, clock domain.Clock) *Store {
	return &Store{
		clock:    clock,
		path:     path,
		lockPath: path + ".lock",
		author:   author,
	}
}

// GetDescription returns the description and its version.
// An unknown issue has an empty description and an empty version.
func (s *Store) GetDescription(ctx context.Context, issueKey string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	var text, version string
	err := s.withLock(func(data *storeData) error {
		if issue, ok := data.Issues[issueKey]; ok {
			text = issue.Description
			version = issue.version()
		}
		return nil
	})
	return text, version, err
}

// SetDescription writes the description if the version still matches.
func (s *Store) SetDescription(ctx context.Context, issueKey, text, expectedVersion string) error {
	return s.withLockWrite(func(data *storeData) error {
		issue, ok := data.Issues[issueKey]
		current := ""
		if ok {
			current = issue.version()
		}
		if current != expectedVersion {
			return fmt.Errorf("%s: version %q, expected %q: %w", issueKey, current, expectedVersion, domain.ErrVersionConflict)
		}
		// Nothing has been written yet; a cancelled call leaves the file untouched.
		if err := ctx.Err(); err != nil {
			return err
		}
		if !ok {
			issue = &issueData{}
			data.Issues[issueKey] = issue
		}
		issue.Description = text
		issue.Version++
		return nil
	})
}

// AppendWorklog appends a worklog entry to the issue.
func (s *Store) AppendWorklog(ctx context.Context, issueKey string, in domain.WorklogInput) (*domain.WorklogEntry, error) {
	var entry domain.WorklogEntry
	err := s.withLockWrite(func(data *storeData) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		issue, ok := data.Issues[issueKey]
		if !ok {
			issue = &issueData{}
			data.Issues[issueKey] = issue
		}
		data.Meta.NextWorklogID++
		entry = domain.WorklogEntry{
			Started:          in.Started,
			CreatedAt:        s.clock.Now(),
			ID:               strconv.Itoa(data.Meta.NextWorklogID),
			IssueKey:         issueKey,
			Comment:          in.Comment,
			Author:           s.author,
			TimeSpentSeconds: in.Seconds,
		}
		issue.Worklogs = append(issue.Worklogs, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListWorklogs returns the issue's worklog entries, oldest first.
func (s *Store) ListWorklogs(ctx context.Context, issueKey string) ([]domain.WorklogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var entries []domain.WorklogEntry
	err := s.withLock(func(data *storeData) error {
		if issue, ok := data.Issues[issueKey]; ok {
			entries = append(entries, issue.Worklogs...)
		}
		return nil
	})
	return entries, err
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
// Nothing is written when fn fails.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

func (s *Store) read() (*storeData, error) {
	data := storeData{Issues: make(map[string]*issueData)}

	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &data, nil
		}
		return nil, fmt.Errorf("read store file: %w: %w", domain.ErrStoreUnavailable, err)
	}

	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w: %w", domain.ErrStoreUnavailable, err)
	}
	if data.Issues == nil {
		data.Issues = make(map[string]*issueData)
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
