// Package gitstore provides a Git plumbing-based implementation of domain.IssueStore.
package gitstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/todolog/internal/domain"
)

// Ensure Store implements domain.IssueStore.
var _ domain.IssueStore = (*Store)(nil)

// Store implements domain.IssueStore using Git plumbing (refs and blobs).
//
// Data structure:
//
//	refs/<namespace>/
//	  meta                      → blob (nextWorklogID)
//	  issues/<KEY>/description  → blob (markdown)
//	  issues/<KEY>/worklog      → blob (worklog YAML)
//
// The version of a description is its blob hash.
type Store struct {
	repo      *git.Repository
	clock     domain.Clock
	repoPath  string // empty when opened from an existing *git.Repository
	namespace string // e.g., "todolog"
	author    string
	mu        sync.Mutex
}

// meta contains store metadata.
type meta struct {
	NextWorklogID int `yaml:"nextWorklogID"`
}

// worklogData holds the worklog of one issue.
type worklogData struct {
	Entries []domain.WorklogEntry `yaml:"entries"`
}

// maxRefRetries bounds the read-modify-write loop on shared refs.
const maxRefRetries = 3

// New opens the repository at repoPath.
func New(repoPath, namespace, author string, clock domain.Clock) (*Store, error) {
	repo, err := git.PlainOpenWithOptions(repoPath, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	s := NewWithRepo(repo, namespace, author, clock)
	s.repoPath = repoPath
	return s, nil
}

// NewWithRepo creates a Store on an already opened repository.
func NewWithRepo(repo *git.Repository, namespace, author string, clock domain.Clock) *Store {
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Store{
		repo:      repo,
		clock:     clock,
		namespace: namespace,
		author:    author,
	}
}

func (s *Store) refPrefix() string {
	return "refs/" + s.namespace
}

func (s *Store) descriptionRef(issueKey string) plumbing.ReferenceName {
	return plumbing.ReferenceName(fmt.Sprintf("%s/issues/%s/description", s.refPrefix(), issueKey))
}

func (s *Store) worklogRef(issueKey string) plumbing.ReferenceName {
	return plumbing.ReferenceName(fmt.Sprintf("%s/issues/%s/worklog", s.refPrefix(), issueKey))
}

func (s *Store) metaRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "/meta")
}

// GetDescription returns the description and its blob hash.
// An unknown issue has an empty description and an empty version.
func (s *Store) GetDescription(ctx context.Context, issueKey string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.lookup(s.descriptionRef(issueKey))
	if err != nil {
		return "", "", err
	}
	if ref == nil {
		return "", "", nil
	}
	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return string(data), ref.Hash().String(), nil
}

// SetDescription writes the description if the ref still points at expectedVersion.
func (s *Store) SetDescription(ctx context.Context, issueKey, text, expectedVersion string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := s.descriptionRef(issueKey)
	current, err := s.lookup(name)
	if err != nil {
		return err
	}
	switch {
	case current == nil && expectedVersion != "":
		return domain.ErrVersionConflict
	case current != nil && current.Hash().String() != expectedVersion:
		return domain.ErrVersionConflict
	}

	hash, err := s.writeBlob([]byte(text))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.swapRef(plumbing.NewHashReference(name, hash), current)
}

// AppendWorklog appends an entry to the issue's worklog blob.
func (s *Store) AppendWorklog(ctx context.Context, issueKey string, in domain.WorklogInput) (*domain.WorklogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextWorklogID()
	if err != nil {
		return nil, err
	}
	entry := domain.WorklogEntry{
		ID:               strconv.Itoa(id),
		IssueKey:         issueKey,
		Comment:          in.Comment,
		Author:           s.author,
		Started:          in.Started.UTC(),
		CreatedAt:        s.clock.Now().UTC(),
		TimeSpentSeconds: in.Seconds,
	}

	name := s.worklogRef(issueKey)
	for attempt := 0; ; attempt++ {
		current, data, err := s.loadWorklog(name)
		if err != nil {
			return nil, err
		}
		data.Entries = append(data.Entries, entry)
		err = s.saveYAML(name, data, current)
		if err == nil {
			return &entry, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt+1 >= maxRefRetries {
			return nil, err
		}
	}
}

// ListWorklogs returns the issue's worklog entries, oldest first.
func (s *Store) ListWorklogs(ctx context.Context, issueKey string) ([]domain.WorklogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, data, err := s.loadWorklog(s.worklogRef(issueKey))
	if err != nil {
		return nil, err
	}
	return data.Entries, nil
}

func (s *Store) loadWorklog(name plumbing.ReferenceName) (*plumbing.Reference, *worklogData, error) {
	ref, err := s.lookup(name)
	if err != nil {
		return nil, nil, err
	}
	data := &worklogData{}
	if ref == nil {
		return nil, data, nil
	}
	raw, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := yaml.Unmarshal(raw, data); err != nil {
		return nil, nil, fmt.Errorf("%w: unmarshal worklog: %w", domain.ErrStoreUnavailable, err)
	}
	return ref, data, nil
}

// nextWorklogID reserves a worklog ID from the meta blob.
func (s *Store) nextWorklogID() (int, error) {
	name := s.metaRef()
	for attempt := 0; ; attempt++ {
		ref, err := s.lookup(name)
		if err != nil {
			return 0, err
		}
		m := &meta{NextWorklogID: 1}
		if ref != nil {
			raw, readErr := s.readBlob(ref.Hash())
			if readErr != nil {
				return 0, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, readErr)
			}
			if err := yaml.Unmarshal(raw, m); err != nil {
				return 0, fmt.Errorf("%w: unmarshal meta: %w", domain.ErrStoreUnavailable, err)
			}
		}
		id := m.NextWorklogID
		m.NextWorklogID++
		err = s.saveYAML(name, m, ref)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt+1 >= maxRefRetries {
			return 0, err
		}
	}
}

func (s *Store) saveYAML(name plumbing.ReferenceName, v any, old *plumbing.Reference) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	hash, err := s.writeBlob(data)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return s.swapRef(plumbing.NewHashReference(name, hash), old)
}

// swapRef points the reference at the new blob if it still equals old.
// A nil old means the reference must not exist yet.
func (s *Store) swapRef(next, old *plumbing.Reference) error {
	if old == nil {
		// CheckAndSetReference skips the check for a nil old reference.
		if existing, err := s.lookup(next.Name()); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrVersionConflict
		}
	}
	err := s.repo.Storer.CheckAndSetReference(next, old)
	if errors.Is(err, storage.ErrReferenceHasChanged) {
		return domain.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("%w: set reference %s: %w", domain.ErrStoreUnavailable, next.Name(), err)
	}
	return nil
}

// lookup returns nil without error when the reference does not exist.
func (s *Store) lookup(name plumbing.ReferenceName) (*plumbing.Reference, error) {
	ref, err := s.repo.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get reference %s: %w", domain.ErrStoreUnavailable, name, err)
	}
	return ref, nil
}

// writeBlob writes data to a blob and returns the hash.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}
	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}

// === Remote sync operations ===

// Push pushes the namespace refs to origin.
func (s *Store) Push(ctx context.Context) error {
	return s.syncRefs(ctx, "push")
}

// Fetch fetches the namespace refs from origin.
func (s *Store) Fetch(ctx context.Context) error {
	return s.syncRefs(ctx, "fetch")
}

func (s *Store) syncRefs(ctx context.Context, verb string) error {
	if s.repoPath == "" {
		return fmt.Errorf("%s: repository path unknown", verb)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// go-git push needs auth config; the git binary reuses the user's credentials.
	refspec := fmt.Sprintf("refs/%s/*:refs/%s/*", s.namespace, s.namespace)
	cmd := exec.CommandContext(ctx, "git", "-C", s.repoPath, verb, "origin", refspec) //nolint:gosec // refspec is built from the configured namespace
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %s: %w", verb, string(output), err)
	}
	return nil
}
