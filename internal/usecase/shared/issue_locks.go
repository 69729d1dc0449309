package shared

import (
	"context"
	"sync"
)

// IssueLocks serializes read-modify-write cycles per issue key.
// Operations on different issues never block each other.
type IssueLocks struct {
	locks map[string]chan struct{}
	mu    sync.Mutex
}

// NewIssueLocks creates an empty lock table.
func NewIssueLocks() *IssueLocks {
	return &IssueLocks{locks: make(map[string]chan struct{})}
}

// Acquire blocks until the issue's lock is held or ctx is done.
// The returned release func must be called exactly once.
func (l *IssueLocks) Acquire(ctx context.Context, issueKey string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[issueKey]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[issueKey] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	}
}
