package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/todolog/internal/domain"
)

// SyncRefsInput contains the parameters for syncing with the remote.
type SyncRefsInput struct {
	Push bool // Push local issues; otherwise fetch remote ones
}

// SyncRefs exchanges issue documents and worklogs with origin.
type SyncRefs struct {
	syncer domain.RefSyncer
	logger domain.Logger
}

// NewSyncRefs creates a new SyncRefs use case.
// A nil syncer means the configured backend keeps no local copy.
func NewSyncRefs(syncer domain.RefSyncer, logger domain.Logger) *SyncRefs {
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &SyncRefs{syncer: syncer, logger: logger}
}

// Execute pushes or fetches.
func (uc *SyncRefs) Execute(ctx context.Context, in SyncRefsInput) error {
	if uc.syncer == nil {
		return domain.ErrSyncUnsupported
	}
	if in.Push {
		if err := uc.syncer.Push(ctx); err != nil {
			return fmt.Errorf("push: %w", err)
		}
		uc.logger.Info("", "sync", "pushed issue refs to origin")
		return nil
	}
	if err := uc.syncer.Fetch(ctx); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	uc.logger.Info("", "sync", "fetched issue refs from origin")
	return nil
}
