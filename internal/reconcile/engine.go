package reconcile

import (
	"context"
	"fmt"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/logging"
	"github.com/avdeevs/mediavault/internal/models"
	"github.com/avdeevs/mediavault/internal/remote"
	"github.com/avdeevs/mediavault/internal/tier"
	"golang.org/x/sync/errgroup"
)

// Engine produces the authoritative record view from the two provenance
// sources: the local storage tier and the remote repository.
type Engine struct {
	tier    *tier.Manager
	fetcher remote.Fetcher
	log     logging.Logger
}

// NewEngine wires the engine to its collaborators.
func NewEngine(t *tier.Manager, fetcher remote.Fetcher, log logging.Logger) *Engine {
	return &Engine{tier: t, fetcher: fetcher, log: log}
}

// LoadResult is one reconciled view. RemoteErr is set when the remote fetch
// failed and Records holds local data only; that is a degraded but valid
// result, not a failure.
type LoadResult struct {
	Records   []*models.EnhancedRecord
	RemoteErr error
}

// Load restores all local records and fetches the remote list concurrently,
// then merges them. A remote failure never aborts the local view; a local
// store failure does.
func (e *Engine) Load(ctx context.Context, forceRefresh bool) (*LoadResult, error) {
	var (
		local      []*models.ArtifactRecord
		remoteRecs []*models.ArtifactRecord
		remoteErr  error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := e.tier.Records().GetAll(gctx)
		if err != nil {
			return fmt.Errorf("local records: %w", err)
		}
		for _, rec := range recs {
			if _, err := e.tier.Restore(gctx, rec); err != nil {
				// record stays in the list without a handle
				e.log.Warn(gctx, "restore failed", "id", rec.Id, "error", err)
			}
		}
		local = recs
		return nil
	})

	g.Go(func() error {
		recs, err := e.fetcher.FetchRecords(gctx, forceRefresh)
		if err != nil {
			e.log.Warn(gctx, "remote fetch failed, using local records only", "error", err)
			remoteErr = fmt.Errorf("%w: %v", common.ErrRemoteFetchFailed, err)
			return nil
		}
		remoteRecs = recs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &LoadResult{Records: Merge(local, remoteRecs), RemoteErr: remoteErr}, nil
}
