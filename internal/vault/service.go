// Package vault is the front door of the media storage core: one service
// object, constructed once at process start with injected collaborators,
// through which callers reach the storage tiers, the reconciled view, the
// upload tracker and the conversion worker.
package vault

import (
	"context"
	"fmt"

	"github.com/avdeevs/mediavault/internal/convert"
	"github.com/avdeevs/mediavault/internal/logging"
	"github.com/avdeevs/mediavault/internal/models"
	"github.com/avdeevs/mediavault/internal/reconcile"
	"github.com/avdeevs/mediavault/internal/tier"
	"github.com/avdeevs/mediavault/internal/upload"
)

// Service exposes the operations of spec'd components behind one handle.
type Service struct {
	tier      *tier.Manager
	engine    *reconcile.Engine
	uploads   *upload.Tracker
	converter *convert.Service
	log       logging.Logger
}

// New wires the service. All collaborators are required.
func New(t *tier.Manager, engine *reconcile.Engine, uploads *upload.Tracker, converter *convert.Service, log logging.Logger) *Service {
	return &Service{tier: t, engine: engine, uploads: uploads, converter: converter, log: log}
}

// CreateArtifact makes a new recording durable and returns its record with
// a fresh transient handle.
func (s *Service) CreateArtifact(ctx context.Context, payload []byte, meta tier.Metadata) (*models.ArtifactRecord, error) {
	return s.tier.Create(ctx, payload, meta)
}

// RestoreArtifact reconstructs a usable handle for a stored record.
func (s *Service) RestoreArtifact(ctx context.Context, rec *models.ArtifactRecord) (*models.ArtifactRecord, error) {
	return s.tier.Restore(ctx, rec)
}

// RemoveArtifact deletes the record with the given id together with any
// attached local records (thumbnails), cleaning each one out of whichever
// storage tier holds it. The removed ids are returned for view pruning.
func (s *Service) RemoveArtifact(ctx context.Context, id string) ([]string, error) {
	ids, records, err := s.RecordsToRemoveFor(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if err := s.tier.Remove(ctx, rec); err != nil {
			return nil, fmt.Errorf("remove %s: %w", rec.Id, err)
		}
		s.uploads.Clear(rec.Id)
	}
	return ids, nil
}

// RecordsToRemoveFor computes the removal set for one record id without
// deleting anything.
func (s *Service) RecordsToRemoveFor(ctx context.Context, id string) ([]string, []*models.ArtifactRecord, error) {
	locals, err := s.tier.Records().GetAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("local records: %w", err)
	}
	return reconcile.RecordsToRemoveFor(locals, id)
}

// Load returns the reconciled local+remote view. A remote failure degrades
// the result to local-only and is reported in LoadResult.RemoteErr.
func (s *Service) Load(ctx context.Context, forceRefresh bool) (*reconcile.LoadResult, error) {
	return s.engine.Load(ctx, forceRefresh)
}

// RenameArtifact updates a local record's display name.
func (s *Service) RenameArtifact(ctx context.Context, id string, name string) error {
	return s.tier.Records().Rename(ctx, id, name)
}

// SetUploadProgress overwrites the tracked upload state for a record;
// success also marks the record uploaded.
func (s *Service) SetUploadProgress(ctx context.Context, id string, state models.UploadState) error {
	return s.uploads.SetProgress(ctx, id, state)
}

// ClearUploadProgress drops the tracked upload state for a record.
func (s *Service) ClearUploadProgress(id string) {
	s.uploads.Clear(id)
}

// UploadProgress returns the tracked upload state for a record, if any.
func (s *Service) UploadProgress(id string) (models.UploadState, bool) {
	return s.uploads.Get(id)
}

// UploadSnapshot returns a copy of all tracked upload states keyed by
// record id.
func (s *Service) UploadSnapshot() map[string]models.UploadState {
	return s.uploads.Snapshot()
}

// PendingUploads lists local records that have not been uploaded yet.
func (s *Service) PendingUploads(ctx context.Context) ([]*models.ArtifactRecord, error) {
	return s.tier.Records().GetAllPendingUpload(ctx)
}

// SubmitConversion hands a payload to the singleton conversion worker,
// starting it lazily on first use (and again after DestroyWorker). The
// returned task never fails synchronously; every outcome arrives via Wait.
func (s *Service) SubmitConversion(payload convert.Payload, onProgress convert.ProgressFunc) *convert.Task {
	s.converter.Initialize()
	return s.converter.Submit(payload, onProgress)
}

// SaveConversion persists a finished conversion as a new artifact.
func (s *Service) SaveConversion(ctx context.Context, res convert.Result, kind models.Kind) (*models.ArtifactRecord, error) {
	return s.tier.Create(ctx, res.Data, tier.Metadata{
		Name:        res.Name,
		Kind:        kind,
		ContentType: res.ContentType,
	})
}

// PendingConversionCount reports how many conversions are in flight.
func (s *Service) PendingConversionCount() int {
	return s.converter.PendingCount()
}

// SetBackgroundCallbacks installs the off-screen completion callbacks.
func (s *Service) SetBackgroundCallbacks(cb convert.BackgroundCallbacks) {
	s.converter.SetBackgroundCallbacks(cb)
}

// DestroyWorker terminates the conversion worker, rejecting everything
// pending.
func (s *Service) DestroyWorker() {
	s.converter.Destroy()
}
