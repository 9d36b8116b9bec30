// Package tier implements the storage tier manager: it decides, per
// artifact, whether the payload is inline-encoded into the record store or
// kept in the blob tier, and reconstructs usable handles after a restart.
package tier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/logging"
	"github.com/avdeevs/mediavault/internal/models"
	"github.com/avdeevs/mediavault/internal/storage/blobstore"
	"github.com/avdeevs/mediavault/internal/storage/recordstore"
	"github.com/google/uuid"
)

// DefaultInlineThreshold is the payload size below which artifacts are
// inline-encoded instead of going to the blob tier.
const DefaultInlineThreshold = 1 << 20 // 1 MiB

// Metadata carries the caller-supplied description of a new artifact.
type Metadata struct {
	Name            string
	Kind            models.Kind
	ContentType     string
	DurationSeconds float64
}

// Option configures a Manager.
type Option func(*Manager)

// WithInlineThreshold overrides the inline/blob size threshold.
func WithInlineThreshold(n int64) Option {
	return func(m *Manager) {
		if n > 0 {
			m.threshold = n
		}
	}
}

// Manager owns the two storage tiers and the registry of live transient
// handles. Concurrent calls on different record ids are safe; callers must
// serialize mutations of the same id themselves.
type Manager struct {
	records   recordstore.Repository
	blobs     blobstore.Store
	scratch   string
	threshold int64
	log       logging.Logger

	mu      sync.Mutex
	handles map[string]*models.Handle
}

// NewManager creates a Manager. scratchDir is where transient handles are
// materialized; it is created if missing.
func NewManager(records recordstore.Repository, blobs blobstore.Store, scratchDir string, log logging.Logger, opts ...Option) (*Manager, error) {
	if err := os.MkdirAll(scratchDir, 0o770); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	m := &Manager{
		records:   records,
		blobs:     blobs,
		scratch:   scratchDir,
		threshold: DefaultInlineThreshold,
		log:       log,
		handles:   make(map[string]*models.Handle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Create makes the payload durable and returns the new record with a fresh
// transient handle attached. The encoding tier is chosen once, by size, and
// never changed afterwards: exactly one write goes to exactly one store.
func (m *Manager) Create(ctx context.Context, payload []byte, meta Metadata) (*models.ArtifactRecord, error) {
	rec := &models.ArtifactRecord{
		Id:              uuid.NewString(),
		Name:            meta.Name,
		Kind:            meta.Kind,
		ContentType:     meta.ContentType,
		SizeBytes:       int64(len(payload)),
		DurationSeconds: meta.DurationSeconds,
		CreatedAt:       time.Now().UTC(),
	}

	if rec.SizeBytes < m.threshold {
		rec.Location = models.Inline{Data: EncodeInline(meta.ContentType, payload)}
	} else {
		if err := m.blobs.Put(ctx, rec.Id, payload); err != nil {
			return nil, fmt.Errorf("blob write: %w", storageErr(err))
		}
		rec.Location = models.BlobRef{Key: rec.Id}
	}

	if err := m.records.Insert(ctx, rec); err != nil {
		if _, ok := rec.Location.(models.BlobRef); ok {
			// roll back the orphaned blob, best effort
			_ = m.blobs.Delete(ctx, rec.Id)
		}
		return nil, fmt.Errorf("record write: %w", storageErr(err))
	}

	handle, err := m.mintHandle(rec.Id, payload)
	if err != nil {
		return nil, err
	}
	rec.Handle = handle

	m.log.Info(ctx, "artifact created", "id", rec.Id, "kind", rec.Kind, "size", rec.SizeBytes)
	return rec, nil
}

// Restore reattaches a usable handle to a record, reading the payload back
// from whichever tier holds it. It is idempotent: a record with a live
// handle is returned unchanged. A missing blob payload is not fatal; the
// record comes back without a handle and the caller treats it as unavailable.
func (m *Manager) Restore(ctx context.Context, rec *models.ArtifactRecord) (*models.ArtifactRecord, error) {
	if existing := m.liveHandle(rec.Id); existing != nil {
		rec.Handle = existing
		return rec, nil
	}

	var payload []byte
	switch loc := rec.Location.(type) {
	case models.Inline:
		_, data, err := DecodeInline(loc.Data)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rec.Id, err)
		}
		payload = data
	case models.BlobRef:
		data, err := m.blobs.Get(ctx, loc.Key)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				m.log.Warn(ctx, "blob payload missing, record unavailable", "id", rec.Id, "key", loc.Key)
				rec.Handle = nil
				return rec, nil
			}
			return nil, fmt.Errorf("blob read: %w", storageErr(err))
		}
		payload = data
	default:
		rec.Handle = nil
		return rec, nil
	}

	handle, err := m.mintHandle(rec.Id, payload)
	if err != nil {
		return nil, err
	}
	rec.Handle = handle
	return rec, nil
}

// Remove deletes the record and its payload from whichever tier holds it,
// and revokes any transient handle. Absent payloads or rows are no-ops.
func (m *Manager) Remove(ctx context.Context, rec *models.ArtifactRecord) error {
	if err := m.records.DeleteByID(ctx, rec.Id); err != nil {
		return fmt.Errorf("record delete: %w", storageErr(err))
	}

	m.releaseHandle(rec.Id)
	rec.Handle = nil

	if loc, ok := rec.Location.(models.BlobRef); ok {
		if err := m.blobs.Delete(ctx, loc.Key); err != nil {
			return fmt.Errorf("blob delete: %w", storageErr(err))
		}
	}

	if err := m.records.PurgeByID(ctx, rec.Id); err != nil {
		return fmt.Errorf("record purge: %w", storageErr(err))
	}

	m.log.Info(ctx, "artifact removed", "id", rec.Id)
	return nil
}

// Records exposes the underlying record repository for read paths that need
// metadata without payload reconstruction.
func (m *Manager) Records() recordstore.Repository {
	return m.records
}

func (m *Manager) liveHandle(id string) *models.Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.handles[id]; ok && h.Valid() {
		return h
	}
	return nil
}

func (m *Manager) mintHandle(id string, payload []byte) (*models.Handle, error) {
	path := filepath.Join(m.scratch, id)
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	h := models.NewHandle(path)
	m.mu.Lock()
	old := m.handles[id]
	m.handles[id] = h
	m.mu.Unlock()

	if old != nil && old != h {
		_ = old.Release()
	}
	return h, nil
}

func (m *Manager) releaseHandle(id string) {
	m.mu.Lock()
	h := m.handles[id]
	delete(m.handles, id)
	m.mu.Unlock()
	if h != nil {
		_ = h.Release()
	}
}

// storageErr maps repository/blob failures onto the storage taxonomy:
// not-found conditions pass through, everything else counts as the store
// being unavailable.
func storageErr(err error) error {
	if errors.Is(err, common.ErrNotFound) || errors.Is(err, common.ErrRecordNotFound) ||
		errors.Is(err, common.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
}
