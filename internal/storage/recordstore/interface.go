package recordstore

import (
	"context"

	"github.com/avdeevs/mediavault/internal/models"
)

// Repository describes the durable record store: all artifact metadata plus
// inline-encoded payloads. Implementations are backed by a local SQLite
// database or by Postgres, both via dbx.DBTX.
type Repository interface {
	// Insert stores a freshly created record.
	Insert(ctx context.Context, rec *models.ArtifactRecord) error

	// GetByID returns the record with the given id, or common.ErrRecordNotFound.
	// Soft-deleted records are invisible.
	GetByID(ctx context.Context, id string) (*models.ArtifactRecord, error)

	// GetAll lists all live records, newest first.
	GetAll(ctx context.Context) ([]*models.ArtifactRecord, error)

	// GetAllPendingUpload lists live records that have not been uploaded yet.
	GetAllPendingUpload(ctx context.Context) ([]*models.ArtifactRecord, error)

	// Rename updates the record's display name.
	Rename(ctx context.Context, id string, name string) error

	// MarkUploaded sets uploaded=true and upload_percent=100.
	MarkUploaded(ctx context.Context, id string) error

	// DeleteByID soft-deletes the record. Deleting an unknown or already
	// deleted id is a no-op.
	DeleteByID(ctx context.Context, id string) error

	// PurgeByID removes a soft-deleted row for good. Called after payload
	// cleanup has succeeded.
	PurgeByID(ctx context.Context, id string) error
}
