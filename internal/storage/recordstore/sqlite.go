package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/dbx"
	"github.com/avdeevs/mediavault/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const recordColumns = `id, name, kind, content_type, size_bytes, duration_seconds, created_at, uploaded, upload_percent, inline_data, blob_key`

// locationColumns splits a Location into the two nullable payload columns.
// The schema enforces that exactly one of them is set.
func locationColumns(loc models.Location) (inline sql.NullString, blobKey sql.NullString, err error) {
	switch l := loc.(type) {
	case models.Inline:
		return sql.NullString{String: l.Data, Valid: true}, sql.NullString{}, nil
	case models.BlobRef:
		return sql.NullString{}, sql.NullString{String: l.Key, Valid: true}, nil
	default:
		return sql.NullString{}, sql.NullString{}, fmt.Errorf("record has no storage location")
	}
}

func scanRecord(row interface{ Scan(dest ...any) error }) (*models.ArtifactRecord, error) {
	rec := &models.ArtifactRecord{}
	var createdAt int64
	var inline, blobKey sql.NullString

	err := row.Scan(&rec.Id, &rec.Name, &rec.Kind, &rec.ContentType, &rec.SizeBytes,
		&rec.DurationSeconds, &createdAt, &rec.Uploaded, &rec.UploadPercent, &inline, &blobKey)
	if err != nil {
		return nil, err
	}

	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	switch {
	case inline.Valid:
		rec.Location = models.Inline{Data: inline.String}
	case blobKey.Valid:
		rec.Location = models.BlobRef{Key: blobKey.String}
	}
	return rec, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec *models.ArtifactRecord) error {
	inline, blobKey, err := locationColumns(rec.Location)
	if err != nil {
		return err
	}

	query := `INSERT INTO records (id, name, kind, content_type, size_bytes, duration_seconds, created_at, uploaded, upload_percent, inline_data, blob_key, deleted)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`
	_, err = r.db.ExecContext(ctx, query,
		rec.Id, rec.Name, rec.Kind, rec.ContentType, rec.SizeBytes, rec.DurationSeconds,
		rec.CreatedAt.Unix(), rec.Uploaded, rec.UploadPercent, inline, blobKey)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.ArtifactRecord, error) {
	query := `select ` + recordColumns + ` from records where id=? and deleted=0`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return rec, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.ArtifactRecord, error) {
	query := `select ` + recordColumns + ` from records where deleted=0 order by created_at desc, id`
	return r.queryRecords(ctx, query)
}

func (r *SQLiteRepository) GetAllPendingUpload(ctx context.Context) ([]*models.ArtifactRecord, error) {
	query := `select ` + recordColumns + ` from records where deleted=0 and uploaded=0 order by created_at desc, id`
	return r.queryRecords(ctx, query)
}

func (r *SQLiteRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.ArtifactRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Rename(ctx context.Context, id string, name string) error {
	query := `update records set name=? where id=? and deleted=0`
	return r.execOne(ctx, query, name, id)
}

func (r *SQLiteRepository) MarkUploaded(ctx context.Context, id string) error {
	query := `update records set uploaded=1, upload_percent=100 where id=? and deleted=0`
	return r.execOne(ctx, query, id)
}

// execOne runs an update that must touch exactly one live row.
func (r *SQLiteRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != 1 {
		return common.ErrRecordNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	query := `update records set deleted=1 where id=? and deleted=0`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) PurgeByID(ctx context.Context, id string) error {
	query := `delete from records where id=? and deleted=1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to purge record: %w", err)
	}
	return nil
}
