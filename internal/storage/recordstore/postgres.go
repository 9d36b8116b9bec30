package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/dbx"
	"github.com/avdeevs/mediavault/internal/models"
)

// PostgresRepository implements Repository for shared deployments where the
// record store lives in Postgres rather than in a device-local SQLite file.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository returns a new PostgresRepository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec *models.ArtifactRecord) error {
	inline, blobKey, err := locationColumns(rec.Location)
	if err != nil {
		return err
	}

	query := `INSERT INTO records (id, name, kind, content_type, size_bytes, duration_seconds, created_at, uploaded, upload_percent, inline_data, blob_key, deleted)
			values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE)`
	_, err = r.db.ExecContext(ctx, query,
		rec.Id, rec.Name, rec.Kind, rec.ContentType, rec.SizeBytes, rec.DurationSeconds,
		rec.CreatedAt.Unix(), rec.Uploaded, rec.UploadPercent, inline, blobKey)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.ArtifactRecord, error) {
	query := `select ` + recordColumns + ` from records where id=$1 and not deleted`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]*models.ArtifactRecord, error) {
	query := `select ` + recordColumns + ` from records where not deleted order by created_at desc, id`
	return r.queryRecords(ctx, query)
}

func (r *PostgresRepository) GetAllPendingUpload(ctx context.Context) ([]*models.ArtifactRecord, error) {
	query := `select ` + recordColumns + ` from records where not deleted and not uploaded order by created_at desc, id`
	return r.queryRecords(ctx, query)
}

func (r *PostgresRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.ArtifactRecord, error) {
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

func (r *PostgresRepository) Rename(ctx context.Context, id string, name string) error {
	query := `update records set name=$1 where id=$2 and not deleted`
	return r.execOne(ctx, query, name, id)
}

func (r *PostgresRepository) MarkUploaded(ctx context.Context, id string) error {
	query := `update records set uploaded=TRUE, upload_percent=100 where id=$1 and not deleted`
	return r.execOne(ctx, query, id)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
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

func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	query := `update records set deleted=TRUE where id=$1 and not deleted`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (r *PostgresRepository) PurgeByID(ctx context.Context, id string) error {
	query := `delete from records where id=$1 and deleted`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to purge record: %w", err)
	}
	return nil
}
