package tier

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/logging"
	"github.com/avdeevs/mediavault/internal/models"
	"github.com/avdeevs/mediavault/internal/storage/blobstore"
	"github.com/avdeevs/mediavault/internal/storage/recordstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupRepo(t *testing.T) recordstore.Repository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE records (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  kind TEXT NOT NULL,
  content_type TEXT NOT NULL,
  size_bytes INTEGER NOT NULL,
  duration_seconds REAL NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  uploaded INTEGER NOT NULL DEFAULT 0,
  upload_percent INTEGER NOT NULL DEFAULT 0,
  inline_data TEXT,
  blob_key TEXT,
  deleted INTEGER NOT NULL DEFAULT 0,
  CHECK ((inline_data IS NULL) <> (blob_key IS NULL))
);
`)
	require.NoError(t, err)

	return recordstore.NewSQLiteRepository(db)
}

func setupManager(t *testing.T, opts ...Option) (*Manager, *blobstore.Local) {
	t.Helper()
	blobs, err := blobstore.NewLocal(t.TempDir())
	require.NoError(t, err)

	m, err := NewManager(setupRepo(t), blobs, t.TempDir(), testLogger(), opts...)
	require.NoError(t, err)
	return m, blobs
}

func TestCreate_SmallPayloadGoesInline(t *testing.T) {
	m, blobs := setupManager(t)
	ctx := context.Background()

	rec, err := m.Create(ctx, []byte("small"), Metadata{
		Name: "audio_a_b_2026-01-01.webm", Kind: models.KindAudio, ContentType: "audio/webm",
	})
	require.NoError(t, err)

	loc, ok := rec.Location.(models.Inline)
	require.True(t, ok)

	ct, data, err := DecodeInline(loc.Data)
	require.NoError(t, err)
	assert.Equal(t, "audio/webm", ct)
	assert.Equal(t, []byte("small"), data)

	// в blob-хранилище ничего не записано
	_, err = blobs.Get(ctx, rec.Id)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NotNil(t, rec.Handle)
	assert.True(t, rec.Handle.Valid())

	got, err := os.ReadFile(rec.Handle.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("small"), got)
}

func TestCreate_LargePayloadGoesToBlobs(t *testing.T) {
	m, blobs := setupManager(t, WithInlineThreshold(4))
	ctx := context.Background()

	rec, err := m.Create(ctx, []byte("over threshold"), Metadata{
		Name: "video_a_b_2026-01-01.mp4", Kind: models.KindVideo, ContentType: "video/mp4",
	})
	require.NoError(t, err)

	loc, ok := rec.Location.(models.BlobRef)
	require.True(t, ok)
	assert.Equal(t, rec.Id, loc.Key)

	data, err := blobs.Get(ctx, loc.Key)
	require.NoError(t, err)
	assert.Equal(t, []byte("over threshold"), data)

	stored, err := m.Records().GetByID(ctx, rec.Id)
	require.NoError(t, err)
	assert.Equal(t, models.BlobRef{Key: rec.Id}, stored.Location)
}

func TestCreate_ExactThresholdGoesToBlobs(t *testing.T) {
	m, _ := setupManager(t, WithInlineThreshold(4))

	rec, err := m.Create(context.Background(), []byte("abcd"), Metadata{
		Name: "audio_a_b_2026-01-01.webm", Kind: models.KindAudio, ContentType: "audio/webm",
	})
	require.NoError(t, err)

	_, ok := rec.Location.(models.BlobRef)
	assert.True(t, ok)
}

func TestRestore_InlineAfterHandleLoss(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	created, err := m.Create(ctx, []byte("payload"), Metadata{
		Name: "audio_a_b_2026-01-01.webm", Kind: models.KindAudio, ContentType: "audio/webm",
	})
	require.NoError(t, err)

	// имитируем рестарт процесса: временный файл пропал
	require.NoError(t, created.Handle.Release())

	stored, err := m.Records().GetByID(ctx, created.Id)
	require.NoError(t, err)
	require.Nil(t, stored.Handle)

	restored, err := m.Restore(ctx, stored)
	require.NoError(t, err)
	require.NotNil(t, restored.Handle)

	got, err := os.ReadFile(restored.Handle.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestRestore_IdempotentWithLiveHandle(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	created, err := m.Create(ctx, []byte("payload"), Metadata{
		Name: "audio_a_b_2026-01-01.webm", Kind: models.KindAudio, ContentType: "audio/webm",
	})
	require.NoError(t, err)

	restored, err := m.Restore(ctx, created)
	require.NoError(t, err)
	assert.Same(t, created.Handle, restored.Handle)
}

func TestRestore_MissingBlobIsNotFatal(t *testing.T) {
	m, blobs := setupManager(t, WithInlineThreshold(1))
	ctx := context.Background()

	created, err := m.Create(ctx, []byte("payload"), Metadata{
		Name: "video_a_b_2026-01-01.mp4", Kind: models.KindVideo, ContentType: "video/mp4",
	})
	require.NoError(t, err)
	require.NoError(t, created.Handle.Release())

	// кто-то удалил blob за нашей спиной
	require.NoError(t, blobs.Delete(ctx, created.Id))

	stored, err := m.Records().GetByID(ctx, created.Id)
	require.NoError(t, err)

	restored, err := m.Restore(ctx, stored)
	require.NoError(t, err)
	assert.Nil(t, restored.Handle)
}

func TestRemove_CleansBothTiersAndHandle(t *testing.T) {
	m, blobs := setupManager(t, WithInlineThreshold(1))
	ctx := context.Background()

	rec, err := m.Create(ctx, []byte("payload"), Metadata{
		Name: "video_a_b_2026-01-01.mp4", Kind: models.KindVideo, ContentType: "video/mp4",
	})
	require.NoError(t, err)
	handlePath := rec.Handle.Path

	require.NoError(t, m.Remove(ctx, rec))
	assert.Nil(t, rec.Handle)

	_, err = m.Records().GetByID(ctx, rec.Id)
	assert.ErrorIs(t, err, common.ErrRecordNotFound)

	_, err = blobs.Get(ctx, rec.Id)
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = os.Stat(handlePath)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRemove_UnknownIdIsNoop(t *testing.T) {
	m, _ := setupManager(t)

	err := m.Remove(context.Background(), &models.ArtifactRecord{Id: "missing", Location: models.Inline{Data: "data:a;base64,"}})
	assert.NoError(t, err)
}

// unavailableStore always fails, imitating a dead blob backend.
type unavailableStore struct{}

func (unavailableStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, common.ErrStorageUnavailable
}
func (unavailableStore) Put(ctx context.Context, key string, data []byte) error {
	return common.ErrStorageUnavailable
}
func (unavailableStore) Delete(ctx context.Context, key string) error {
	return common.ErrStorageUnavailable
}

func TestCreate_BlobStoreUnavailable(t *testing.T) {
	m, err := NewManager(setupRepo(t), unavailableStore{}, t.TempDir(), testLogger(), WithInlineThreshold(1))
	require.NoError(t, err)

	_, err = m.Create(context.Background(), []byte("payload"), Metadata{
		Name: "video_a_b_2026-01-01.mp4", Kind: models.KindVideo, ContentType: "video/mp4",
	})
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}

func TestRestore_BlobStoreUnavailable(t *testing.T) {
	m, err := NewManager(setupRepo(t), unavailableStore{}, t.TempDir(), testLogger())
	require.NoError(t, err)

	rec := &models.ArtifactRecord{Id: "id1", Location: models.BlobRef{Key: "id1"}}
	_, err = m.Restore(context.Background(), rec)
	assert.ErrorIs(t, err, common.ErrStorageUnavailable)
}
