package vault

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/convert"
	"github.com/avdeevs/mediavault/internal/logging"
	"github.com/avdeevs/mediavault/internal/models"
	"github.com/avdeevs/mediavault/internal/reconcile"
	"github.com/avdeevs/mediavault/internal/storage/blobstore"
	"github.com/avdeevs/mediavault/internal/storage/recordstore"
	"github.com/avdeevs/mediavault/internal/tier"
	"github.com/avdeevs/mediavault/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type staticFetcher struct {
	records []*models.ArtifactRecord
	err     error
}

func (f *staticFetcher) FetchRecords(ctx context.Context, forceRefresh bool) ([]*models.ArtifactRecord, error) {
	return f.records, f.err
}

type echoWorker struct{}

func (echoWorker) Run(ctx context.Context, requests <-chan convert.Request, messages chan<- convert.Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case req, ok := <-requests:
			if !ok {
				return nil
			}
			messages <- convert.Message{Type: convert.MessageComplete, ID: req.ID, Result: &convert.Result{
				Data: []byte("converted"), ContentType: "audio/mpeg", Name: "audio_talk_me_2026-01-15.mp3",
			}}
		}
	}
}

func setupService(t *testing.T, fetcher *staticFetcher) *Service {
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

	repo := recordstore.NewSQLiteRepository(db)
	blobs, err := blobstore.NewLocal(t.TempDir())
	require.NoError(t, err)

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	manager, err := tier.NewManager(repo, blobs, t.TempDir(), log)
	require.NoError(t, err)

	svc := New(
		manager,
		reconcile.NewEngine(manager, fetcher, log),
		upload.NewTracker(repo, log),
		convert.NewService(echoWorker{}, log),
		log,
	)
	t.Cleanup(svc.DestroyWorker)
	return svc
}

func TestRemoveArtifact_CascadesThumbnailAndClearsUploads(t *testing.T) {
	svc := setupService(t, &staticFetcher{})
	ctx := context.Background()

	video, err := svc.CreateArtifact(ctx, []byte("video"), tier.Metadata{
		Name: "video_demo_me_2026-01-15.mp4", Kind: models.KindVideo, ContentType: "video/mp4",
	})
	require.NoError(t, err)

	thumb, err := svc.CreateArtifact(ctx, []byte("thumb"), tier.Metadata{
		Name: "thumb_demo_me_2026-01-15.png", Kind: models.KindThumbnail, ContentType: "image/png",
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetUploadProgress(ctx, video.Id, models.UploadState{Status: models.UploadUploading, Progress: 0.5}))

	removed, err := svc.RemoveArtifact(ctx, video.Id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{video.Id, thumb.Id}, removed)

	_, ok := svc.UploadProgress(video.Id)
	assert.False(t, ok)

	res, err := svc.Load(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
}

func TestRemoveArtifact_Unknown(t *testing.T) {
	svc := setupService(t, &staticFetcher{})

	_, err := svc.RemoveArtifact(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrRecordNotFound)
}

func TestLoad_RemoteRecordsVisible(t *testing.T) {
	svc := setupService(t, &staticFetcher{records: []*models.ArtifactRecord{
		{Id: "r1", Name: "audio_far_me_2026-01-15.mp3", Kind: models.KindAudio, Uploaded: true},
	}})

	res, err := svc.Load(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.False(t, res.Records[0].IsLocal)
}

func TestSubmitConversion_LazyInitAndSave(t *testing.T) {
	svc := setupService(t, &staticFetcher{})
	ctx := context.Background()

	// воркер ещё не инициализирован, Submit делает это сам
	task := svc.SubmitConversion(convert.Payload{Name: "audio_talk_me_2026-01-15.webm", TargetFormat: "mp3"}, nil)
	res, err := task.Wait(ctx)
	require.NoError(t, err)

	rec, err := svc.SaveConversion(ctx, *res, models.KindAudio)
	require.NoError(t, err)
	assert.Equal(t, "audio_talk_me_2026-01-15.mp3", rec.Name)
	assert.Equal(t, models.KindAudio, rec.Kind)

	loaded, err := svc.Load(ctx, false)
	require.NoError(t, err)
	require.Len(t, loaded.Records, 1)
	assert.Equal(t, rec.Id, loaded.Records[0].Id)
}

func TestSubmitConversion_AfterDestroyRestarts(t *testing.T) {
	svc := setupService(t, &staticFetcher{})
	ctx := context.Background()

	task := svc.SubmitConversion(convert.Payload{TargetFormat: "mp3"}, nil)
	_, err := task.Wait(ctx)
	require.NoError(t, err)

	svc.DestroyWorker()

	task = svc.SubmitConversion(convert.Payload{TargetFormat: "mp3"}, nil)
	_, err = task.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, svc.PendingConversionCount())
}

func TestRenameArtifact(t *testing.T) {
	svc := setupService(t, &staticFetcher{})
	ctx := context.Background()

	rec, err := svc.CreateArtifact(ctx, []byte("x"), tier.Metadata{
		Name: "audio_old_me_2026-01-15.webm", Kind: models.KindAudio, ContentType: "audio/webm",
	})
	require.NoError(t, err)

	require.NoError(t, svc.RenameArtifact(ctx, rec.Id, "audio_new_me_2026-01-15.webm"))

	res, err := svc.Load(ctx, false)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "audio_new_me_2026-01-15.webm", res.Records[0].Name)
}
