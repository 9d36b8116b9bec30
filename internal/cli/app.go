// Package cli implements the interactive mediavault shell: thin I/O glue
// over the vault service, no business logic of its own.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/config"
	"github.com/avdeevs/mediavault/internal/convert"
	"github.com/avdeevs/mediavault/internal/cryptox"
	"github.com/avdeevs/mediavault/internal/filex"
	"github.com/avdeevs/mediavault/internal/logging"
	"github.com/avdeevs/mediavault/internal/reconcile"
	"github.com/avdeevs/mediavault/internal/remote"
	"github.com/avdeevs/mediavault/internal/storage/blobstore"
	"github.com/avdeevs/mediavault/internal/storage/recordstore"
	"github.com/avdeevs/mediavault/internal/tier"
	"github.com/avdeevs/mediavault/internal/upload"
	"github.com/avdeevs/mediavault/internal/vault"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	svc    *vault.Service
	db     *sql.DB
	reader *bufio.Reader

	// screen tags the command currently holding the prompt; the conversion
	// service compares it against the context captured at submission time.
	screen string
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	repo, db, err := recordstore.Open(ctx, c.RecordStoreDSN)
	if err != nil {
		log.Printf("error initializing record store: %s", err.Error())
		return nil, err
	}

	blobs, err := openBlobStore(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	scratch, err := filex.EnsureSubdDir(c.ScratchDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	manager, err := tier.NewManager(repo, blobs, scratch, logger, tier.WithInlineThreshold(c.InlineThresholdBytes))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	fetcher := remote.NewHTTPClient(c.RemoteEndpointURL, c.RemoteToken)
	engine := reconcile.NewEngine(manager, fetcher, logger)
	uploads := upload.NewTracker(repo, logger)

	convertDir, err := filex.EnsureSubdDir(c.ConvertWorkDir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	worker := convert.NewExecWorker(convertDir, convert.WithBinary(c.TranscoderBinary))
	converter := convert.NewService(worker, logger, convert.WithDeadline(c.ConversionDeadline))

	svc := vault.New(manager, engine, uploads, converter, logger)

	a := &App{config: c, svc: svc, db: db, reader: bufio.NewReader(os.Stdin), screen: "main"}

	svc.SetBackgroundCallbacks(convert.BackgroundCallbacks{
		CurrentContext: func() string { return a.screen },
		OnComplete: func(res convert.Result) {
			log.Printf("conversion finished in background: %s", res.Name)
		},
		OnError: func(err error) {
			log.Printf("background conversion failed: %v", err)
		},
	})

	return a, nil
}

// openBlobStore picks the blob tier backend: S3 when a bucket is
// configured, the local filesystem otherwise. With Sealed set the store is
// wrapped in the encrypting layer, keyed from an interactive passphrase.
func openBlobStore(ctx context.Context, c *config.Config) (blobstore.Store, error) {
	var store blobstore.Store
	var err error

	if c.S3Bucket != "" {
		store, err = blobstore.NewS3(ctx, blobstore.S3Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
	} else {
		store, err = blobstore.NewLocal(c.BlobStoreRoot)
	}
	if err != nil {
		return nil, err
	}

	if !c.Sealed {
		return store, nil
	}

	passphrase, err := GetPassword(os.Stdout)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(passphrase)

	salt, err := loadOrCreateSalt(filepath.Join(c.BlobStoreRoot, "seal.salt"))
	if err != nil {
		return nil, err
	}

	return blobstore.NewSealed(store, cryptox.DeriveKey(passphrase, salt)), nil
}

// loadOrCreateSalt keeps the sealing salt next to the blob tree so the same
// passphrase derives the same key across restarts.
func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil && len(salt) > 0 {
		return salt, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	salt = common.GenerateRandByteArray(32)
	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, salt, 0o600); err != nil {
		return nil, err
	}
	return salt, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() {
	a.svc.DestroyWorker()
	_ = a.db.Close()
}
