package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"record_store_dsn":    "postgres://localhost/mv",
		"conversion_deadline": "10s",
		"s3_bucket":           "mv-bucket",
		"sealed":              true,
	})

	t.Run("loads from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "postgres://localhost/mv", cfg.RecordStoreDSN)
		assert.Equal(t, 10*time.Second, cfg.ConversionDeadline)
		assert.Equal(t, "mv-bucket", cfg.S3Bucket)
		assert.True(t, cfg.Sealed)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			RecordStoreDSN:     "defaults.db",
			ConversionDeadline: 42 * time.Second,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults.db", cfg.RecordStoreDSN)
		assert.Equal(t, 42*time.Second, cfg.ConversionDeadline)
	})

	t.Run("empty fields keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{
			"remote_token": "tok",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "tok", cfg.RemoteToken)
		assert.Equal(t, "mediavault.db", cfg.RecordStoreDSN)
		assert.Equal(t, "ffmpeg-shim", cfg.TranscoderBinary)
	})
}

func Test_parseJson_BadFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin", "-config", filepath.Join(t.TempDir(), "missing.json")}

	assert.Panics(t, func() {
		cfg := &Config{}
		parseJson(cfg)
	})
}
