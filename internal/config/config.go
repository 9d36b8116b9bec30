// Package config holds runtime settings for the mediavault CLI and the
// storage core it wires up.
package config

import (
	"time"

	"github.com/avdeevs/mediavault/internal/tier"
)

// Config holds runtime settings.
//
// S3Bucket empty means the blob tier lives on the local filesystem under
// BlobStoreRoot; otherwise payloads go to the configured S3-compatible
// endpoint.
type Config struct {
	RecordStoreDSN string
	BlobStoreRoot  string
	ScratchDir     string
	ConvertWorkDir string

	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	InlineThresholdBytes int64
	ConversionDeadline   time.Duration
	TranscoderBinary     string

	RemoteEndpointURL string
	RemoteToken       string

	Sealed bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.RecordStoreDSN = "mediavault.db"
	c.BlobStoreRoot = "blobs"
	c.ScratchDir = "scratch"
	c.ConvertWorkDir = "convert"
	c.InlineThresholdBytes = tier.DefaultInlineThreshold
	c.ConversionDeadline = 30 * time.Second
	c.TranscoderBinary = "ffmpeg-shim"
	c.RemoteEndpointURL = "http://127.0.0.1:8080"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
