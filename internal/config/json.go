package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avdeevs/mediavault/internal/flagx"
	"github.com/avdeevs/mediavault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations may
// be given as strings like "30s" or as integer nanoseconds.
type JsonConfig struct {
	RecordStoreDSN string `json:"record_store_dsn"`
	BlobStoreRoot  string `json:"blob_store_root"`
	ScratchDir     string `json:"scratch_dir"`
	ConvertWorkDir string `json:"convert_work_dir"`

	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`

	InlineThresholdBytes int64          `json:"inline_threshold_bytes"`
	ConversionDeadline   timex.Duration `json:"conversion_deadline"`
	TranscoderBinary     string         `json:"transcoder_binary"`

	RemoteEndpointURL string `json:"remote_endpoint_url"`
	RemoteToken       string `json:"remote_token"`

	Sealed bool `json:"sealed"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flags. With no such flag the function is a no-op. Read or
// unmarshal errors panic; the caller may recover if desired.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.RecordStoreDSN != "" {
		cfg.RecordStoreDSN = jc.RecordStoreDSN
	}
	if jc.BlobStoreRoot != "" {
		cfg.BlobStoreRoot = jc.BlobStoreRoot
	}
	if jc.ScratchDir != "" {
		cfg.ScratchDir = jc.ScratchDir
	}
	if jc.ConvertWorkDir != "" {
		cfg.ConvertWorkDir = jc.ConvertWorkDir
	}
	cfg.S3Bucket = jc.S3Bucket
	cfg.S3Region = jc.S3Region
	cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	cfg.S3AccessKey = jc.S3AccessKey
	cfg.S3SecretKey = jc.S3SecretKey
	if jc.InlineThresholdBytes > 0 {
		cfg.InlineThresholdBytes = jc.InlineThresholdBytes
	}
	if jc.ConversionDeadline.Duration > 0 {
		cfg.ConversionDeadline = time.Duration(jc.ConversionDeadline.Duration)
	}
	if jc.TranscoderBinary != "" {
		cfg.TranscoderBinary = jc.TranscoderBinary
	}
	if jc.RemoteEndpointURL != "" {
		cfg.RemoteEndpointURL = jc.RemoteEndpointURL
	}
	if jc.RemoteToken != "" {
		cfg.RemoteToken = jc.RemoteToken
	}
	cfg.Sealed = cfg.Sealed || jc.Sealed
}
