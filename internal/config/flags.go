package config

import (
	"flag"
	"os"
	"time"

	"github.com/avdeevs/mediavault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   record store DSN (sqlite path or postgres:// URL)
//	-r string   remote repository endpoint URL
//	-t int      conversion deadline in seconds
//	-sealed     seal blob payloads at rest (prompts for a passphrase)
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-t", "-sealed"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.RecordStoreDSN, "d", cfg.RecordStoreDSN, "record store DSN")
	fs.StringVar(&cfg.RemoteEndpointURL, "r", cfg.RemoteEndpointURL, "remote repository endpoint URL")
	deadline := fs.Int("t", int(cfg.ConversionDeadline.Seconds()), "conversion deadline (in seconds)")
	fs.BoolVar(&cfg.Sealed, "sealed", cfg.Sealed, "seal blob payloads at rest")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ConversionDeadline = time.Duration(*deadline) * time.Second
}
