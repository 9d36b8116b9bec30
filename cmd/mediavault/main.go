package main

import (
	"context"
	"log"
	"os"

	"github.com/avdeevs/mediavault/internal/buildinfo"
	"github.com/avdeevs/mediavault/internal/cli"
	"github.com/avdeevs/mediavault/internal/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
