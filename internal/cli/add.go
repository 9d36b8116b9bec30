package cli

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/avdeevs/mediavault/internal/models"
	"github.com/avdeevs/mediavault/internal/tier"
)

func (a *App) add(ctx context.Context) {

	path, err := GetSimpleText(a.reader, "Enter path to the file to add", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	kind, err := GetSimpleText(a.reader, "Enter kind (audio/video/thumbnail/document)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}
	switch models.Kind(kind) {
	case models.KindAudio, models.KindVideo, models.KindThumbnail, models.KindDocument:
	default:
		log.Printf("unknown kind: %s", kind)
		return
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	rec, err := a.svc.CreateArtifact(ctx, payload, tier.Metadata{
		Name:        filepath.Base(path),
		Kind:        models.Kind(kind),
		ContentType: contentTypeFor(path),
	})
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Printf("Added %s (%d bytes) as %s\n", rec.Name, rec.SizeBytes, rec.Id)
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
