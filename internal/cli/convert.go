package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/avdeevs/mediavault/internal/convert"
	"github.com/avdeevs/mediavault/internal/models"
)

func (a *App) convert(ctx context.Context) {

	id, err := GetSimpleText(a.reader, "Enter record id to convert", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	format, err := GetSimpleText(a.reader, "Enter target format (mp3/ogg/wav/mp4/webm/gif)", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	rec := a.findRecord(ctx, id)
	if rec == nil {
		log.Printf("record %s not found", id)
		return
	}
	if !rec.IsLocal {
		log.Printf("record %s has no local copy to convert", id)
		return
	}

	restored, err := a.svc.RestoreArtifact(ctx, &rec.ArtifactRecord)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	if restored.Handle == nil {
		log.Printf("record %s payload is not available locally", id)
		return
	}

	a.screen = "convert"
	task := a.svc.SubmitConversion(convert.Payload{
		SourcePath:   restored.Handle.Path,
		SourceType:   restored.ContentType,
		TargetFormat: format,
		Name:         restored.Name,
	}, func(progress float64, phase string) {
		fmt.Printf("\r%-12s %5.1f%%", phase, progress*100)
	})

	res, err := task.Wait(ctx)
	fmt.Println()
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	saved, err := a.svc.SaveConversion(ctx, *res, kindForFormat(format))
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	fmt.Printf("Converted %s -> %s (%s)\n", restored.Name, saved.Name, saved.Id)
}

func kindForFormat(format string) models.Kind {
	switch format {
	case "mp3", "ogg", "wav":
		return models.KindAudio
	case "gif":
		return models.KindThumbnail
	default:
		return models.KindVideo
	}
}
