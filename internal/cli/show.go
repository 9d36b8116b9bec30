package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/avdeevs/mediavault/internal/models"
)

func (a *App) show(ctx context.Context) {

	id, err := GetSimpleText(a.reader, "Enter record id to show", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	rec := a.findRecord(ctx, id)
	if rec == nil {
		log.Printf("record %s not found", id)
		return
	}

	fmt.Printf("Id:       %s\n", rec.Id)
	fmt.Printf("Name:     %s\n", rec.Name)
	fmt.Printf("Kind:     %s\n", rec.Kind)
	fmt.Printf("Type:     %s\n", rec.ContentType)
	fmt.Printf("Size:     %d bytes\n", rec.SizeBytes)
	if rec.DurationSeconds > 0 {
		fmt.Printf("Duration: %.1fs\n", rec.DurationSeconds)
	}
	fmt.Printf("Uploaded: %v\n", rec.Uploaded)
	fmt.Printf("Created:  %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))

	if !rec.IsLocal {
		fmt.Println("Stored remotely, no local copy")
		return
	}

	restored, err := a.svc.RestoreArtifact(ctx, &rec.ArtifactRecord)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}
	if restored.Handle != nil {
		fmt.Printf("Local copy: %s\n", restored.Handle.Path)
	}

	if state, ok := a.svc.UploadProgress(rec.Id); ok {
		fmt.Printf("Upload:   %s %.1f%%\n", state.Status, state.Progress*100)
	}
}

// findRecord resolves an id against the reconciled view.
func (a *App) findRecord(ctx context.Context, id string) *models.EnhancedRecord {
	res, err := a.svc.Load(ctx, false)
	if err != nil {
		log.Println(err.Error())
		return nil
	}
	for _, rec := range res.Records {
		if rec.Id == id {
			return rec
		}
	}
	return nil
}
