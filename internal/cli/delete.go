package cli

import (
	"context"
	"fmt"
	"log"
	"os"
)

func (a *App) delete(ctx context.Context) {

	id, err := GetSimpleText(a.reader, "Enter record id to delete", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	removed, err := a.svc.RemoveArtifact(ctx, id)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return
	}

	for _, rid := range removed {
		fmt.Println("removed", rid)
	}
}

func (a *App) rename(ctx context.Context) {

	id, err := GetSimpleText(a.reader, "Enter record id to rename", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	name, err := GetSimpleText(a.reader, "Enter new name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return
	}

	if err := a.svc.RenameArtifact(ctx, id, name); err != nil {
		log.Printf("Error: %s", err.Error())
	}
}
