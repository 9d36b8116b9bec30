package cli

import (
	"context"
	"fmt"
	"log"
)

func (a *App) list(ctx context.Context, forceRefresh bool) {
	res, err := a.svc.Load(ctx, forceRefresh)
	if err != nil {
		log.Println(err.Error())
		return
	}

	if res.RemoteErr != nil {
		log.Printf("remote listing unavailable, showing local records only: %v", res.RemoteErr)
	}

	for _, item := range res.Records {
		origin := "remote"
		if item.IsLocal {
			origin = "local"
		}
		fmt.Printf("%s  %-9s %-6s %8d bytes  %s\n", item.Id, item.Kind, origin, item.SizeBytes, item.Name)
	}
}

func (a *App) uploads(ctx context.Context) {
	states := a.svc.UploadSnapshot()
	for id, state := range states {
		fmt.Printf("%s  %-9s %5.1f%%  %s\n", id, state.Status, state.Progress*100, state.ErrorMessage)
	}

	pending, err := a.svc.PendingUploads(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}
	for _, rec := range pending {
		if _, tracked := states[rec.Id]; tracked {
			continue
		}
		fmt.Printf("%s  not started     %s\n", rec.Id, rec.Name)
	}
}
