// Package remote defines the remote repository collaborator: the service
// that knows which recordings exist on the user's remote storage.
package remote

import (
	"context"

	"github.com/avdeevs/mediavault/internal/models"
)

// Fetcher supplies the remote view of the record set. forceRefresh bypasses
// any client-side caching. Failures are recoverable: reconciliation falls
// back to the local view and reports the error separately.
type Fetcher interface {
	FetchRecords(ctx context.Context, forceRefresh bool) ([]*models.ArtifactRecord, error)
}
