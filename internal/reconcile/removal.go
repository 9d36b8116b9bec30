package reconcile

import (
	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/models"
)

// RecordsToRemoveFor computes the full removal set for deleting targetID:
// the target itself plus any local thumbnail attached to it (same base key,
// thumbnail kind). Leaving such a thumbnail behind would orphan it, so it
// goes out with its parent.
//
// Both the id list (for view pruning) and the record objects (for storage
// cleanup, which needs payload-location info) are returned.
func RecordsToRemoveFor(local []*models.ArtifactRecord, targetID string) (ids []string, records []*models.ArtifactRecord, err error) {
	var target *models.ArtifactRecord
	for _, rec := range local {
		if rec.Id == targetID {
			target = rec
			break
		}
	}
	if target == nil {
		return nil, nil, common.ErrRecordNotFound
	}

	ids = []string{target.Id}
	records = []*models.ArtifactRecord{target}

	if target.Kind == models.KindThumbnail {
		return ids, records, nil
	}

	base := BaseKey(target.Name)
	for _, rec := range local {
		if rec.Id == target.Id || rec.Kind != models.KindThumbnail {
			continue
		}
		if BaseKey(rec.Name) == base {
			ids = append(ids, rec.Id)
			records = append(records, rec)
		}
	}
	return ids, records, nil
}
