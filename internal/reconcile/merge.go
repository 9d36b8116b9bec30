// Package reconcile merges locally-created records with records reported by
// the remote repository into one duplicate-free view, and computes which
// records must be purged together when one is deleted.
package reconcile

import (
	"github.com/avdeevs/mediavault/internal/models"
)

// Merge combines the two provenance groups into one deduplicated list.
//
// All local records are kept, in order, marked IsLocal. A remote record
// enters only if no already-accepted record shares its canonical key, so on
// a tie the local entry wins. The function is pure: same inputs, same output
// list, same order.
func Merge(local []*models.ArtifactRecord, remote []*models.ArtifactRecord) []*models.EnhancedRecord {
	result := make([]*models.EnhancedRecord, 0, len(local)+len(remote))
	seen := make(map[string]struct{}, len(local))

	for _, rec := range local {
		result = append(result, &models.EnhancedRecord{ArtifactRecord: *rec, IsLocal: true})
		seen[CanonicalKey(rec)] = struct{}{}
	}

	for _, rec := range remote {
		key := CanonicalKey(rec)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, &models.EnhancedRecord{ArtifactRecord: *rec, IsLocal: false})
	}

	return result
}
