package reconcile

import (
	"strings"

	"github.com/avdeevs/mediavault/internal/models"
)

// Recording names follow the kind_title_author_date.ext convention, so the
// same artifact seen locally and remotely may differ only in extension or
// kind prefix. BaseKey normalizes a name down to the identity-bearing part.
//
// Known limitation: two genuinely distinct artifacts that share kind, title,
// author and date collapse into one canonical key. That ambiguity lives in
// the naming convention itself and is deliberately not papered over here.

var kindPrefixes = map[string]struct{}{
	"audio":     {},
	"video":     {},
	"thumb":     {},
	"thumbnail": {},
	"doc":       {},
	"document":  {},
}

// BaseKey lowercases the name, strips the extension and a leading kind
// prefix, and returns what is left.
func BaseKey(name string) string {
	base := strings.ToLower(strings.TrimSpace(name))

	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}

	parts := strings.Split(base, "_")
	if len(parts) > 1 {
		if _, ok := kindPrefixes[parts[0]]; ok {
			base = strings.Join(parts[1:], "_")
		}
	}
	return base
}

// CanonicalKey derives the identity used to detect that two records
// represent the same artifact across provenance.
func CanonicalKey(rec *models.ArtifactRecord) string {
	return string(rec.Kind) + "|" + BaseKey(rec.Name)
}
