// Package upload tracks, per record id, the progress of pushing a local
// artifact to the remote repository.
package upload

import (
	"context"
	"fmt"
	"sync"

	"github.com/avdeevs/mediavault/internal/logging"
	"github.com/avdeevs/mediavault/internal/models"
	"github.com/avdeevs/mediavault/internal/storage/recordstore"
)

// Tracker keeps the in-memory upload state machine and writes the terminal
// success through to the record store, so one SetProgress call keeps both
// consistent. Entries exist only for local records; absence means no upload
// was attempted or the entry was cleared.
type Tracker struct {
	records recordstore.Repository
	log     logging.Logger

	mu     sync.Mutex
	states map[string]models.UploadState
}

// NewTracker creates an empty tracker bound to the record store.
func NewTracker(records recordstore.Repository, log logging.Logger) *Tracker {
	return &Tracker{
		records: records,
		log:     log,
		states:  make(map[string]models.UploadState),
	}
}

// SetProgress unconditionally overwrites the tracked state for id. Retrying
// after an error (uploading again from 0) is a valid transition. On success
// the underlying record is marked uploaded with 100 percent.
func (t *Tracker) SetProgress(ctx context.Context, id string, state models.UploadState) error {
	t.mu.Lock()
	t.states[id] = state
	t.mu.Unlock()

	if state.Status != models.UploadSuccess {
		return nil
	}

	if err := t.records.MarkUploaded(ctx, id); err != nil {
		return fmt.Errorf("mark uploaded: %w", err)
	}
	t.log.Info(ctx, "upload finished", "id", id)
	return nil
}

// Clear removes the tracked entry entirely. It does not revert the record's
// uploaded flag.
func (t *Tracker) Clear(id string) {
	t.mu.Lock()
	delete(t.states, id)
	t.mu.Unlock()
}

// Get returns the tracked state for id, if any.
func (t *Tracker) Get(id string) (models.UploadState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	state, ok := t.states[id]
	return state, ok
}

// Snapshot returns a copy of all tracked states.
func (t *Tracker) Snapshot() map[string]models.UploadState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]models.UploadState, len(t.states))
	for id, state := range t.states {
		out[id] = state
	}
	return out
}
