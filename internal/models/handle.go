package models

import (
	"errors"
	"os"
	"sync"
)

// Handle is a transient, process-local reference to a record's payload,
// materialized as a file under the scratch directory. It plays the role a
// browser object URL plays for a blob: cheap to hand to callers, owned by
// the storage layer, and explicitly revoked rather than garbage collected.
type Handle struct {
	Path string

	mu       sync.Mutex
	released bool
}

// NewHandle wraps an already-materialized scratch file.
func NewHandle(path string) *Handle {
	return &Handle{Path: path}
}

// Valid reports whether the handle still points at an accessible payload.
func (h *Handle) Valid() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return false
	}
	_, err := os.Stat(h.Path)
	return err == nil
}

// Release revokes the handle and removes the materialized file.
// Releasing twice, or releasing a handle whose file is already gone, is a
// no-op.
func (h *Handle) Release() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	h.released = true
	err := os.Remove(h.Path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
