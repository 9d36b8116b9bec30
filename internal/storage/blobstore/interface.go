// Package blobstore implements the blob tier: key/value byte storage for
// payloads too large to inline into the record store.
package blobstore

import "context"

// Store is the byte-storage contract used by the storage tier manager.
//
// Implementations must distinguish a missing key (common.ErrNotFound) from
// the backend being unreachable (common.ErrStorageUnavailable): the first is
// a recoverable "payload gone" condition, the second fails the operation.
type Store interface {
	// Get returns the payload stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores the payload under key, overwriting any previous value.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes the payload under key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error
}
