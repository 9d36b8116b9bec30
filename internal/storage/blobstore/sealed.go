package blobstore

import (
	"context"
	"fmt"

	"github.com/avdeevs/mediavault/internal/cryptox"
)

// Sealed wraps another Store and encrypts every payload at rest with
// AES-GCM. Keys and metadata stay readable; only blob bytes are sealed.
type Sealed struct {
	inner Store
	key   []byte
}

// NewSealed wraps inner with a sealing key derived by cryptox.DeriveKey.
// The caller keeps ownership of key and should wipe it on shutdown.
func NewSealed(inner Store, key []byte) *Sealed {
	return &Sealed{inner: inner, key: key}
}

func (s *Sealed) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := cryptox.Open(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("unseal blob %s: %w", key, err)
	}
	return data, nil
}

func (s *Sealed) Put(ctx context.Context, key string, data []byte) error {
	sealed, err := cryptox.Seal(data, s.key)
	if err != nil {
		return fmt.Errorf("seal blob %s: %w", key, err)
	}
	return s.inner.Put(ctx, key, sealed)
}

func (s *Sealed) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

var _ Store = (*Sealed)(nil)
