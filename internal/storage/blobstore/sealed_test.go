package blobstore

import (
	"context"
	"testing"

	"github.com/avdeevs/mediavault/internal/common"
	"github.com/avdeevs/mediavault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sealedOverLocal(t *testing.T, passphrase string) (*Sealed, *Local) {
	t.Helper()
	inner, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	key := cryptox.DeriveKey([]byte(passphrase), []byte("test-salt"))
	return NewSealed(inner, key), inner
}

func TestSealed_RoundTrip(t *testing.T) {
	s, inner := sealedOverLocal(t, "secret")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "key1", []byte("plaintext payload")))

	got, err := s.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte("plaintext payload"), got)

	// на диске лежит шифротекст
	raw, err := inner.Get(ctx, "key1")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("plaintext payload"), raw)
	assert.NotContains(t, string(raw), "plaintext")
}

func TestSealed_WrongKeyFails(t *testing.T) {
	s, inner := sealedOverLocal(t, "secret")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "key1", []byte("data")))

	other := NewSealed(inner, cryptox.DeriveKey([]byte("wrong"), []byte("test-salt")))
	_, err := other.Get(ctx, "key1")
	require.Error(t, err)
}

func TestSealed_GetPassesThroughNotFound(t *testing.T) {
	s, _ := sealedOverLocal(t, "secret")

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSealed_Delete(t *testing.T) {
	s, inner := sealedOverLocal(t, "secret")
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "key1", []byte("data")))
	require.NoError(t, s.Delete(ctx, "key1"))

	_, err := inner.Get(ctx, "key1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
