package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunFingerprintStoreContract runs a suite of tests to verify that a FingerprintStore
// implementation adheres to the defined interface contract.
func RunFingerprintStoreContract(t *testing.T, store FingerprintStore) {
	ctx := context.Background()
	key := "contract-part-" + time.Now().Format("20060102150405")

	t.Run("Store and Lookup", func(t *testing.T) {
		err := store.Store(ctx, key, "digest-1")
		require.NoError(t, err, "Store should not return error")

		got, err := store.Lookup(ctx, key)
		require.NoError(t, err, "Lookup should not return error")
		assert.Equal(t, "digest-1", got)
	})

	t.Run("Store Overwrites", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, key, "digest-2"))

		got, err := store.Lookup(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "digest-2", got)
	})

	t.Run("Lookup Non-Existent", func(t *testing.T) {
		_, err := store.Lookup(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrFingerprintNotFound)
	})

	t.Run("Forget", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, key+"-a", "a"))
		require.NoError(t, store.Store(ctx, key+"-b", "b"))

		require.NoError(t, store.Forget(ctx), "Forget should not return error")

		_, err := store.Lookup(ctx, key+"-a")
		assert.ErrorIs(t, err, domain.ErrFingerprintNotFound, "Lookup after Forget should return ErrFingerprintNotFound")
		_, err = store.Lookup(ctx, key+"-b")
		assert.ErrorIs(t, err, domain.ErrFingerprintNotFound)
	})
}
