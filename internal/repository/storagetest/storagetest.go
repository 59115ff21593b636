// Package storagetest holds the behaviour every roster.Storage driver shares.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bandly-go/internal/domain/roster"
)

// TestStorage runs the shared contract against a fresh, empty storage.
func TestStorage(t *testing.T, storage roster.Storage) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, found, err := storage.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, "bandly-data", []byte(`{"members":[],"events":[]}`)))

		value, found, err := storage.Get(ctx, "bandly-data")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, `{"members":[],"events":[]}`, string(value))
	})

	t.Run("set replaces", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, "replace", []byte("first")))
		require.NoError(t, storage.Set(ctx, "replace", []byte("second")))

		value, found, err := storage.Get(ctx, "replace")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "second", string(value))
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, "bandly-user", []byte("Leo")))
		require.NoError(t, storage.Set(ctx, "bandly-data.corrupt", []byte("{")))

		value, _, err := storage.Get(ctx, "bandly-user")
		require.NoError(t, err)
		assert.Equal(t, "Leo", string(value))

		value, _, err = storage.Get(ctx, "bandly-data.corrupt")
		require.NoError(t, err)
		assert.Equal(t, "{", string(value))
	})

	t.Run("empty value", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, "empty", []byte{}))

		value, _, err := storage.Get(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		input := []byte("original")
		require.NoError(t, storage.Set(ctx, "copy", input))
		input[0] = 'X'

		value, _, err := storage.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, "original", string(value))

		value[0] = 'Y'
		again, _, err := storage.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, "original", string(again))
	})

	t.Run("concurrent writers", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assert.NoError(t, storage.Set(ctx, "concurrent", []byte(fmt.Sprintf("value-%d", i))))
			}(i)
		}
		wg.Wait()

		value, found, err := storage.Get(ctx, "concurrent")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Regexp(t, `^value-\d$`, string(value))
	})
}

// TestStoreRoundTrip drives a roster.Store on top of storage and reloads it
// through a second store.
func TestStoreRoundTrip(t *testing.T, storage roster.Storage, newStore func(roster.Storage) *roster.Store) {
	ctx := context.Background()

	first := newStore(storage)
	require.NoError(t, first.Load(ctx))
	require.NoError(t, first.AddMember(ctx, roster.Member{
		ID: "m1", Name: "Ana", Type: roster.MemberTypeMusician, Role: roster.MemberRoleVoice, Status: roster.MemberStatusActive,
	}))
	require.NoError(t, first.SaveUserName(ctx, "Leo"))

	second := newStore(storage)
	require.NoError(t, second.Load(ctx))
	assert.Equal(t, first.Snapshot(), second.Snapshot())
	assert.Equal(t, "Leo", second.UserName())
	assert.NoError(t, second.LoadWarning())
}
