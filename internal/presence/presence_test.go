package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	ts, err := store.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, ts, "unknown user should be offline")

	require.NoError(t, store.Set(ctx, 1, 2))

	ts, err = store.Get(ctx, 1, 2)
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.WithinDuration(t, time.Now(), *ts, time.Second)

	// Different chat is a different key
	ts, err = store.Get(ctx, 3, 2)
	require.NoError(t, err)
	assert.Nil(t, ts)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	require.NoError(t, store.Set(ctx, 1, 2))

	current = current.Add(TTL - time.Second)
	ts, err := store.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.NotNil(t, ts, "still inside the TTL")

	current = current.Add(2 * time.Second)
	ts, err = store.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, ts, "expired entries read as offline")
}

func TestMemoryStoreRefreshExtendsTTL(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	require.NoError(t, store.Set(ctx, 1, 2))

	current = current.Add(TTL - time.Second)
	require.NoError(t, store.Set(ctx, 1, 2))

	current = current.Add(TTL - time.Second)
	ts, err := store.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.NotNil(t, ts, "refresh restarts the TTL")
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, 1, 2))
	require.NoError(t, store.Clear(ctx, 1, 2))

	ts, err := store.Get(ctx, 1, 2)
	require.NoError(t, err)
	assert.Nil(t, ts)

	// Clearing an absent key is a no-op
	require.NoError(t, store.Clear(ctx, 1, 2))
}

func TestKeyFormat(t *testing.T) {
	assert.Equal(t, "chat_online_42_7", key(42, 7))
}
