package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCodeStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCodeStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(ctx, "password_reset:1", "123456", 15*time.Minute))

	v, err := store.Get(ctx, "password_reset:1")
	require.NoError(t, err)
	assert.Equal(t, "123456", v)

	now = now.Add(15 * time.Minute)
	v, err = store.Get(ctx, "password_reset:1")
	require.NoError(t, err)
	assert.Empty(t, v, "expired codes vanish")

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))
	v, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestMemoryCodeStore_Incr(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCodeStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for want := int64(1); want <= 3; want++ {
		n, err := store.Incr(ctx, "attempts", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	now = now.Add(time.Minute)
	n, err := store.Incr(ctx, "attempts", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "expired counters restart")

	require.NoError(t, store.Set(ctx, "code", "abc", time.Minute))
	_, err = store.Incr(ctx, "code", time.Minute)
	assert.Error(t, err)

	require.NoError(t, store.Delete(ctx, "attempts", "code"))
	v, err := store.Get(ctx, "code")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestNewCodeStore(t *testing.T) {
	store, err := NewCodeStore("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryCodeStore{}, store)

	store, err = NewCodeStore("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.IsType(t, &RedisCodeStore{}, store)

	_, err = NewCodeStore("http://not-redis")
	assert.Error(t, err)
}
