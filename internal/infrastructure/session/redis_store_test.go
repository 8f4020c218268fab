package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_SaveLookupRevoke(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", "u1", "t1", time.Now().Add(time.Hour)))

	ok, err := store.Exists(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	data, ok, err := store.Lookup(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "u1", data.UserID)
	assert.Equal(t, "t1", data.TenantID)

	require.NoError(t, store.Revoke(ctx, "s1"))
	ok, err = store.Exists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Revoke(ctx, "s1"), "revocar dos veces no es error")
}

func TestRedisStore_ExpiraConElTTL(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", "u1", "t1", time.Now().Add(time.Minute)))
	assert.Greater(t, mr.TTL("session:s1"), time.Duration(0))

	mr.FastForward(2 * time.Minute)
	ok, err := store.Exists(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ExpiracionPasada(t *testing.T) {
	store, _ := setupTestRedis(t)
	assert.Error(t, store.Save(context.Background(), "s1", "u1", "t1", time.Now().Add(-time.Second)))
}

func TestRedisStore_ErrorDeConexion(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()
	_, err := store.Exists(context.Background(), "s1")
	assert.Error(t, err)
	assert.Error(t, store.Ping(context.Background()))
}

func TestNewRedisStore_URLInvalida(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "not-a-url://")
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "s1", "u1", "t1", now.Add(time.Minute)))
	ok, _ := store.Exists(ctx, "s1")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = store.Exists(ctx, "s1")
	assert.False(t, ok, "expirada")

	require.NoError(t, store.Save(ctx, "s2", "u1", "t1", now.Add(time.Minute)))
	assert.NotContains(t, store.sessions, "s1", "las expiradas se purgan")
	require.NoError(t, store.Revoke(ctx, "s2"))
	ok, _ = store.Exists(ctx, "s2")
	assert.False(t, ok)
}
