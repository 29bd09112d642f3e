package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/anonto42/property-listing/backend/pkg/retry"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore_SetGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "properties:")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "properties:", []byte(`[{"title":"a"}]`), time.Hour, nil))

	val, ok, err := store.Get(ctx, "properties:")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"title":"a"}]`, string(val))
}

func TestRedisStore_Expires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour, nil, "properties"))
	assert.Equal(t, time.Hour, mr.TTL("k"))

	mr.FastForward(time.Hour + time.Second)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_InvalidateTags(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "search:1", []byte("a"), time.Hour, nil, "properties", "property:1"))
	require.NoError(t, store.Set(ctx, "search:2", []byte("b"), time.Hour, nil, "properties", "property:2"))
	require.NoError(t, store.Set(ctx, "one:2", []byte("c"), time.Hour, nil, "property:2"))

	require.NoError(t, store.InvalidateTags(ctx, "property:2"))

	assert.True(t, mr.Exists("search:1"))
	assert.False(t, mr.Exists("search:2"))
	assert.False(t, mr.Exists("one:2"))
	assert.False(t, mr.Exists(tagKey("property:2")))

	require.NoError(t, store.InvalidateTags(ctx, "properties", "never-used"))
	assert.False(t, mr.Exists("search:1"))
}

func TestRedisStore_SetRefusedAfterInvalidation(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	gens, err := store.Generations(ctx, "properties", "property:1")
	require.NoError(t, err)
	assert.Equal(t, Generations{"properties": 0, "property:1": 0}, gens)

	require.NoError(t, store.InvalidateTags(ctx, "property:1"))

	err = store.Set(ctx, "one:1", []byte("old"), time.Hour, gens, "property:1")
	assert.ErrorIs(t, err, ErrStale)
	assert.False(t, mr.Exists("one:1"))
	assert.False(t, mr.Exists(tagKey("property:1")))

	fresh, err := store.Generations(ctx, "property:1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh["property:1"])
	require.NoError(t, store.Set(ctx, "one:1", []byte("new"), time.Hour, fresh, "property:1"))

	val, ok, err := store.Get(ctx, "one:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", string(val))
}

func TestRedisStore_UnrelatedInvalidationKeepsSet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	gens, err := store.Generations(ctx, "property:1")
	require.NoError(t, err)
	require.NoError(t, store.InvalidateTags(ctx, "property:2"))

	assert.NoError(t, store.Set(ctx, "one:1", []byte("v"), time.Hour, gens, "property:1"))
}

func TestRedisStore_BackendDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, _, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, store.Set(context.Background(), "k", []byte("v"), time.Minute, nil))
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	mr.RequireAuth("s3cret")

	client, err := NewRedisClient(context.Background(), Options{URL: mr.Addr(), Password: "s3cret"}, retry.Config{MaxAttempts: 1})
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, BackoffFactor: 1}
	client, err := NewRedisClient(context.Background(), Options{URL: "redis://" + addr}, cfg)
	assert.Error(t, err)
	require.NotNil(t, client)
	_ = client.Close()
}
