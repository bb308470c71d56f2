package cache

import (
	"ambulance-route-service/internal/adapters/repositories"
	"ambulance-route-service/internal/platform/db"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNetworkCacheRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	rdb, err := NewRedisClient(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer rdb.Close()

	c := NewRedisNetworkCache(rdb, time.Hour)

	_, ok, err := c.Get(ctx, "overpass:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "overpass:abc", []byte(`{"elements":[]}`)))

	data, ok, err := c.Get(ctx, "overpass:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"elements":[]}`, string(data))

	mr.FastForward(2 * time.Hour)
	_, ok, err = c.Get(ctx, "overpass:abc")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire after ttl")
}

func TestRedisNetworkCacheReportsServerErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	c := NewRedisNetworkCache(rdb, 0)
	mr.SetError("boom")

	_, _, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
}

func TestNewRedisClientBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestSQLNetworkCache(t *testing.T) {
	conn, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, repositories.InitSchema(conn))

	ctx := context.Background()
	clock := time.Unix(1_700_000_000, 0)
	c := NewSQLNetworkCache(conn, db.DriverSQLite, time.Hour)
	c.now = func() time.Time { return clock }

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "k", []byte("v1")))
	require.NoError(t, c.Put(ctx, "k", []byte("v2")))

	data, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v2", string(data))

	clock = clock.Add(61 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "stale entry is a miss")

	assert.Error(t, c.Put(ctx, " ", nil))
}
