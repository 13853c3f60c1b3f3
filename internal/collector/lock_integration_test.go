//go:build integration

package collector

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := redismodule.Run(ctx, "redis:8.4.0-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	opt, err := redis.ParseURL(uri)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	t.Cleanup(func() { client.Close() })

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(pingCtx).Err())

	return client
}

func TestRedisLocker(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	a := NewRedisLocker(client, "test:cycle-lock", time.Minute)
	b := NewRedisLocker(client, "test:cycle-lock", time.Minute)

	release, ok, err := a.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second replica must not acquire a held lock")

	ttl, err := client.TTL(ctx, "test:cycle-lock").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, release(ctx))

	releaseB, ok, err := b.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// A stale release from the first holder leaves the new holder's lock alone.
	require.NoError(t, release(ctx))
	exists, err := client.Exists(ctx, "test:cycle-lock").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	require.NoError(t, releaseB(ctx))
}

func TestRedisLockerExpires(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	l := NewRedisLocker(client, "test:expiring-lock", 200*time.Millisecond)

	_, ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		_, ok, err := l.TryLock(ctx)
		return err == nil && ok
	}, 3*time.Second, 50*time.Millisecond)
}
