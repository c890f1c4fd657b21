//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: go test -v -tags=integration ./internal/cache/...

func setupTestCache(t *testing.T) *RedisCache {
	c, err := NewRedisCache(Config{Host: "localhost", Port: "6379", DB: 15, TTL: time.Minute})
	require.NoError(t, err, "Failed to connect to test redis")
	require.NoError(t, c.client.Del(context.Background(), lastRunKey).Err())
	return c
}

func TestRedisCache_LastRunRoundTrip(t *testing.T) {
	c := setupTestCache(t)
	defer c.Close()
	ctx := context.Background()

	_, ok, err := c.LastRun(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "Empty cache should miss")

	completed := time.Date(2025, 8, 1, 2, 0, 3, 123456000, time.UTC)
	require.NoError(t, c.SetLastRun(ctx, completed))

	got, ok, err := c.LastRun(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, completed.Equal(got))

	ttl, err := c.client.TTL(ctx, lastRunKey).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisCache_GarbageIsMiss(t *testing.T) {
	c := setupTestCache(t)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.client.Set(ctx, lastRunKey, "yesterday", time.Minute).Err())

	_, ok, err := c.LastRun(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
