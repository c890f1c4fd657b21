package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const lastRunKey = "fantasy:last_successful_run"

// Config holds Redis connection settings
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisCache caches the newest run marker timestamp so the admin API does not hit
// Postgres on every poll.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &RedisCache{client: client, ttl: ttl}, nil
}

// LastRun returns the cached completion time of the newest run.
// ok is false on a miss.
func (c *RedisCache) LastRun(ctx context.Context) (t time.Time, ok bool, err error) {
	val, err := c.client.Get(ctx, lastRunKey).Result()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss()
		return time.Time{}, false, nil
	}
	if err != nil {
		metrics.RecordError("cache", "get")
		return time.Time{}, false, fmt.Errorf("failed to read last run: %w", err)
	}

	t, err = time.Parse(time.RFC3339Nano, val)
	if err != nil {
		// A garbage value is treated as a miss and overwritten on the next run.
		log.Warn().Str("value", val).Msg("Ignoring unparseable cached run time")
		metrics.RecordCacheMiss()
		return time.Time{}, false, nil
	}

	metrics.RecordCacheHit()
	return t, true, nil
}

// SetLastRun stores the completion time of a run
func (c *RedisCache) SetLastRun(ctx context.Context, t time.Time) error {
	if err := c.client.Set(ctx, lastRunKey, t.UTC().Format(time.RFC3339Nano), c.ttl).Err(); err != nil {
		metrics.RecordError("cache", "set")
		return fmt.Errorf("failed to cache last run: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
