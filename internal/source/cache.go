package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// RedisClient is the subset of *redis.Client the cache needs.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Refresher is implemented by sources that can bypass a cache.
type Refresher interface {
	Refresh(ctx context.Context) ([]grid.Record, error)
}

// Fresh fetches from src, skipping any cached snapshot.
func Fresh(ctx context.Context, src Source) ([]grid.Record, error) {
	if r, ok := src.(Refresher); ok {
		return r.Refresh(ctx)
	}
	return src.Records(ctx)
}

// Cache serves a JSON snapshot of Next's records from redis so dashboard
// instances behind one load balancer share a fetch per TTL. Redis failures
// are logged and fall through to Next.
type Cache struct {
	Client RedisClient
	Key    string
	TTL    time.Duration
	Next   Source
}

// Records returns the cached snapshot, fetching and storing it on a miss.
func (c *Cache) Records(ctx context.Context) ([]grid.Record, error) {
	data, err := c.Client.Get(ctx, c.Key).Bytes()
	switch {
	case err == nil:
		var records []grid.Record
		if err := json.Unmarshal(data, &records); err == nil {
			slog.Debug("record cache hit", "key", c.Key, "records", len(records))
			return records, nil
		}
		slog.Warn("discarding corrupt record cache", "key", c.Key, "error", err)
	case errors.Is(err, redis.Nil):
		slog.Debug("record cache miss", "key", c.Key)
	default:
		slog.Warn("record cache read failed", "key", c.Key, "error", err)
	}
	return c.Refresh(ctx)
}

// Refresh fetches from Next and overwrites the snapshot.
func (c *Cache) Refresh(ctx context.Context) ([]grid.Record, error) {
	records, err := c.Next.Records(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode record snapshot: %w", err)
	}
	if err := c.Client.Set(ctx, c.Key, data, c.TTL).Err(); err != nil {
		slog.Warn("record cache write failed", "key", c.Key, "error", err)
	}
	return records, nil
}
