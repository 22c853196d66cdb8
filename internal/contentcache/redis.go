package contentcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sopforge/internal/observability"
)

// keyPrefix namespaces cache entries in a shared Redis instance.
const keyPrefix = "sopforge:content:"

// Redis is a Redis-backed cache for multi-instance deployments. Expiry uses
// Redis native TTLs. Connection errors degrade to a miss or a no-op.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis creates a Redis cache from a redis:// URL and pings it so a bad
// address fails at startup.
func NewRedis(ctx context.Context, url string, ttl time.Duration, logger *slog.Logger) (*Redis, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Redis{client: client, ttl: ttl, logger: logger}, nil
}

// NewRedisWithClient wraps an existing client. Used by tests with miniredis.
func NewRedisWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

func (r *Redis) Backend() string { return "redis" }

func (r *Redis) Get(ctx context.Context, key string) (string, bool) {
	content, err := r.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("cache read failed", "key", key, "error", err)
		}
		observability.RecordCacheMiss(r.Backend())
		return "", false
	}
	observability.RecordCacheHit(r.Backend())
	return content, true
}

func (r *Redis) Set(ctx context.Context, key, content string) {
	// A zero expiration would persist forever in Redis; a non-positive ttl
	// disables caching instead.
	if r.ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, keyPrefix+key, content, r.ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (r *Redis) Clear(ctx context.Context, templateType string) int {
	pattern := keyPrefix + "*"
	if templateType != "" {
		pattern = keyPrefix + templateType + ":*"
	}

	removed := 0
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if r.client.Del(ctx, iter.Val()).Err() == nil {
			removed++
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cache clear incomplete", "error", err)
	}
	return removed
}

// Close releases the Redis connection.
func (r *Redis) Close() error {
	return r.client.Close()
}
