package contentcache

import (
	"context"
	"fmt"
	"log/slog"

	"sopforge/config"
)

// New builds the cache backend selected by the configuration.
func New(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory(cfg.TTL), nil
	case "disk", "":
		return NewDisk(cfg.Dir, cfg.TTL, logger)
	case "redis":
		return NewRedis(ctx, cfg.RedisURL, cfg.TTL, logger)
	default:
		return nil, fmt.Errorf("contentcache: unknown backend %q", cfg.Backend)
	}
}
