package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/shelfmind-backend/internal/platform/logger"
)

// JSONCache stores JSON-encoded values under a key prefix.
type JSONCache interface {
	// Get decodes the cached value into out and reports whether the key was present.
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Close() error
}

type jsonCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewJSONCache(log *logger.Logger, addr, prefix string) (JSONCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "shelfmind"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &jsonCache{
		log:    log.With("service", "RedisJSONCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (c *jsonCache) key(k string) string {
	return c.prefix + ":" + k
}

func (c *jsonCache) Get(ctx context.Context, key string, out any) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, fmt.Errorf("redis cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A corrupt entry behaves like a miss and is overwritten on the next Set.
		c.log.Warn("redis cache entry undecodable", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis cache not initialized")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), raw, ttl).Err()
}

func (c *jsonCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
