package redis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nelc/HCx-sub001/internal/logger"
)

// TokenCache stores short-lived external-service access tokens with an
// expiry. It is an explicitly scoped collaborator injected into whatever
// component performs external calls; there is no ambient module state.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}

type tokenCache struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewTokenCache(log *logger.Logger) (TokenCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_TOKEN_PREFIX"))
	if prefix == "" {
		prefix = "svc_token"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &tokenCache{
		log:    log.With("client", "RedisTokenCache"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (c *tokenCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.rdb == nil {
		return "", false
	}
	val, err := c.rdb.Get(ctx, c.prefix+":"+key).Result()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("token cache get failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

func (c *tokenCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("token cache not initialized")
	}
	if ttl <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	return c.rdb.Set(ctx, c.prefix+":"+key, value, ttl).Err()
}

func (c *tokenCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// MemoryTokenCache is a process-local TokenCache for tests and for
// deployments without redis.
type MemoryTokenCache struct {
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{entries: make(map[string]memoryEntry)}
}

func (c *MemoryTokenCache) Get(_ context.Context, key string) (string, bool) {
	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

func (c *MemoryTokenCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (c *MemoryTokenCache) Close() error { return nil }
