package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/photogram/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const versionKey = "photoblog:tags:version"

// RedisTagCache stores search results as JSON. Keys embed a version
// counter so Invalidate drops every cached search with a single INCR.
type RedisTagCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisTagCache wraps an existing client
func NewRedisTagCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisTagCache {
	return &RedisTagCache{client: client, ttl: ttl, log: log}
}

// Connect parses a redis URL (or a bare host:port) and pings the server
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *RedisTagCache) key(ctx context.Context, keyword string) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("photoblog:tags:v%d:search:%s", version, strings.ToLower(keyword)), nil
}

// Get returns the cached result for keyword and the key it was looked up
// under. Redis failures count as a miss; a failed version lookup also
// returns an empty key.
func (c *RedisTagCache) Get(ctx context.Context, keyword string) ([]models.HashTag, string, bool) {
	key, err := c.key(ctx, keyword)
	if err != nil {
		c.log.Warn("tag cache version lookup failed", zap.Error(err))
		return nil, "", false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("tag cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, key, false
	}
	var tags []models.HashTag
	if err := json.Unmarshal(raw, &tags); err != nil {
		c.log.Warn("tag cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return nil, key, false
	}
	return tags, key, true
}

// Set stores tags under a key returned by Get for the configured TTL
func (c *RedisTagCache) Set(ctx context.Context, key string, tags []models.HashTag) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("tag cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate moves every reader to a fresh key namespace
func (c *RedisTagCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.log.Warn("tag cache invalidation failed", zap.Error(err))
	}
}
