package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campus-hub/backend/internal/models"
)

// Cache persists the resolved user for fast rehydration on the next load.
// It is advisory only: the directory store stays authoritative, and readers
// must tolerate the cached copy being stale.
type Cache interface {
	Put(ctx context.Context, key string, user *models.User) error
	Get(ctx context.Context, key string) (*models.User, error) // (nil, nil) on miss
	Clear(ctx context.Context, key string) error
}

// RedisCache stores one JSON-serialized user per session key.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed session cache. Entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: "session:", ttl: ttl}
}

func (c *RedisCache) key(sessionKey string) string {
	return c.prefix + sessionKey
}

// Put implements Cache.
func (c *RedisCache) Put(ctx context.Context, key string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session cache: marshal user: %w", err)
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.User, error) {
	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal([]byte(val), &u); err != nil {
		return nil, fmt.Errorf("session cache: unmarshal user: %w", err)
	}
	return &u, nil
}

// Clear implements Cache.
func (c *RedisCache) Clear(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.key(key)).Err()
}
