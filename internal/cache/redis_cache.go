package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Vanityerp/Vanity-hub-sub002/internal/domain"
)

type RedisSettingsCache struct {
	client *redis.Client
}

func NewRedisSettingsCache(addr string, password string, db int) *RedisSettingsCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSettingsCache{client: client}
}

func (c *RedisSettingsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisSettingsCache) Close() error {
	return c.client.Close()
}

func (c *RedisSettingsCache) Get(ctx context.Context, key string) (*domain.LocationSettings, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var settings domain.LocationSettings
	if err := json.Unmarshal([]byte(val), &settings); err != nil {
		return nil, false, err
	}
	return &settings, true, nil
}

func (c *RedisSettingsCache) Set(ctx context.Context, key string, value *domain.LocationSettings, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisSettingsCache) Invalidate(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
