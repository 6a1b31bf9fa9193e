package core

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

// redisCache backs the analysis response cache. A miss is ("", nil), not
// an error.
type redisCache struct {
	client *redis.Client
}

func newRedisCache(cfg RedisConfig) types.Cache {
	return &redisCache{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *redisCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return c.client.SetEx(ctx, key, value, expiresAt).Err()
}

func (c *redisCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.client.Expire(ctx, key, expiration).Err()
}

// emptyCache is used when redis is not configured. Every read misses.
type emptyCache struct{}

func (emptyCache) Get(ctx context.Context, key string) (string, error) {
	return "", nil
}

func (emptyCache) SetEx(ctx context.Context, key, value string, expiresAt time.Duration) error {
	return nil
}

func (emptyCache) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
