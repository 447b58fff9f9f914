package chat

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/thaoanhhaa1/kltn-backend/pkg/clients/redis"
)

// HistoryCache 聊天历史读穿缓存契约，miss 返回 ok=false
type HistoryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// RedisHistoryCache 基于 redis 的实现
type RedisHistoryCache struct {
	client *redis.RedisClient
}

func NewRedisHistoryCache(client *redis.RedisClient) *RedisHistoryCache {
	return &RedisHistoryCache{client: client}
}

func (c *RedisHistoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *RedisHistoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisHistoryCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
