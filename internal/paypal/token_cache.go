package paypal

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenCache stores PayPal bearer tokens between requests.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, token string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type noopTokenCache struct{}

func (noopTokenCache) Get(context.Context, string) (string, bool) { return "", false }

func (noopTokenCache) Set(context.Context, string, string, time.Duration) {}

func (noopTokenCache) Delete(context.Context, string) {}

// RedisTokenCache keeps tokens in Redis so every instance reuses one token.
type RedisTokenCache struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenCache wraps a go-redis client.
func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{client: client, prefix: "paypal:access_token:"}
}

// Get returns a cached token. Redis errors, including redis.Nil, count as misses.
func (c *RedisTokenCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		return "", false
	}
	return val, val != ""
}

// Set stores a token until shortly before PayPal expires it.
func (c *RedisTokenCache) Set(ctx context.Context, key, token string, ttl time.Duration) {
	if c == nil || c.client == nil || ttl <= 0 {
		return
	}
	_ = c.client.Set(ctx, c.prefix+key, token, ttl).Err()
}

// Delete evicts a token PayPal no longer accepts.
func (c *RedisTokenCache) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, c.prefix+key).Err()
}
