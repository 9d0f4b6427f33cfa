package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cart not in cache")

// Cache is the read cache in front of GetCart. Implementations may fail;
// the service logs and falls through to the repository.
type Cache interface {
	Get(ctx context.Context, userID string) (Cart, error)
	Set(ctx context.Context, userID string, crt Cart) error
	Delete(ctx context.Context, userID string) error
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

func (c *RedisCache) Get(ctx context.Context, userID string) (Cart, error) {
	data, err := c.client.Get(ctx, cacheKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Cart{}, ErrCacheMiss
	}
	if err != nil {
		return Cart{}, fmt.Errorf("redis get failed: %w", err)
	}

	var crt Cart
	if err := json.Unmarshal(data, &crt); err != nil {
		return Cart{}, fmt.Errorf("unmarshal cached cart failed: %w", err)
	}
	return crt, nil
}

func (c *RedisCache) Set(ctx context.Context, userID string, crt Cart) error {
	data, err := json.Marshal(crt)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// Jitter spreads expirations so a burst of writes does not expire at once.
	ttl := c.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	if err := c.client.Set(ctx, cacheKey(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, cacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func cacheKey(userID string) string {
	return "cart:" + userID
}

// NopCache serves deployments without Redis: every read is a miss.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (Cart, error) { return Cart{}, ErrCacheMiss }

func (NopCache) Set(context.Context, string, Cart) error { return nil }

func (NopCache) Delete(context.Context, string) error { return nil }
