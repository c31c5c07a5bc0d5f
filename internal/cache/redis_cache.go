package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/before-thirty/live-chat/internal/config"
	"github.com/before-thirty/live-chat/internal/domain"
)

type RedisTripCache struct {
	client *redis.Client
	prefix string
}

func NewRedisTripCache(cfg config.RedisConfig, prefix string) (*RedisTripCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisTripCacheWithClient(client, prefix), nil
}

// NewRedisTripCacheWithClient wraps an existing client; the cache owns it
// from then on and closes it in Close.
func NewRedisTripCacheWithClient(client *redis.Client, prefix string) *RedisTripCache {
	return &RedisTripCache{
		client: client,
		prefix: prefix,
	}
}

func (c *RedisTripCache) BuildKeyByID(tripID string) string {
	return fmt.Sprintf("%s:id:%s", c.prefix, tripID)
}

func (c *RedisTripCache) Get(ctx context.Context, key string) (*domain.Trip, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var trip domain.Trip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return &trip, nil
}

func (c *RedisTripCache) Set(ctx context.Context, key string, trip *domain.Trip, ttl time.Duration) error {
	data, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (c *RedisTripCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

func (c *RedisTripCache) Close() error {
	return c.client.Close()
}
