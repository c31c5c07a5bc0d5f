package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/before-thirty/live-chat/internal/config"
)

func TestBuildKeyByID(t *testing.T) {
	c := NewRedisTripCacheWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "live-chat:trip")
	defer c.Close()

	if got, want := c.BuildKeyByID("trip-42"), "live-chat:trip:id:trip-42"; got != want {
		t.Fatalf("BuildKeyByID = %q, want %q", got, want)
	}
}

func TestDeleteWithoutKeysSkipsRedis(t *testing.T) {
	c := NewRedisTripCacheWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "p")
	defer c.Close()

	if err := c.Delete(context.Background()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

func TestGetUnreachableRedisIsNotAMiss(t *testing.T) {
	c := NewRedisTripCacheWithClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}), "p")
	defer c.Close()

	_, err := c.Get(context.Background(), c.BuildKeyByID("t"))
	if err == nil {
		t.Fatal("Get() error = nil, want connection error")
	}
	if errors.Is(err, ErrCacheMiss) {
		t.Fatal("connection failure reported as cache miss")
	}
}

func TestNewRedisTripCacheFailsWithoutServer(t *testing.T) {
	_, err := NewRedisTripCache(config.RedisConfig{Address: "127.0.0.1:1"}, "p")
	if err == nil {
		t.Fatal("NewRedisTripCache() error = nil, want ping failure")
	}
}
