package cache

import (
	"context"
	"errors"
	"time"

	"github.com/before-thirty/live-chat/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// TripCache caches trip lookups used to resolve room ids.
type TripCache interface {
	Get(ctx context.Context, key string) (*domain.Trip, error)
	Set(ctx context.Context, key string, trip *domain.Trip, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKeyByID(tripID string) string
	Close() error
}
