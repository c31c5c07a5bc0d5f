package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/before-thirty/live-chat/internal/cache"
	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/pkg/log"
)

// CachedTripRepository serves FindTrip from a TripCache and falls through to
// the wrapped repository on a miss. Cache failures are logged and otherwise
// ignored. Memberships and snapshots are always read from the database.
type CachedTripRepository struct {
	TripRepository
	cache cache.TripCache
	ttl   time.Duration
	sf    singleflight.Group
}

func NewCachedTripRepository(repo TripRepository, c cache.TripCache, ttl time.Duration) *CachedTripRepository {
	return &CachedTripRepository{
		TripRepository: repo,
		cache:          c,
		ttl:            ttl,
	}
}

func (r *CachedTripRepository) FindTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	l := log.Ctx(ctx)
	key := r.cache.BuildKeyByID(tripID)

	trip, err := r.cache.Get(ctx, key)
	if err == nil {
		return trip, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		l.Warn().Err(err).Str(log.FieldTripID, tripID).Msg("trip cache get failed")
	}

	// concurrent misses for one trip share a single database read
	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		trip, err := r.TripRepository.FindTrip(ctx, tripID)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(ctx, key, trip, r.ttl); err != nil {
			l.Warn().Err(err).Str(log.FieldTripID, tripID).Msg("trip cache set failed")
		}
		return trip, nil
	})
	if err != nil {
		return nil, err
	}

	trip, ok := result.(*domain.Trip)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from singleflight")
	}
	return trip, nil
}
