package service

import (
	"context"
	"errors"

	"github.com/before-thirty/live-chat/internal/audit"
	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/internal/repository"
)

var ErrTripNotFound = errors.New("trip not found")

// tripServiceImpl implements TripService interface.
type tripServiceImpl struct {
	repo repository.TripRepository
}

// NewTripService creates a new trip service.
func NewTripService(repo repository.TripRepository) TripService {
	return &tripServiceImpl{repo: repo}
}

func (s *tripServiceImpl) CreateTrip(ctx context.Context, req *domain.CreateTripRequest) (*domain.Trip, error) {
	trip := &domain.Trip{Name: req.Name}
	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	audit.LogTrip(ctx, audit.ActionCreateTrip, "", trip.ID, "trip created")
	return trip, nil
}

// GetTrip returns the trip with its durable members.
func (s *tripServiceImpl) GetTrip(ctx context.Context, tripID string) (*domain.TripSnapshot, error) {
	snapshot, err := s.repo.GetTripWithMembers(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrTripNotFound) {
			return nil, ErrTripNotFound
		}
		return nil, err
	}
	return snapshot, nil
}
