package repository

import (
	"context"
	"errors"

	"github.com/before-thirty/live-chat/internal/domain"
)

var (
	ErrTripNotFound    = errors.New("trip not found")
	ErrGroupNotFound   = errors.New("group not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrMembersNotFound = errors.New("some members do not exist")
)

// TripRepository persists trips and their durable memberships.
type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) error
	FindTrip(ctx context.Context, tripID string) (*domain.Trip, error)
	// CreateMembership records userID in tripID. It fails with ErrTripNotFound
	// without writing anything when the trip does not exist, and is a no-op
	// when the membership is already recorded.
	CreateMembership(ctx context.Context, tripID, userID string) error
	GetTripWithMembers(ctx context.Context, tripID string) (*domain.TripSnapshot, error)
}

// GroupRepository persists groups, their members and users.
type GroupRepository interface {
	List(ctx context.Context) ([]domain.Group, error)
	GetByID(ctx context.Context, groupID string) (*domain.Group, error)
	Create(ctx context.Context, name string, memberIDs []string) (*domain.Group, error)
	AddMember(ctx context.Context, groupID, userID string) (*domain.Group, error)
	RemoveMember(ctx context.Context, groupID, userID string) (*domain.Group, error)
	CreateUser(ctx context.Context, user *domain.User) error
}
