package service

import (
	"context"

	"github.com/before-thirty/live-chat/internal/domain"
)

// GroupService defines the interface for group and user business logic.
type GroupService interface {
	ListGroups(ctx context.Context) ([]domain.Group, error)
	GetGroup(ctx context.Context, groupID string) (*domain.Group, error)
	CreateGroup(ctx context.Context, req *domain.CreateGroupRequest) (*domain.Group, error)
	JoinGroup(ctx context.Context, groupID, userID string) (*domain.Group, error)
	LeaveGroup(ctx context.Context, groupID, userID string) (*domain.Group, error)
	CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error)
}

// TripService defines the interface for provisioning trips.
type TripService interface {
	CreateTrip(ctx context.Context, req *domain.CreateTripRequest) (*domain.Trip, error)
	GetTrip(ctx context.Context, tripID string) (*domain.TripSnapshot, error)
}
