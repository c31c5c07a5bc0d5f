package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/pkg/log"
)

// GormTripRepository implements TripRepository using GORM.
type GormTripRepository struct {
	db *gorm.DB
}

func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// Create inserts a trip, generating its id when empty.
func (r *GormTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	l := log.Ctx(ctx)

	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	model := &domain.TripModel{ID: trip.ID, Name: trip.Name}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l.Error().Err(err).Msg("failed to create trip in db")
		return err
	}

	trip.CreatedAt = model.CreatedAt
	l.Debug().Str(log.FieldTripID, trip.ID).Msg("trip created in db")
	return nil
}

func (r *GormTripRepository) FindTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	var model domain.TripModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", tripID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldTripID, tripID).Msg("failed to find trip")
		return nil, err
	}
	return model.ToDomain(), nil
}

// CreateMembership checks the trip and writes the membership in one
// transaction, so a missing trip never gets a dangling trip_users row.
func (r *GormTripRepository) CreateMembership(ctx context.Context, tripID, userID string) error {
	l := log.Ctx(ctx)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.TripModel{}).Where("id = ?", tripID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTripNotFound
		}

		membership := domain.TripUserModel{TripID: tripID, UserID: userID}
		return tx.Where(&domain.TripUserModel{TripID: tripID, UserID: userID}).
			FirstOrCreate(&membership).Error
	})
	if err != nil {
		if !errors.Is(err, ErrTripNotFound) {
			l.Error().Err(err).Str(log.FieldTripID, tripID).Str(log.FieldUserID, userID).Msg("failed to create trip membership")
		}
		return err
	}

	l.Debug().Str(log.FieldTripID, tripID).Str(log.FieldUserID, userID).Msg("trip membership recorded")
	return nil
}

// GetTripWithMembers loads the trip with its members in join order.
func (r *GormTripRepository) GetTripWithMembers(ctx context.Context, tripID string) (*domain.TripSnapshot, error) {
	var model domain.TripModel
	err := r.db.WithContext(ctx).
		Preload("TripUsers", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&model, "id = ?", tripID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTripNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldTripID, tripID).Msg("failed to load trip members")
		return nil, err
	}
	return model.ToSnapshot(), nil
}
