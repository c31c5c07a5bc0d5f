package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/pkg/log"
)

// GormGroupRepository implements GroupRepository using GORM.
type GormGroupRepository struct {
	db *gorm.DB
}

func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

func preloadMembers(db *gorm.DB) *gorm.DB {
	return db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("users.created_at ASC, users.id ASC")
	})
}

func (r *GormGroupRepository) List(ctx context.Context) ([]domain.Group, error) {
	var models []domain.GroupModel
	if err := preloadMembers(r.db.WithContext(ctx)).Order("created_at ASC").Find(&models).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to list groups from db")
		return nil, err
	}

	groups := make([]domain.Group, len(models))
	for i := range models {
		groups[i] = *models[i].ToDomain()
	}
	return groups, nil
}

func (r *GormGroupRepository) GetByID(ctx context.Context, groupID string) (*domain.Group, error) {
	model, err := r.load(ctx, r.db, groupID)
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a group with the given existing users as members. Unknown
// member ids fail the whole call with ErrMembersNotFound.
func (r *GormGroupRepository) Create(ctx context.Context, name string, memberIDs []string) (*domain.Group, error) {
	l := log.Ctx(ctx)
	ids := unique(memberIDs)

	model := &domain.GroupModel{ID: uuid.New().String(), Name: name}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users []domain.UserModel
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
				return err
			}
		}
		if len(users) != len(ids) {
			return ErrMembersNotFound
		}

		model.Members = users
		return tx.Create(model).Error
	})
	if err != nil {
		if !errors.Is(err, ErrMembersNotFound) {
			l.Error().Err(err).Msg("failed to create group in db")
		}
		return nil, err
	}

	l.Debug().Str(log.FieldGroupID, model.ID).Int("members", len(ids)).Msg("group created in db")
	return r.GetByID(ctx, model.ID)
}

func (r *GormGroupRepository) AddMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.UserModel
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var group domain.GroupModel
		if err := tx.First(&group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}

		return tx.Model(&group).Association("Members").Append(&user)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, groupID)
}

// RemoveMember drops userID from the group; removing a non-member is not an error.
func (r *GormGroupRepository) RemoveMember(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group domain.GroupModel
		if err := tx.First(&group, "id = ?", groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}

		return tx.Model(&group).Association("Members").Delete(&domain.UserModel{ID: userID})
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, groupID)
}

func (r *GormGroupRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	model := &domain.UserModel{ID: user.ID, Name: user.Name, Email: user.Email}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		l := log.Ctx(ctx)
		l.Error().Err(err).Msg("failed to create user in db")
		return err
	}
	user.CreatedAt = model.CreatedAt
	return nil
}

func (r *GormGroupRepository) load(ctx context.Context, db *gorm.DB, groupID string) (*domain.GroupModel, error) {
	var model domain.GroupModel
	if err := preloadMembers(db.WithContext(ctx)).First(&model, "id = ?", groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		l := log.Ctx(ctx)
		l.Error().Err(err).Str(log.FieldGroupID, groupID).Msg("failed to get group by id")
		return nil, err
	}
	return &model, nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
