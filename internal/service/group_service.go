package service

import (
	"context"
	"errors"

	"github.com/before-thirty/live-chat/internal/audit"
	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/internal/repository"
)

var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrMembersNotFound = errors.New("some members do not exist")
	ErrNameRequired    = errors.New("name and memberIds are required")
	ErrUserIDRequired  = errors.New("user id is required")
)

// groupServiceImpl implements GroupService interface.
type groupServiceImpl struct {
	repo repository.GroupRepository
}

// NewGroupService creates a new group service.
func NewGroupService(repo repository.GroupRepository) GroupService {
	return &groupServiceImpl{repo: repo}
}

func (s *groupServiceImpl) ListGroups(ctx context.Context) ([]domain.Group, error) {
	return s.repo.List(ctx)
}

func (s *groupServiceImpl) GetGroup(ctx context.Context, groupID string) (*domain.Group, error) {
	group, err := s.repo.GetByID(ctx, groupID)
	if err != nil {
		return nil, mapGroupError(err)
	}
	return group, nil
}

// CreateGroup creates a group from existing users. A nil MemberIDs means the
// field was absent from the request.
func (s *groupServiceImpl) CreateGroup(ctx context.Context, req *domain.CreateGroupRequest) (*domain.Group, error) {
	if req.Name == "" || req.MemberIDs == nil {
		return nil, ErrNameRequired
	}

	group, err := s.repo.Create(ctx, req.Name, req.MemberIDs)
	if err != nil {
		return nil, mapGroupError(err)
	}

	audit.LogWithDetail(ctx, audit.ActionCreateGroup, "", group.ID, "group created")
	return group, nil
}

func (s *groupServiceImpl) JoinGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	group, err := s.repo.AddMember(ctx, groupID, userID)
	if err != nil {
		return nil, mapGroupError(err)
	}

	audit.LogWithDetail(ctx, audit.ActionGroupJoin, userID, groupID, "user joined group")
	return group, nil
}

func (s *groupServiceImpl) LeaveGroup(ctx context.Context, groupID, userID string) (*domain.Group, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	group, err := s.repo.RemoveMember(ctx, groupID, userID)
	if err != nil {
		return nil, mapGroupError(err)
	}

	audit.LogWithDetail(ctx, audit.ActionGroupLeave, userID, groupID, "user left group")
	return group, nil
}

func (s *groupServiceImpl) CreateUser(ctx context.Context, req *domain.CreateUserRequest) (*domain.User, error) {
	user := &domain.User{Name: req.Name, Email: req.Email}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	audit.Log(ctx, audit.ActionCreateUser, user.ID, "user created")
	return user, nil
}

func mapGroupError(err error) error {
	switch {
	case errors.Is(err, repository.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrMembersNotFound):
		return ErrMembersNotFound
	default:
		return err
	}
}
