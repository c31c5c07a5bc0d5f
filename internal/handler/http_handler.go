package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/internal/service"
	"github.com/before-thirty/live-chat/pkg/log"
	"github.com/before-thirty/live-chat/pkg/response"
)

// Handler handles the REST requests used to provision groups, users and trips.
type Handler struct {
	groupService service.GroupService
	tripService  service.TripService
}

// NewHandler creates a new HTTP handler.
func NewHandler(groupService service.GroupService, tripService service.TripService) *Handler {
	return &Handler{
		groupService: groupService,
		tripService:  tripService,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	groups := r.Group("/groups")
	{
		groups.GET("", h.ListGroups)
		groups.POST("", h.CreateGroup)
		groups.GET("/:groupId", h.GetGroup)
		groups.POST("/:groupId/join", h.JoinGroup)
		groups.POST("/:groupId/leave", h.LeaveGroup)
	}

	r.POST("/users", h.CreateUser)

	trips := r.Group("/trips")
	{
		trips.POST("", h.CreateTrip)
		trips.GET("/:tripId", h.GetTrip)
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) ListGroups(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	groups, err := h.groupService.ListGroups(ctx)
	if err != nil {
		l.Error().Err(err).Msg("failed to list groups")
		response.InternalError(c, "Failed to get groups")
		return
	}

	response.Success(c, groups)
}

func (h *Handler) GetGroup(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	groupID := c.Param("groupId")

	group, err := h.groupService.GetGroup(ctx, groupID)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, "Group not found")
			return
		}
		l.Error().Err(err).Str(log.FieldGroupID, groupID).Msg("failed to get group")
		response.InternalError(c, "Failed to get group")
		return
	}

	response.Success(c, group)
}

func (h *Handler) CreateGroup(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create group request")
		response.BadRequest(c, "Name and memberIds are required")
		return
	}

	group, err := h.groupService.CreateGroup(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNameRequired):
			response.BadRequest(c, "Name and memberIds are required")
		case errors.Is(err, service.ErrMembersNotFound):
			response.BadRequest(c, "Some members does not exist")
		default:
			l.Error().Err(err).Msg("failed to create group")
			response.InternalError(c, "Failed to create group")
		}
		return
	}

	response.Created(c, group)
}

func (h *Handler) JoinGroup(c *gin.Context) {
	h.changeMembership(c, h.groupService.JoinGroup, "Failed to join group")
}

func (h *Handler) LeaveGroup(c *gin.Context) {
	h.changeMembership(c, h.groupService.LeaveGroup, "Failed to leave group")
}

type membershipFunc func(ctx context.Context, groupID, userID string) (*domain.Group, error)

func (h *Handler) changeMembership(c *gin.Context, change membershipFunc, failure string) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	groupID := c.Param("groupId")

	var req domain.GroupMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		response.BadRequest(c, "User ID is required")
		return
	}

	group, err := change(ctx, groupID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserIDRequired):
			response.BadRequest(c, "User ID is required")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "User not found")
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, "Group not found")
		default:
			l.Error().Err(err).Str(log.FieldGroupID, groupID).Str(log.FieldUserID, req.UserID).Msg(failure)
			response.InternalError(c, failure)
		}
		return
	}

	response.Success(c, group)
}

func (h *Handler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create user request")
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.groupService.CreateUser(ctx, &req)
	if err != nil {
		l.Error().Err(err).Msg("failed to create user")
		response.InternalError(c, "Failed to create user")
		return
	}

	response.Created(c, user)
}

func (h *Handler) CreateTrip(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	var req domain.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		l.Warn().Err(err).Msg("failed to bind create trip request")
		response.BadRequest(c, err.Error())
		return
	}

	trip, err := h.tripService.CreateTrip(ctx, &req)
	if err != nil {
		l.Error().Err(err).Msg("failed to create trip")
		response.InternalError(c, "Failed to create trip")
		return
	}

	response.Created(c, trip)
}

func (h *Handler) GetTrip(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.Ctx(ctx)

	tripID := c.Param("tripId")

	trip, err := h.tripService.GetTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, service.ErrTripNotFound) {
			response.NotFound(c, "Trip not found")
			return
		}
		l.Error().Err(err).Str(log.FieldTripID, tripID).Msg("failed to get trip")
		response.InternalError(c, "Failed to get trip")
		return
	}

	response.Success(c, trip)
}
