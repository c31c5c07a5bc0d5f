package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/before-thirty/live-chat/internal/audit"
	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/internal/hub"
	"github.com/before-thirty/live-chat/internal/metrics"
	"github.com/before-thirty/live-chat/internal/repository"
	"github.com/before-thirty/live-chat/pkg/log"
)

var (
	ErrMissingParameter = errors.New("missing parameter")
	ErrRoomNotFound     = errors.New("room not found")
	ErrPersistence      = errors.New("persistence error")
)

// Join kinds reported to metrics.
const (
	KindRooms = "rooms"
	KindGroup = "group"
)

// Gateway is the persistence the coordinator needs to resolve rooms and
// record durable memberships.
type Gateway interface {
	FindTrip(ctx context.Context, tripID string) (*domain.Trip, error)
	CreateMembership(ctx context.Context, tripID, userID string) error
	GetTripWithMembers(ctx context.Context, tripID string) (*domain.TripSnapshot, error)
}

// JoinResult is the outcome of one item of a bulk join.
type JoinResult struct {
	RoomID  string
	Success bool
	Err     error
}

// Coordinator applies join and leave requests to the hub, consulting the
// gateway where a request needs persisted state. It holds no lock of its
// own; gateway calls never run under the hub lock.
type Coordinator struct {
	hub     *hub.Hub
	gateway Gateway
	metrics *metrics.Metrics
}

func NewCoordinator(h *hub.Hub, gw Gateway, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		hub:     h,
		gateway: gw,
		metrics: m,
	}
}

// JoinRooms joins connID to every room in roomIDs, reporting one result per
// input item in input order. A failing item does not affect the others.
func (c *Coordinator) JoinRooms(ctx context.Context, connID string, roomIDs []string) []JoinResult {
	results := make([]JoinResult, 0, len(roomIDs))
	for _, roomID := range roomIDs {
		err := c.joinRoom(ctx, connID, roomID)
		c.metrics.Join(KindRooms, err == nil)
		results = append(results, JoinResult{RoomID: roomID, Success: err == nil, Err: err})
	}

	l := log.Ctx(ctx)
	joined := 0
	for _, r := range results {
		if r.Success {
			joined++
		}
	}
	l.Info().Int("requested", len(roomIDs)).Int("joined", joined).Msg("bulk trip room join")
	audit.LogWithDetail(ctx, audit.ActionJoinRooms, "", fmt.Sprintf("%d/%d", joined, len(roomIDs)), "joined trip rooms")
	return results
}

func (c *Coordinator) joinRoom(ctx context.Context, connID, roomID string) error {
	if roomID == "" {
		return ErrMissingParameter
	}
	if _, err := c.gateway.FindTrip(ctx, roomID); err != nil {
		return gatewayError(roomID, err)
	}
	_, err := c.hub.Join(connID, roomID)
	return err
}

// JoinGroup records userID as a durable member of tripID, joins connID to
// the trip room and returns the members as read after the write. added is
// false when connID was already in the room. When the read fails the room
// edge added by this call is removed again.
func (c *Coordinator) JoinGroup(ctx context.Context, connID, tripID, userID string) (snapshot *domain.TripSnapshot, added bool, err error) {
	snapshot, added, err = c.joinGroup(ctx, connID, tripID, userID)
	c.metrics.Join(KindGroup, err == nil)
	if err != nil {
		return nil, false, err
	}

	audit.LogTrip(ctx, audit.ActionJoinGroup, userID, tripID, "user joined trip group")
	return snapshot, added, nil
}

func (c *Coordinator) joinGroup(ctx context.Context, connID, tripID, userID string) (*domain.TripSnapshot, bool, error) {
	l := log.Ctx(ctx)

	if tripID == "" || userID == "" {
		return nil, false, ErrMissingParameter
	}

	if err := c.gateway.CreateMembership(ctx, tripID, userID); err != nil {
		return nil, false, gatewayError(tripID, err)
	}

	added, err := c.hub.Join(connID, tripID)
	if err != nil {
		return nil, false, err
	}

	snapshot, err := c.gateway.GetTripWithMembers(ctx, tripID)
	if err != nil {
		if added {
			c.hub.Leave(connID, tripID)
			l.Warn().Err(err).Str(log.FieldTripID, tripID).Msg("member snapshot failed, room join rolled back")
		}
		return nil, false, gatewayError(tripID, err)
	}
	return snapshot, added, nil
}

// Leave removes connID from roomID and reports whether it was a member.
func (c *Coordinator) Leave(ctx context.Context, connID, roomID string) bool {
	left := c.hub.Leave(connID, roomID)
	if left {
		audit.LogTrip(ctx, audit.ActionLeave, "", roomID, "left trip room")
	}
	return left
}

// Disconnect drops connID and all of its room memberships.
func (c *Coordinator) Disconnect(ctx context.Context, connID string) []string {
	rooms := c.hub.Unregister(connID)

	l := log.Ctx(ctx)
	l.Info().Strs("rooms", rooms).Msg("connection removed from rooms")
	audit.LogWithDetail(ctx, audit.ActionDisconnect, "", fmt.Sprintf("%d rooms", len(rooms)), "connection closed")
	return rooms
}

func gatewayError(tripID string, err error) error {
	if errors.Is(err, repository.ErrTripNotFound) {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, tripID)
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
