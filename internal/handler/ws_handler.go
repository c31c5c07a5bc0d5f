package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"github.com/before-thirty/live-chat/internal/audit"
	"github.com/before-thirty/live-chat/internal/config"
	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/internal/hub"
	"github.com/before-thirty/live-chat/internal/membership"
	pkglog "github.com/before-thirty/live-chat/pkg/log"
)

type WSHandler struct {
	hub         *hub.Hub
	coordinator *membership.Coordinator
	router      *Router
	wsCfg       config.WebSocketConfig
	upgrader    websocket.Upgrader
}

func NewWSHandler(h *hub.Hub, coord *membership.Coordinator, wsCfg config.WebSocketConfig, corsCfg config.CORSConfig) *WSHandler {
	origins := cors.New(cors.Options{AllowedOrigins: corsCfg.AllowedOrigins})
	ws := &WSHandler{
		hub:         h,
		coordinator: coord,
		wsCfg:       wsCfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// browsers do not apply CORS to upgrades, so the allowed origins
			// are checked here. Requests without an Origin are not from a browser.
			CheckOrigin: func(r *http.Request) bool {
				return r.Header.Get("Origin") == "" || origins.OriginAllowed(r)
			},
		},
	}

	ws.router = NewRouter()
	ws.router.Handle(domain.MsgTypeJoinMultipleTripRooms, ws.handleJoinMultipleTripRooms)
	ws.router.Handle(domain.MsgTypeJoinGroup, ws.handleJoinGroup)
	ws.router.Handle(domain.MsgTypeSendMessage, ws.handleSendMessage)
	ws.router.Handle(domain.MsgTypeLeaveTripRoom, ws.handleLeaveTripRoom)
	ws.router.Handle(domain.MsgTypePing, ws.handlePing)
	return ws
}

func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l := pkglog.Ctx(r.Context())
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := hub.NewClient(conn, h.wsCfg)
	client.ID = h.hub.Register(client)

	// the request context ends with the handler; the connection outlives it
	logger := pkglog.Ctx(r.Context()).With().Str(pkglog.FieldConnID, client.ID).Logger()
	ctx := pkglog.WithLogger(context.Background(), logger)
	logger.Info().Msg("websocket connected")

	go client.WritePump()
	go client.ReadPump(
		func(c *hub.Client, message []byte) {
			h.handleMessage(ctx, c, message)
		},
		func(c *hub.Client) {
			h.coordinator.Disconnect(ctx, c.ID)
			logger.Info().Msg("websocket disconnected")
		},
	)
}

func (h *WSHandler) handleMessage(ctx context.Context, client *hub.Client, message []byte) {
	if !client.Allow() {
		reply(ctx, client, domain.NewErrorMessage(domain.ErrCodeRateLimited, "Too many messages"))
		return
	}
	h.router.Dispatch(ctx, client, message)
}

func (h *WSHandler) handleJoinMultipleTripRooms(ctx context.Context, conn Conn, payload []byte) {
	var msg domain.JoinMultipleTripRoomsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid joinMultipleTripRooms message"))
		return
	}
	if len(msg.TripIDs) == 0 {
		l := pkglog.Ctx(ctx)
		l.Info().Msg("empty tripIds in joinMultipleTripRooms, ignoring")
		return
	}

	results := h.coordinator.JoinRooms(ctx, conn.ConnID(), msg.TripIDs)

	summary := &domain.TripRoomsJoinedMessage{
		Type:      domain.MsgTypeTripRoomsJoined,
		Results:   make([]domain.JoinRoomResult, 0, len(results)),
		Requested: len(results),
	}
	for _, r := range results {
		if r.Success {
			summary.Joined++
			summary.Results = append(summary.Results, domain.JoinRoomResult{TripID: r.RoomID, Success: true})
			reply(ctx, conn, &domain.JoinRoomSuccessMessage{Type: domain.MsgTypeJoinRoomSuccess, TripID: r.RoomID})
			continue
		}

		code, text := joinRoomError(r.RoomID, r.Err)
		summary.Results = append(summary.Results, domain.JoinRoomResult{TripID: r.RoomID, Code: code, Error: text})
		reply(ctx, conn, &domain.JoinRoomErrorMessage{Type: domain.MsgTypeJoinRoomError, TripID: r.RoomID, Code: code, Error: text})
	}
	reply(ctx, conn, summary)
}

func (h *WSHandler) handleJoinGroup(ctx context.Context, conn Conn, payload []byte) {
	var msg domain.JoinGroupMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid joinGroup message"))
		return
	}

	l := pkglog.Ctx(ctx)
	snapshot, added, err := h.coordinator.JoinGroup(ctx, conn.ConnID(), msg.TripID, msg.UserID)
	if err != nil {
		l.Warn().Err(err).Str(pkglog.FieldTripID, msg.TripID).Str(pkglog.FieldUserID, msg.UserID).Msg("join group failed")
		reply(ctx, conn, joinGroupError(msg.TripID, err))
		return
	}

	reply(ctx, conn, &domain.GroupJoinedMessage{Type: domain.MsgTypeGroupJoined, Members: snapshot})
	if !added {
		return
	}

	notice := &domain.UserJoinedGroupMessage{
		Type:   domain.MsgTypeUserJoinedGroup,
		UserID: msg.UserID,
		TripID: msg.TripID,
	}
	if _, err := h.hub.BroadcastToRoom(msg.TripID, notice, conn.ConnID()); err != nil {
		l.Error().Err(err).Str(pkglog.FieldTripID, msg.TripID).Msg("failed to notify room of new member")
	}
}

func (h *WSHandler) handleSendMessage(ctx context.Context, conn Conn, payload []byte) {
	var msg domain.SendMessageMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid sendMessage message"))
		return
	}
	if msg.TripID == "" {
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeMissingParameter, "Trip ID is required"))
		return
	}

	out := &domain.MessageReceivedMessage{
		Type:    domain.MsgTypeMessageReceived,
		TripID:  msg.TripID,
		Message: msg.MessageToSend,
	}
	delivered, err := h.hub.BroadcastToRoom(msg.TripID, out, "")
	if err != nil {
		l := pkglog.Ctx(ctx)
		l.Error().Err(err).Str(pkglog.FieldTripID, msg.TripID).Msg("failed to broadcast message")
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to send message"))
		return
	}

	audit.LogWithDetail(ctx, audit.ActionSendMessage, msg.User, fmt.Sprintf("%s delivered=%d", msg.TripID, delivered), "message sent to trip")
}

func (h *WSHandler) handleLeaveTripRoom(ctx context.Context, conn Conn, payload []byte) {
	var msg domain.LeaveTripRoomMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid leaveTripRoom message"))
		return
	}
	if msg.TripID == "" {
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeMissingParameter, "Trip ID is required"))
		return
	}

	h.coordinator.Leave(ctx, conn.ConnID(), msg.TripID)
	reply(ctx, conn, &domain.TripRoomLeftMessage{Type: domain.MsgTypeTripRoomLeft, TripID: msg.TripID})
}

func (h *WSHandler) handlePing(ctx context.Context, conn Conn, _ []byte) {
	reply(ctx, conn, &domain.BaseMessage{Type: domain.MsgTypePong})
}

// RegisterRoutes mounts the WebSocket endpoint on path.
func (h *WSHandler) RegisterRoutes(mux *http.ServeMux, path string) {
	mux.Handle(path, pkglog.HTTPMiddleware(pkglog.L())(http.HandlerFunc(h.HandleWebSocket)))
}

func joinRoomError(tripID string, err error) (code, text string) {
	switch {
	case errors.Is(err, membership.ErrMissingParameter):
		return domain.ErrCodeMissingParameter, "Trip ID is required"
	case errors.Is(err, membership.ErrRoomNotFound):
		return domain.ErrCodeRoomNotFound, fmt.Sprintf("Trip %s not found", tripID)
	case errors.Is(err, membership.ErrPersistence):
		return domain.ErrCodePersistenceError, "Server error during join"
	default:
		return domain.ErrCodeInternalError, "Server error during join"
	}
}

func joinGroupError(tripID string, err error) *domain.ErrorMessage {
	switch {
	case errors.Is(err, membership.ErrMissingParameter):
		return domain.NewErrorMessage(domain.ErrCodeMissingParameter, "Group ID and User ID are required")
	case errors.Is(err, membership.ErrRoomNotFound):
		return domain.NewErrorMessage(domain.ErrCodeRoomNotFound, fmt.Sprintf("Trip %s not found", tripID))
	case errors.Is(err, membership.ErrPersistence):
		return domain.NewErrorMessage(domain.ErrCodePersistenceError, "Failed to join group")
	default:
		return domain.NewErrorMessage(domain.ErrCodeInternalError, "Failed to join group")
	}
}
