package audit

import (
	"context"

	"github.com/before-thirty/live-chat/pkg/log"
)

// Audit actions for live-chat.
const (
	ActionJoinRooms   = "trip.join_rooms"
	ActionJoinGroup   = "trip.join_group"
	ActionLeave       = "trip.leave"
	ActionSendMessage = "trip.send_message"
	ActionDisconnect  = "trip.disconnect"
	ActionCreateTrip  = "trip.create"
	ActionCreateGroup = "group.create"
	ActionGroupJoin   = "group.join"
	ActionGroupLeave  = "group.leave"
	ActionCreateUser  = "user.create"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogTrip emits an audit entry scoped to a trip room.
func LogTrip(ctx context.Context, action string, userID, tripID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(log.FieldTripID, tripID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
