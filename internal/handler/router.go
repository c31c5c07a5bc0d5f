package handler

import (
	"context"
	"encoding/json"

	"github.com/before-thirty/live-chat/internal/domain"
	"github.com/before-thirty/live-chat/pkg/log"
)

// Conn is what an event handler needs from the connection that sent the event.
type Conn interface {
	ConnID() string
	SendMessage(message interface{}) error
}

// EventHandler handles one decoded inbound frame. payload is the whole frame.
type EventHandler func(ctx context.Context, conn Conn, payload []byte)

// Router dispatches inbound frames by their type field.
type Router struct {
	routes map[string]EventHandler
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]EventHandler)}
}

// Handle registers h for eventType, replacing any previous handler.
func (r *Router) Handle(eventType string, h EventHandler) {
	r.routes[eventType] = h
}

// Dispatch routes payload to its handler. Malformed frames and unknown
// types are answered with a BAD_REQUEST error event.
func (r *Router) Dispatch(ctx context.Context, conn Conn, payload []byte) {
	var base domain.BaseMessage
	if err := json.Unmarshal(payload, &base); err != nil {
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeBadRequest, "Invalid message format"))
		return
	}

	h, ok := r.routes[base.Type]
	if !ok {
		l := log.Ctx(ctx)
		l.Debug().Str(log.FieldEventType, base.Type).Msg("unknown event type")
		reply(ctx, conn, domain.NewErrorMessage(domain.ErrCodeBadRequest, "Unknown message type"))
		return
	}

	h(ctx, conn, payload)
}

// reply sends message to conn, logging instead of failing when the queue
// cannot take it.
func reply(ctx context.Context, conn Conn, message interface{}) {
	if err := conn.SendMessage(message); err != nil {
		l := log.Ctx(ctx)
		l.Debug().Err(err).Msg("reply dropped")
	}
}
