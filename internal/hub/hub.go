package hub

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/before-thirty/live-chat/internal/metrics"
	"github.com/before-thirty/live-chat/pkg/log"
)

var (
	ErrUnknownConnection = errors.New("unknown connection")
	ErrPeerClosed        = errors.New("peer closed")
	ErrSendBufferFull    = errors.New("send buffer full")
)

// Peer is the delivery endpoint behind a connection id.
type Peer interface {
	Send(data []byte) error
}

type connection struct {
	peer  Peer
	rooms map[string]struct{}
}

// Hub owns the connection registry and the room table. Both sides of a
// membership edge change under mu, so a reader never sees a connection in a
// room's member set without the room in the connection's own set. Gauges are
// set under mu too so they follow the lock order.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]*connection     // connID -> connection
	rooms   map[string]map[string]Peer // roomID -> connID -> peer
	metrics *metrics.Metrics
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		conns:   make(map[string]*connection),
		rooms:   make(map[string]map[string]Peer),
		metrics: m,
	}
}

// Register records p under a fresh connection id with no rooms.
func (h *Hub) Register(p Peer) string {
	id := uuid.New().String()

	h.mu.Lock()
	h.conns[id] = &connection{peer: p, rooms: make(map[string]struct{})}
	h.metrics.SetConnections(len(h.conns))
	h.mu.Unlock()

	l := log.L()
	l.Debug().Str(log.FieldConnID, id).Msg("connection registered")
	return id
}

// Unregister drops every membership edge of connID and then the connection
// itself, returning the rooms it was in. Unknown ids are a no-op.
func (h *Hub) Unregister(connID string) []string {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return nil
	}
	left := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		h.removeMemberLocked(roomID, connID)
		left = append(left, roomID)
	}
	delete(h.conns, connID)
	h.metrics.SetConnections(len(h.conns))
	h.metrics.SetRooms(len(h.rooms))
	h.mu.Unlock()

	sort.Strings(left)
	l := log.L()
	l.Debug().Str(log.FieldConnID, connID).Strs("rooms", left).Msg("connection unregistered")
	return left
}

// RoomsOf returns the sorted rooms connID belongs to.
func (h *Hub) RoomsOf(connID string) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.conns[connID]
	if !ok {
		return nil, ErrUnknownConnection
	}
	rooms := make([]string, 0, len(c.rooms))
	for roomID := range c.rooms {
		rooms = append(rooms, roomID)
	}
	sort.Strings(rooms)
	return rooms, nil
}

// MembersOf returns the sorted connection ids in roomID. An unknown room is
// an empty room.
func (h *Hub) MembersOf(roomID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[roomID]
	ids := make([]string, 0, len(members))
	for connID := range members {
		ids = append(ids, connID)
	}
	sort.Strings(ids)
	return ids
}

// IsMember reports whether connID is currently in roomID.
func (h *Hub) IsMember(connID, roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	_, ok := h.rooms[roomID][connID]
	return ok
}

// Join adds the edge (connID, roomID). added is false when the edge already
// existed. A connection that is not registered (or already unregistered)
// cannot join anything.
func (h *Hub) Join(connID, roomID string) (added bool, err error) {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return false, ErrUnknownConnection
	}
	if _, ok := c.rooms[roomID]; ok {
		h.mu.Unlock()
		return false, nil
	}
	members, ok := h.rooms[roomID]
	if !ok {
		members = make(map[string]Peer)
		h.rooms[roomID] = members
	}
	members[connID] = c.peer
	c.rooms[roomID] = struct{}{}
	h.metrics.SetRooms(len(h.rooms))
	h.mu.Unlock()
	return true, nil
}

// Leave removes the edge (connID, roomID) and reports whether it existed.
func (h *Hub) Leave(connID, roomID string) bool {
	h.mu.Lock()
	c, ok := h.conns[connID]
	if !ok {
		h.mu.Unlock()
		return false
	}
	if _, ok := c.rooms[roomID]; !ok {
		h.mu.Unlock()
		return false
	}
	delete(c.rooms, roomID)
	h.removeMemberLocked(roomID, connID)
	h.metrics.SetRooms(len(h.rooms))
	h.mu.Unlock()
	return true
}

// removeMemberLocked drops connID from the room table side only and prunes
// the room once empty. Callers hold mu and fix the connection side themselves.
func (h *Hub) removeMemberLocked(roomID, connID string) {
	members, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, roomID)
	}
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// CloseAll closes every registered peer that supports it. Peers unregister
// themselves as their connections wind down.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	peers := make([]Peer, 0, len(h.conns))
	for _, c := range h.conns {
		peers = append(peers, c.peer)
	}
	h.mu.RUnlock()

	for _, p := range peers {
		if closer, ok := p.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
