package hub

import (
	"encoding/json"

	"github.com/before-thirty/live-chat/pkg/log"
)

type target struct {
	connID string
	peer   Peer
}

// BroadcastToRoom encodes message once and hands it to every member of
// roomID except exclude. It returns how many peers accepted the frame.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}, exclude string) (int, error) {
	data, err := json.Marshal(message)
	if err != nil {
		return 0, err
	}
	return h.BroadcastRawToRoom(roomID, data, exclude), nil
}

// BroadcastRawToRoom delivers data to the members of roomID as of the call.
// The member set is copied under the read lock and delivery happens after it
// is released, so joins and leaves caused by delivery never affect this
// broadcast. Peers that refuse the frame are skipped.
func (h *Hub) BroadcastRawToRoom(roomID string, data []byte, exclude string) int {
	targets := h.snapshot(roomID, exclude)

	delivered := 0
	for _, t := range targets {
		if err := t.peer.Send(data); err != nil {
			l := log.L()
			l.Debug().Err(err).Str(log.FieldConnID, t.connID).Str(log.FieldTripID, roomID).Msg("delivery dropped")
			continue
		}
		delivered++
	}

	h.metrics.Broadcast(delivered, len(targets)-delivered)
	return delivered
}

func (h *Hub) snapshot(roomID, exclude string) []target {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.rooms[roomID]
	targets := make([]target, 0, len(members))
	for connID, p := range members {
		if connID == exclude {
			continue
		}
		targets = append(targets, target{connID: connID, peer: p})
	}
	return targets
}
