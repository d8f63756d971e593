package gateway

import "sync"

// session is the outbound half of one live connection. The concrete
// implementation is *Client; tests substitute fakes.
type session interface {
	ID() string
	Send(payload []byte)
	Close()
}

// Hub tracks admitted sessions and their room membership. A session is
// joined to exactly one room at admission and never re-joined; emitting
// to a room with no members is a safe no-op.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]session            // conn id -> session
	rooms    map[string]map[string]session // room -> conn id -> session
	connRoom map[string]string             // conn id -> room
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]session),
		rooms:    make(map[string]map[string]session),
		connRoom: make(map[string]string),
	}
}

func (h *Hub) Join(room string, s session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[s.ID()] = s
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]session)
	}
	h.rooms[room][s.ID()] = s
	h.connRoom[s.ID()] = room
}

// Leave removes the session from the hub. Leaving an unknown session is a
// no-op.
func (h *Hub) Leave(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.connRoom[connID]; ok {
		if members := h.rooms[room]; members != nil {
			delete(members, connID)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
		delete(h.connRoom, connID)
	}
	delete(h.sessions, connID)
}

// EmitToRoom delivers payload to every member of a room.
func (h *Hub) EmitToRoom(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.rooms[room] {
		s.Send(payload)
	}
}

// Broadcast delivers payload to every admitted session.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions {
		s.Send(payload)
	}
}

func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CloseAll closes every session; used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	sessions := make([]session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]session)
	h.rooms = make(map[string]map[string]session)
	h.connRoom = make(map[string]string)
	h.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
