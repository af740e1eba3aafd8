package services

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/observability"
)

// Sink is the write side of one live connection. Deliver must not block; it
// reports false when the frame was dropped.
type Sink interface {
	Deliver(frame []byte) bool
}

// Identity is what a connection handle was authenticated as.
type Identity struct {
	UserID string
	Role   models.Role
}

// UserRoom is the personal room every authenticated connection joins.
func UserRoom(userID string) string {
	return "user-" + userID
}

type connection struct {
	sink     Sink
	identity Identity
	rooms    map[string]struct{}
}

// Hub tracks authenticated connections and their room memberships. Delivery is
// at most once: frames for a full or closed connection are dropped.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*connection
	rooms map[string]map[string]struct{}

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[string]*connection),
		rooms:  make(map[string]map[string]struct{}),
		logger: logger.With("component", "hub"),
	}
}

// Register assigns a handle to the sink and subscribes it to the identity's
// personal room.
func (h *Hub) Register(sink Sink, identity Identity) string {
	handle := uuid.NewString()

	h.mu.Lock()
	h.conns[handle] = &connection{sink: sink, identity: identity, rooms: make(map[string]struct{})}
	h.joinLocked(handle, UserRoom(identity.UserID))
	count := len(h.conns)
	h.mu.Unlock()

	observability.ConnectedClients.Inc()
	h.logger.Info("client registered", "handle", handle, "user_id", identity.UserID, "role", identity.Role, "connected", count)
	return handle
}

// Join subscribes the handle to room. Joining twice is a no-op; it reports false
// for unknown handles.
func (h *Hub) Join(handle, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[handle]; !ok {
		return false
	}
	h.joinLocked(handle, room)
	return true
}

func (h *Hub) joinLocked(handle, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		h.rooms[room] = members
	}
	members[handle] = struct{}{}
	h.conns[handle].rooms[room] = struct{}{}
}

// Leave unsubscribes the handle from room. Leaving a room that was never joined is a no-op.
func (h *Hub) Leave(handle, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.conns[handle]; ok {
		delete(c.rooms, room)
	}
	h.leaveLocked(handle, room)
}

func (h *Hub) leaveLocked(handle, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, handle)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Unregister drops the handle from every room and returns the identity it was
// registered with.
func (h *Hub) Unregister(handle string) (Identity, bool) {
	h.mu.Lock()
	c, ok := h.conns[handle]
	if !ok {
		h.mu.Unlock()
		return Identity{}, false
	}
	for room := range c.rooms {
		h.leaveLocked(handle, room)
	}
	delete(h.conns, handle)
	count := len(h.conns)
	h.mu.Unlock()

	observability.ConnectedClients.Dec()
	h.logger.Info("client unregistered", "handle", handle, "user_id", c.identity.UserID, "connected", count)
	return c.identity, true
}

func (h *Hub) Identity(handle string) (Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.conns[handle]
	if !ok {
		return Identity{}, false
	}
	return c.identity, true
}

// UserConnections counts the live connections authenticated as userID.
func (h *Hub) UserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, c := range h.conns {
		if c.identity.UserID == userID {
			n++
		}
	}
	return n
}

func (h *Hub) GetConnectedClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) RoomMembers(room string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.rooms[room]))
	for handle := range h.rooms[room] {
		out = append(out, handle)
	}
	return out
}

// Publish encodes {type, data} once and hands it to every member of room.
// It returns how many members accepted the frame.
func (h *Hub) Publish(room, eventType string, payload any) int {
	frame, err := json.Marshal(WebSocketMessage{Type: eventType, Data: payload})
	if err != nil {
		h.logger.Error("encode event", "type", eventType, "error", err)
		return 0
	}

	h.mu.RLock()
	sinks := make([]Sink, 0, len(h.rooms[room]))
	for handle := range h.rooms[room] {
		sinks = append(sinks, h.conns[handle].sink)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, sink := range sinks {
		if sink.Deliver(frame) {
			delivered++
		} else {
			observability.DeliveriesDropped.Inc()
		}
	}
	observability.EventsPublished.WithLabelValues(eventType).Inc()
	h.logger.Debug("event published", "room", room, "type", eventType, "delivered", delivered, "members", len(sinks))
	return delivered
}
