package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/store"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

// TokenVerifier checks an access token and returns the identity it was issued for.
type TokenVerifier interface {
	Verify(token string) (utils.Claims, error)
}

// Gateway speaks the realtime protocol on behalf of one connection at a time.
type Gateway struct {
	store      *store.Store
	hub        *Hub
	locations  *LocationBroadcaster
	simulators *LocationSimulator
	notifier   *Notifier
	verifier   TokenVerifier
	logger     *slog.Logger

	// presence serializes connect and disconnect bookkeeping so a driver's
	// simulator is started and stopped in the same order as their connections.
	presence sync.Mutex
	now      func() time.Time
}

func NewGateway(st *store.Store, hub *Hub, locations *LocationBroadcaster, simulators *LocationSimulator, notifier *Notifier, verifier TokenVerifier, logger *slog.Logger) *Gateway {
	return &Gateway{
		store:      st,
		hub:        hub,
		locations:  locations,
		simulators: simulators,
		notifier:   notifier,
		verifier:   verifier,
		logger:     logger.With("component", "gateway"),
		now:        time.Now,
	}
}

// Session is the protocol state of one connection.
type Session struct {
	g    *Gateway
	sink Sink

	mu     sync.Mutex
	handle string
}

func (g *Gateway) NewSession(sink Sink) *Session {
	return &Session{g: g, sink: sink}
}

func (s *Session) reply(msg WebSocketMessage) {
	frame, err := json.Marshal(msg)
	if err != nil {
		s.g.logger.Error("encode reply", "type", msg.Type, "error", err)
		return
	}
	s.sink.Deliver(frame)
}

func (s *Session) fail(message string) {
	s.reply(WebSocketMessage{Type: EventError, Message: message})
}

func (s *Session) identity() (string, Identity, bool) {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()
	if handle == "" {
		return "", Identity{}, false
	}
	id, ok := s.g.hub.Identity(handle)
	return handle, id, ok
}

// Handle decodes and dispatches one inbound frame. Bad frames produce an error
// reply and never end the session.
func (s *Session) Handle(raw []byte) {
	msg, err := decodeInbound(raw)
	if err != nil {
		s.g.logger.Debug("bad frame", "error", err)
		s.fail("Invalid message format")
		return
	}

	switch msg.Type {
	case EventAuthenticate:
		s.authenticate(msg)
	case EventJoinRoom:
		s.joinRoom(msg)
	case EventLeaveRoom:
		s.leaveRoom(msg)
	case EventLocationUpdate:
		s.locationUpdate(msg)
	case EventPing:
		s.reply(WebSocketMessage{Type: EventPong, Timestamp: s.g.now().UnixMilli()})
	default:
		s.fail("Unknown message type")
	}
}

func decodeInbound(raw []byte) (InboundMessage, error) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return InboundMessage{}, fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	if msg.Type == "" {
		return InboundMessage{}, fmt.Errorf("%w: missing type", ErrMalformedMessage)
	}
	return msg, nil
}

func (s *Session) authenticate(msg InboundMessage) {
	authError := func(message string) {
		s.reply(WebSocketMessage{Type: EventAuthError, Message: message})
	}

	if msg.UserID == "" {
		authError("User ID required")
		return
	}
	claims, err := s.g.verifier.Verify(msg.Token)
	if err != nil {
		authError("Invalid token")
		return
	}
	if claims.UserID != msg.UserID {
		authError("Token does not match user")
		return
	}
	user, err := s.g.store.GetUser(msg.UserID)
	if err != nil {
		authError("User not found")
		return
	}

	identity := Identity{UserID: user.ID, Role: user.Role}
	g := s.g

	g.presence.Lock()
	s.mu.Lock()
	previous := s.handle
	s.mu.Unlock()
	if previous != "" {
		g.releaseLocked(previous, identity.UserID)
	}
	handle := g.hub.Register(s.sink, identity)
	s.mu.Lock()
	s.handle = handle
	s.mu.Unlock()
	s.reply(WebSocketMessage{Type: EventAuthSuccess, ClientID: handle, UserID: user.ID})
	if identity.Role == models.RoleDriver {
		g.simulators.Start(identity.UserID)
	}
	g.presence.Unlock()

	g.logger.Info("authenticated", "user_id", user.ID, "role", user.Role, "handle", handle)
}

func (s *Session) joinRoom(msg InboundMessage) {
	handle, id, ok := s.identity()
	if !ok {
		s.fail("Authentication required")
		return
	}
	if msg.Room == "" {
		s.fail("Room required")
		return
	}
	if msg.Room != UserRoom(id.UserID) {
		s.fail("Not allowed to join room")
		return
	}
	s.g.hub.Join(handle, msg.Room)
	s.reply(WebSocketMessage{Type: EventJoinedRoom, Room: msg.Room})
}

func (s *Session) leaveRoom(msg InboundMessage) {
	handle, _, ok := s.identity()
	if !ok {
		s.fail("Authentication required")
		return
	}
	if msg.Room == "" {
		s.fail("Room required")
		return
	}
	s.g.hub.Leave(handle, msg.Room)
	s.reply(WebSocketMessage{Type: EventLeftRoom, Room: msg.Room})
}

func (s *Session) locationUpdate(msg InboundMessage) {
	_, id, ok := s.identity()
	if !ok || id.Role != models.RoleDriver {
		s.fail("Only drivers can update location")
		return
	}
	if msg.Location == nil {
		s.fail("Location required")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.g.locations.Update(ctx, id.UserID, *msg.Location); err != nil {
		s.fail(errorMessage(err))
	}
}

// Close releases everything the connection held. A driver whose last connection
// closes gets their simulator stopped before customers hear they went offline.
func (s *Session) Close() {
	s.mu.Lock()
	handle := s.handle
	s.handle = ""
	s.mu.Unlock()
	if handle == "" {
		return
	}

	s.g.presence.Lock()
	s.g.releaseLocked(handle, "")
	s.g.presence.Unlock()
}

// releaseLocked unregisters handle. When it was the last connection of a driver
// that is not about to reconnect as keepUserID, the simulator is stopped first so
// no tick can publish after the handle is gone. Callers hold g.presence.
func (g *Gateway) releaseLocked(handle, keepUserID string) {
	id, ok := g.hub.Identity(handle)
	if !ok {
		return
	}
	lastDriverConn := id.Role == models.RoleDriver &&
		id.UserID != keepUserID &&
		g.hub.UserConnections(id.UserID) == 1
	if lastDriverConn {
		g.simulators.Stop(id.UserID)
	}
	g.hub.Unregister(handle)
	if lastDriverConn {
		g.notifier.DriverOffline(id.UserID)
		g.logger.Info("driver offline", "user_id", id.UserID)
	}
}

// errorMessage is the user-visible text for a failed store operation.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, store.ErrInvalidInput):
		return "Invalid location"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"
	case errors.Is(err, store.ErrUnauthorized):
		return "Unauthorized"
	default:
		return "Internal error"
	}
}
