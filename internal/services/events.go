package services

import (
	"errors"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// Inbound event types.
const (
	EventAuthenticate = "authenticate"
	EventJoinRoom     = "join-room"
	EventLeaveRoom    = "leave-room"
	EventPing         = "ping"
)

// Outbound event types. EventLocationUpdate travels both ways.
const (
	EventLocationUpdate      = "location-update"
	EventAuthSuccess         = "auth-success"
	EventAuthError           = "auth-error"
	EventJoinedRoom          = "joined-room"
	EventLeftRoom            = "left-room"
	EventPong                = "pong"
	EventBookingStatusChange = "booking-status-change"
	EventNotification        = "notification"
	EventRouteUpdate         = "route-update"
	EventNewMessage          = "new-message"
	EventDriverOffline       = "driver-offline"
	EventError               = "error"
)

// ErrMalformedMessage is returned for frames that do not decode into an InboundMessage.
var ErrMalformedMessage = errors.New("malformed message")

// WebSocketMessage is every frame the server writes. Room events carry their
// payload in Data; control replies use the flat fields.
type WebSocketMessage struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Room      string `json:"room,omitempty"`
	ClientID  string `json:"clientId,omitempty"`
	UserID    string `json:"userId,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// InboundMessage is the union of every client frame.
type InboundMessage struct {
	Type     string                `json:"type"`
	UserID   string                `json:"userId,omitempty"`
	Token    string                `json:"token,omitempty"`
	Room     string                `json:"room,omitempty"`
	Location *models.LocationInput `json:"location,omitempty"`
}

type LocationUpdate struct {
	DriverID  string                `json:"driverId"`
	Location  models.LocationSample `json:"location"`
	BookingID string                `json:"bookingId,omitempty"`
}

type BookingStatusChange struct {
	BookingID         string               `json:"bookingId"`
	Status            models.BookingStatus `json:"status"`
	DriverConfirmed   bool                 `json:"driverConfirmed"`
	CustomerConfirmed bool                 `json:"customerConfirmed"`
}

type Notification struct {
	UserID  string `json:"userId"`
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type RouteUpdate struct {
	RouteID        string             `json:"routeId"`
	AvailableSeats int                `json:"availableSeats"`
	Status         models.RouteStatus `json:"status"`
}

type DriverOffline struct {
	DriverID string `json:"driverId"`
}
