package services

import (
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

// Notifier turns committed store changes into room events.
type Notifier struct {
	hub   *Hub
	store *store.Store
}

func NewNotifier(hub *Hub, st *store.Store) *Notifier {
	return &Notifier{hub: hub, store: st}
}

func (n *Notifier) SendToUser(userID, eventType string, payload any) int {
	return n.hub.Publish(UserRoom(userID), eventType, payload)
}

func (n *Notifier) Notify(userID, kind, title, message string, data any) {
	n.SendToUser(userID, EventNotification, Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
		Data:    data,
	})
}

// BookingStatusChanged tells both sides of the booking about its current state.
func (n *Notifier) BookingStatusChanged(b models.Booking) {
	change := BookingStatusChange{
		BookingID:         b.ID,
		Status:            b.Status,
		DriverConfirmed:   b.DriverConfirmed,
		CustomerConfirmed: b.CustomerConfirmed,
	}
	n.SendToUser(b.CustomerID, EventBookingStatusChange, change)
	n.SendToUser(b.DriverID, EventBookingStatusChange, change)
}

func (n *Notifier) NewMessage(m models.Message) {
	n.SendToUser(m.RecipientID, EventNewMessage, m)
	n.Notify(m.RecipientID, "message", "New message from "+m.SenderName, m.Text, map[string]string{
		"conversationId": m.ConversationID,
	})
}

// RouteUpdated reaches the driver and every customer with a live booking on the route.
func (n *Notifier) RouteUpdated(r models.Route) {
	update := RouteUpdate{RouteID: r.ID, AvailableSeats: r.AvailableSeats, Status: r.Status}
	n.SendToUser(r.DriverID, EventRouteUpdate, update)

	seen := make(map[string]struct{})
	for _, b := range n.store.ListBookings(models.BookingFilter{RouteID: r.ID}) {
		if !b.Status.Active() {
			continue
		}
		if _, ok := seen[b.CustomerID]; ok {
			continue
		}
		seen[b.CustomerID] = struct{}{}
		n.SendToUser(b.CustomerID, EventRouteUpdate, update)
	}
}

func (n *Notifier) DriverOffline(driverID string) {
	seen := make(map[string]struct{})
	for _, b := range n.store.ActiveBookingsForDriver(driverID) {
		if _, ok := seen[b.CustomerID]; ok {
			continue
		}
		seen[b.CustomerID] = struct{}{}
		n.SendToUser(b.CustomerID, EventDriverOffline, DriverOffline{DriverID: driverID})
	}
}
