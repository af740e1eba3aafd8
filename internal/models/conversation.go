package models

import "time"

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeSystem MessageType = "system"
)

type Message struct {
	ID             string      `json:"id"`
	ConversationID string      `json:"conversationId"`
	SenderID       string      `json:"senderId"`
	SenderName     string      `json:"senderName"`
	RecipientID    string      `json:"recipientId"`
	Text           string      `json:"text"`
	Timestamp      time.Time   `json:"timestamp"`
	Read           bool        `json:"read"`
	Type           MessageType `json:"type"`
}

// Conversation is the chat attached to exactly one booking.
type Conversation struct {
	ID             string    `json:"id"`
	BookingID      string    `json:"bookingId"`
	DriverID       string    `json:"driverId"`
	CustomerID     string    `json:"customerId"`
	DriverName     string    `json:"driverName"`
	CustomerName   string    `json:"customerName"`
	DriverAvatar   string    `json:"driverAvatar,omitempty"`
	CustomerAvatar string    `json:"customerAvatar,omitempty"`
	Messages       []Message `json:"messages"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
	UnreadCount    int       `json:"unreadCount"`
}

func (c Conversation) Participant(userID string) bool {
	return c.DriverID == userID || c.CustomerID == userID
}

// Counterpart returns the other participant. userID must be a participant.
func (c Conversation) Counterpart(userID string) string {
	if c.DriverID == userID {
		return c.CustomerID
	}
	return c.DriverID
}
