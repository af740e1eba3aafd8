package store

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// MaxMessageLength bounds the text of a single chat message, in characters.
const MaxMessageLength = 1000

// GetOrCreateConversation returns the booking's conversation, creating it on first
// access. Exactly one conversation exists per booking.
func (s *Store) GetOrCreateConversation(bookingID string) (models.Conversation, bool, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	s.bookingsMu.RLock()
	defer s.bookingsMu.RUnlock()
	s.conversationsMu.Lock()
	defer s.conversationsMu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return models.Conversation{}, false, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	if id, ok := s.byBooking[bookingID]; ok {
		return cloneConversation(s.conversations[id]), false, nil
	}

	driver, okDriver := s.users[booking.DriverID]
	customer, okCustomer := s.users[booking.CustomerID]
	if !okDriver || !okCustomer {
		return models.Conversation{}, false, fmt.Errorf("participants of booking %s: %w", bookingID, ErrNotFound)
	}

	conv := &models.Conversation{
		ID:             s.newID(),
		BookingID:      bookingID,
		DriverID:       driver.ID,
		CustomerID:     customer.ID,
		DriverName:     driver.DisplayName(),
		CustomerName:   customer.DisplayName(),
		DriverAvatar:   driver.Profile.Avatar,
		CustomerAvatar: customer.Profile.Avatar,
		Messages:       []models.Message{},
		LastMessageAt:  s.now(),
	}
	s.conversations[conv.ID] = conv
	s.byBooking[bookingID] = conv.ID
	return cloneConversation(conv), true, nil
}

func (s *Store) GetConversation(id string) (models.Conversation, error) {
	s.conversationsMu.RLock()
	defer s.conversationsMu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return models.Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return cloneConversation(conv), nil
}

func (s *Store) ConversationByBooking(bookingID string) (models.Conversation, error) {
	s.conversationsMu.RLock()
	defer s.conversationsMu.RUnlock()

	id, ok := s.byBooking[bookingID]
	if !ok {
		return models.Conversation{}, fmt.Errorf("conversation for booking %s: %w", bookingID, ErrNotFound)
	}
	return cloneConversation(s.conversations[id]), nil
}

// ListConversations returns the user's conversations, most recently active first.
func (s *Store) ListConversations(userID string) []models.Conversation {
	s.conversationsMu.RLock()
	defer s.conversationsMu.RUnlock()

	out := make([]models.Conversation, 0)
	for _, c := range s.conversations {
		if c.Participant(userID) {
			out = append(out, cloneConversation(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	return out
}

// Messages returns a copy of the conversation's messages in append order.
func (s *Store) Messages(conversationID string) ([]models.Message, error) {
	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return nil, err
	}
	return conv.Messages, nil
}

// AddMessage appends a message from one participant to the other. A sender that
// is not a participant is reported as both ErrNotFound and ErrUnauthorized.
func (s *Store) AddMessage(conversationID, senderID, text string, kind models.MessageType) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxMessageLength {
		return models.Message{}, fmt.Errorf("%w: message text must be 1-%d characters", ErrInvalidInput, MaxMessageLength)
	}
	if kind == "" {
		kind = models.MessageTypeText
	}
	if kind != models.MessageTypeText && kind != models.MessageTypeSystem {
		return models.Message{}, fmt.Errorf("%w: unknown message type %q", ErrInvalidInput, kind)
	}

	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	s.conversationsMu.Lock()
	defer s.conversationsMu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return models.Message{}, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	if !conv.Participant(senderID) {
		return models.Message{}, fmt.Errorf("sender %s in conversation %s: %w: %w", senderID, conversationID, ErrNotFound, ErrUnauthorized)
	}

	senderName := senderID
	if sender, ok := s.users[senderID]; ok {
		senderName = sender.DisplayName()
	}

	msg := models.Message{
		ID:             s.newID(),
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderName:     senderName,
		RecipientID:    conv.Counterpart(senderID),
		Text:           text,
		Timestamp:      s.now(),
		Read:           false,
		Type:           kind,
	}
	conv.Messages = append(conv.Messages, msg)
	conv.LastMessageAt = msg.Timestamp
	conv.UnreadCount++
	return msg, nil
}

// MarkRead marks every message addressed to userID as read. The conversation's
// unread count is then recomputed as the unread messages addressed to the other
// participant.
func (s *Store) MarkRead(conversationID, userID string) (models.Conversation, error) {
	s.conversationsMu.Lock()
	defer s.conversationsMu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return models.Conversation{}, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	if !conv.Participant(userID) {
		return models.Conversation{}, fmt.Errorf("user %s in conversation %s: %w", userID, conversationID, ErrUnauthorized)
	}

	unread := 0
	for i := range conv.Messages {
		m := &conv.Messages[i]
		if m.Read {
			continue
		}
		if m.RecipientID == userID {
			m.Read = true
		} else {
			unread++
		}
	}
	conv.UnreadCount = unread
	return cloneConversation(conv), nil
}

func cloneConversation(c *models.Conversation) models.Conversation {
	out := *c
	out.Messages = make([]models.Message, len(c.Messages))
	copy(out.Messages, c.Messages)
	return out
}
