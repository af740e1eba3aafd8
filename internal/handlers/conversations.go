package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/middleware"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/services"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

type SendMessageInput struct {
	Text string `json:"text" binding:"required"`
}

func ListConversations(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, st.ListConversations(c.GetString(middleware.UserIDKey)))
	}
}

// GetBookingConversation returns the booking's chat, opening it on first access.
func GetBookingConversation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, err := st.GetBooking(c.Param("bookingId"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !booking.Participant(c.GetString(middleware.UserIDKey)) {
			forbidden(c, "Not authorized to access this conversation")
			return
		}

		conv, created, err := st.GetOrCreateConversation(booking.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		status := 200
		if created {
			status = 201
		}
		c.JSON(status, conv)
	}
}

// participantConversation loads the conversation and checks the caller is in it.
func participantConversation(c *gin.Context, st *store.Store) (models.Conversation, bool) {
	conv, err := st.GetConversation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return models.Conversation{}, false
	}
	if !conv.Participant(c.GetString(middleware.UserIDKey)) {
		forbidden(c, "Not authorized to access this conversation")
		return models.Conversation{}, false
	}
	return conv, true
}

func GetMessages(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, ok := participantConversation(c, st)
		if !ok {
			return
		}
		c.JSON(200, conv.Messages)
	}
}

// SendMessage appends a text message and pushes it to the other participant.
func SendMessage(st *store.Store, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input SendMessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		msg, err := st.AddMessage(c.Param("id"), c.GetString(middleware.UserIDKey), input.Text, models.MessageTypeText)
		if err != nil {
			respondError(c, err)
			return
		}
		notifier.NewMessage(msg)
		c.JSON(201, msg)
	}
}

func MarkConversationRead(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, err := st.MarkRead(c.Param("id"), c.GetString(middleware.UserIDKey))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, conv)
	}
}
