package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/services"
)

// WebSocketHandler upgrades the request. Clients authenticate in-band with an
// authenticate frame, so the route sits outside the auth middleware.
func WebSocketHandler(gateway *services.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		gateway.ServeWebSocket(c.Writer, c.Request)
	}
}
