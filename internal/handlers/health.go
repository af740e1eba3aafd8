package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/services"
)

func Health(hub *services.Hub, started time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":           "ok",
			"connectedClients": hub.GetConnectedClients(),
			"uptimeSeconds":    int64(time.Since(started).Seconds()),
		})
	}
}
