package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/middleware"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

// GetStats returns driver or customer dashboard figures depending on the caller's role.
func GetStats(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.UserIDKey)
		if c.GetString(middleware.RoleKey) == string(models.RoleDriver) {
			stats, err := st.DriverStats(userID)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(200, stats)
			return
		}

		stats, err := st.CustomerStats(userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, stats)
	}
}
