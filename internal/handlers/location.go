package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/middleware"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/services"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

const (
	defaultSearchRadiusKm = 10.0
	maxSearchRadiusKm     = 100.0
	defaultNearbyLimit    = 20
	locationWriteTimeout  = 5 * time.Second
)

// UpdateLocation records the calling driver's position and fans it out.
func UpdateLocation(locations *services.LocationBroadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.LocationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), locationWriteTimeout)
		defer cancel()

		sample, err := locations.Update(ctx, c.GetString(middleware.UserIDKey), input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, sample)
	}
}

// NearbyDrivers searches around lat/lng within radius km (default 10, max 100).
func NearbyDrivers(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			c.JSON(400, gin.H{"error": "Valid lat and lng query parameters are required"})
			return
		}

		radius := defaultSearchRadiusKm
		if raw := c.Query("radius"); raw != "" {
			r, err := strconv.ParseFloat(raw, 64)
			if err != nil || r <= 0 {
				c.JSON(400, gin.H{"error": "radius must be a positive number"})
				return
			}
			radius = min(r, maxSearchRadiusKm)
		}

		limit := defaultNearbyLimit
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		drivers := st.NearbyDrivers(lat, lng, radius, limit)
		if drivers == nil {
			drivers = []models.NearbyDriver{}
		}
		c.JSON(200, drivers)
	}
}

// canTrack allows users to see themselves, and customers to see a driver they
// hold an active booking with.
func canTrack(st *store.Store, viewerID, targetID string) bool {
	if viewerID == targetID {
		return true
	}
	for _, b := range st.ActiveBookingsForDriver(targetID) {
		if b.CustomerID == viewerID {
			return true
		}
	}
	return false
}

func GetUserLocation(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID := c.Param("userId")
		if !canTrack(st, c.GetString(middleware.UserIDKey), targetID) {
			forbidden(c, "Not authorized to view this location")
			return
		}
		sample, err := st.GetLocation(targetID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, sample)
	}
}

func GetLocationHistory(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID != c.GetString(middleware.UserIDKey) {
			forbidden(c, "Not authorized to view this location history")
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))
		c.JSON(200, st.LocationHistory(userID, limit))
	}
}

func ClearLocationHistory(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID != c.GetString(middleware.UserIDKey) {
			forbidden(c, "Not authorized to clear this location history")
			return
		}
		st.ClearLocationHistory(userID)
		c.JSON(200, gin.H{"message": "Location history cleared"})
	}
}
