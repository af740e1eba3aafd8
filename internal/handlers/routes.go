package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/middleware"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/services"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

// ListRoutes supports origin, destination, date, minSeats, maxPrice and driverId filters.
func ListRoutes(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := models.RouteFilter{
			Origin:      c.Query("origin"),
			Destination: c.Query("destination"),
			Date:        c.Query("date"),
			DriverID:    c.Query("driverId"),
		}
		if v := c.Query("minSeats"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				c.JSON(400, gin.H{"error": "minSeats must be an integer"})
				return
			}
			filter.MinSeats = n
		}
		if v := c.Query("maxPrice"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.JSON(400, gin.H{"error": "maxPrice must be a number"})
				return
			}
			filter.MaxPrice = f
		}
		c.JSON(200, st.ListRoutes(filter))
	}
}

func GetRoute(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		route, err := st.GetRoute(c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, route)
	}
}

func CreateRoute(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewRoute
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		input.DriverID = c.GetString(middleware.UserIDKey)

		route, err := st.CreateRoute(input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(201, route)
	}
}

// ownRoute loads the route and checks the caller drives it.
func ownRoute(c *gin.Context, st *store.Store) (models.Route, bool) {
	route, err := st.GetRoute(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return models.Route{}, false
	}
	if route.DriverID != c.GetString(middleware.UserIDKey) {
		forbidden(c, "Not authorized to modify this route")
		return models.Route{}, false
	}
	return route, true
}

func UpdateRoute(st *store.Store, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var patch models.RoutePatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			badRequest(c, err)
			return
		}
		if _, ok := ownRoute(c, st); !ok {
			return
		}

		route, err := st.UpdateRoute(c.Param("id"), patch)
		if err != nil {
			respondError(c, err)
			return
		}
		notifier.RouteUpdated(route)
		c.JSON(200, route)
	}
}

func DeleteRoute(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		route, ok := ownRoute(c, st)
		if !ok {
			return
		}
		if err := st.DeleteRoute(route.ID); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(200, gin.H{"message": "Route deleted successfully"})
	}
}

func GetRouteBookings(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		route, ok := ownRoute(c, st)
		if !ok {
			return
		}
		c.JSON(200, st.ListBookings(models.BookingFilter{RouteID: route.ID}))
	}
}
