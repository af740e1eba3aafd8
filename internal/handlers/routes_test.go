package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/services"
)

func TestRouteEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	driver := env.register(t, "dana", models.RoleDriver)
	other := env.register(t, "otto", models.RoleDriver)
	cole := env.register(t, "cole", models.RoleCustomer)

	route := env.createRoute(t, driver, 4)
	assert.Equal(t, 4, route.AvailableSeats)
	assert.Equal(t, driver.user.ID, route.DriverID)

	t.Run("customers cannot create routes", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/routes", cole.token, gin.H{"routeName": "x"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("list filters", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/routes?origin=west&minSeats=3", cole.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.Route](t, w), 1)

		w = env.do(t, http.MethodGet, "/api/routes?maxPrice=100", cole.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[[]models.Route](t, w))

		w = env.do(t, http.MethodGet, "/api/routes?minSeats=lots", cole.token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("only the owner may update", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/routes/"+route.ID, other.token, gin.H{"price": 300})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("update publishes route-update to booked customers", func(t *testing.T) {
		env.book(t, cole, route.ID, 2)
		coleInbox := env.listen(cole)

		w := env.do(t, http.MethodPut, "/api/routes/"+route.ID, driver.token, gin.H{"totalSeats": 6})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 4, decode[models.Route](t, w).AvailableSeats)

		updates := coleInbox.ofType(services.EventRouteUpdate)
		require.Len(t, updates, 1)
		var update services.RouteUpdate
		require.NoError(t, json.Unmarshal(updates[0].Data, &update))
		assert.Equal(t, 4, update.AvailableSeats)
	})

	t.Run("shrinking below held seats fails", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/routes/"+route.ID, driver.token, gin.H{"totalSeats": 1})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = env.do(t, http.MethodPut, "/api/routes/"+route.ID, driver.token, gin.H{"totalSeats": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("route bookings are visible to the owner only", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/routes/"+route.ID+"/bookings", driver.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.Booking](t, w), 1)

		w = env.do(t, http.MethodGet, "/api/routes/"+route.ID+"/bookings", cole.token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("routes with active bookings cannot be deleted", func(t *testing.T) {
		w := env.do(t, http.MethodDelete, "/api/routes/"+route.ID, driver.token, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing route", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/routes/nope", cole.token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
