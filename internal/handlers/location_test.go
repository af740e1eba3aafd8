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

func TestLocationEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	driver := env.register(t, "dana", models.RoleDriver)
	cole := env.register(t, "cole", models.RoleCustomer)
	ada := env.register(t, "ada", models.RoleCustomer)
	route := env.createRoute(t, driver, 4)
	booking := env.book(t, cole, route.ID, 1)
	coleInbox := env.listen(cole)

	position := gin.H{"latitude": -1.2864, "longitude": 36.8172, "accuracy": 12}

	w := env.do(t, http.MethodPost, "/api/location", cole.token, position)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/location", driver.token, gin.H{"latitude": 91, "longitude": 0, "accuracy": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/location", driver.token, position)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sample := decode[models.LocationSample](t, w)
	assert.Equal(t, driver.user.ID, sample.UserID)

	updates := coleInbox.ofType(services.EventLocationUpdate)
	require.Len(t, updates, 1)
	var update services.LocationUpdate
	require.NoError(t, json.Unmarshal(updates[0].Data, &update))
	assert.Equal(t, booking.ID, update.BookingID)
	assert.Equal(t, sample.ID, update.Location.ID)

	t.Run("who may see a position", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/location/"+driver.user.ID, cole.token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/location/"+driver.user.ID, driver.token, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/location/"+driver.user.ID, ada.token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.do(t, http.MethodGet, "/api/location/"+cole.user.ID, cole.token, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("nearby drivers", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/location/nearby-drivers?lat=-1.29&lng=36.82&radius=5", ada.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		drivers := decode[[]models.NearbyDriver](t, w)
		require.Len(t, drivers, 1)
		assert.Equal(t, driver.user.ID, drivers[0].DriverID)

		w = env.do(t, http.MethodGet, "/api/location/nearby-drivers?lat=40&lng=-74", ada.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[[]models.NearbyDriver](t, w))

		w = env.do(t, http.MethodGet, "/api/location/nearby-drivers?lat=abc&lng=1", ada.token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("history is private", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/location/"+driver.user.ID+"/history", cole.token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.do(t, http.MethodGet, "/api/location/"+driver.user.ID+"/history?limit=10", driver.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]models.LocationSample](t, w), 1)

		w = env.do(t, http.MethodDelete, "/api/location/"+driver.user.ID+"/history", cole.token, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.do(t, http.MethodDelete, "/api/location/"+driver.user.ID+"/history", driver.token, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodGet, "/api/location/"+driver.user.ID+"/history", driver.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[[]models.LocationSample](t, w))

		// The current position survives clearing the history.
		w = env.do(t, http.MethodGet, "/api/location/"+driver.user.ID, driver.token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
