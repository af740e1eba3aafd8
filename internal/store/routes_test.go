package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

func TestCreateRoute(t *testing.T) {
	f := newFixture(t, 4)

	assert.Equal(t, 4, f.route.AvailableSeats)
	assert.Equal(t, models.RouteStatusActive, f.route.Status)
	assert.Equal(t, "Dana Driver", f.route.DriverName)
	require.Len(t, f.route.Stops, 2)
	assert.Equal(t, 1, f.route.Stops[1].Order)
	assert.Equal(t, f.route.ID, f.route.Stops[0].RouteID)

	t.Run("customers cannot publish routes", func(t *testing.T) {
		_, err := f.store.CreateRoute(models.NewRoute{DriverID: f.customer.ID, TotalSeats: 2})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := f.store.CreateRoute(models.NewRoute{DriverID: "nobody", TotalSeats: 2})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("returned stops do not alias the store", func(t *testing.T) {
		r, err := f.store.GetRoute(f.route.ID)
		require.NoError(t, err)
		r.Stops[0].Name = "mutated"

		again, err := f.store.GetRoute(f.route.ID)
		require.NoError(t, err)
		assert.Equal(t, "Westlands", again.Stops[0].Name)
	})
}

func TestListRoutesFilters(t *testing.T) {
	f := newFixture(t, 4)

	assert.Len(t, f.store.ListRoutes(models.RouteFilter{Origin: "west"}), 1)
	assert.Empty(t, f.store.ListRoutes(models.RouteFilter{Destination: "airport"}))
	assert.Len(t, f.store.ListRoutes(models.RouteFilter{Date: "2026-10-20", DriverID: f.driver.ID}), 1)
	assert.Empty(t, f.store.ListRoutes(models.RouteFilter{MinSeats: 5}))
	assert.Empty(t, f.store.ListRoutes(models.RouteFilter{MaxPrice: 100}))
}

func TestUpdateRouteNeverWritesAvailableSeatsDirectly(t *testing.T) {
	f := newFixture(t, 4)
	_, err := f.store.CreateBooking(models.NewBooking{RouteID: f.route.ID, CustomerID: f.customer.ID, Seats: 3})
	require.NoError(t, err)

	t.Run("growing total shifts available by the delta", func(t *testing.T) {
		r, err := f.store.UpdateRoute(f.route.ID, models.RoutePatch{TotalSeats: ptr(6)})
		require.NoError(t, err)
		assert.Equal(t, 6, r.TotalSeats)
		assert.Equal(t, 3, r.AvailableSeats)
	})

	t.Run("shrinking below held seats fails and leaves route untouched", func(t *testing.T) {
		_, err := f.store.UpdateRoute(f.route.ID, models.RoutePatch{TotalSeats: ptr(2), Price: ptr(99.0)})
		assert.ErrorIs(t, err, ErrInsufficientCapacity)

		r, err := f.store.GetRoute(f.route.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, r.TotalSeats)
		assert.Equal(t, 250.0, r.Price)
	})

	t.Run("general fields merge", func(t *testing.T) {
		r, err := f.store.UpdateRoute(f.route.ID, models.RoutePatch{Notes: ptr("no luggage")})
		require.NoError(t, err)
		assert.Equal(t, "no luggage", r.Notes)
		assert.Equal(t, 3, r.AvailableSeats)
	})
}

func TestDeleteRoute(t *testing.T) {
	f := newFixture(t, 2)
	b, err := f.store.CreateBooking(models.NewBooking{RouteID: f.route.ID, CustomerID: f.customer.ID, Seats: 1})
	require.NoError(t, err)
	assert.ErrorIs(t, f.store.DeleteRoute(f.route.ID), ErrConflict)

	_, err = f.store.UpdateBooking(b.ID, models.BookingPatch{Status: ptr(models.BookingStatusCancelled)})
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteRoute(f.route.ID))
	assert.ErrorIs(t, f.store.DeleteRoute(f.route.ID), ErrNotFound)
	_, err = f.store.GetRoute(f.route.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.store.DeleteBooking(b.ID), "bookings outlive their route")
}
