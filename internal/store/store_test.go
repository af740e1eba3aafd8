package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// fixture seeds one driver, one customer and a route with the given seat count.
type fixture struct {
	store    *Store
	driver   models.User
	customer models.User
	route    models.Route
}

func newFixture(t *testing.T, seats int) fixture {
	t.Helper()
	s := New()

	driver, err := s.CreateUser("driver1", "secret1", models.RoleDriver, models.Profile{FirstName: "Dana", LastName: "Driver"})
	require.NoError(t, err)
	customer, err := s.CreateUser("customer1", "secret1", models.RoleCustomer, models.Profile{})
	require.NoError(t, err)

	route, err := s.CreateRoute(models.NewRoute{
		DriverID:      driver.ID,
		RouteName:     "Morning commute",
		Origin:        "Westlands",
		Destination:   "CBD",
		DepartureDate: "2026-10-20",
		DepartureTime: "07:30",
		Stops: []models.StopInput{
			{Name: "Westlands", EstimatedTime: "07:30"},
			{Name: "CBD", EstimatedTime: "08:10"},
		},
		TotalSeats: seats,
		Price:      250,
	})
	require.NoError(t, err)

	return fixture{store: s, driver: driver, customer: customer, route: route}
}

// addCustomer registers another customer so tests can hold several active bookings on one route.
func (f fixture) addCustomer(t *testing.T, username string) models.User {
	t.Helper()
	u, err := f.store.CreateUser(username, "secret1", models.RoleCustomer, models.Profile{})
	require.NoError(t, err)
	return u
}

func (f fixture) availableSeats(t *testing.T) int {
	t.Helper()
	r, err := f.store.GetRoute(f.route.ID)
	require.NoError(t, err)
	return r.AvailableSeats
}

func ptr[T any](v T) *T { return &v }
