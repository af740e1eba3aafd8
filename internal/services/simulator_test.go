package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// sequence returns the given values in order, repeating the last one.
func sequence(values ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

func TestLocationStepStaysInBounds(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	start, err := env.store.UpdateLocation(env.driver.ID, models.LocationInput{Latitude: -1.2921, Longitude: 36.8219, Accuracy: 10})
	require.NoError(t, err)

	for _, r := range []float64{0, 0.25, 0.999999} {
		env.simulators.random = sequence(r)
		prev, err := env.store.GetLocation(env.driver.ID)
		require.NoError(t, err)

		require.NoError(t, env.simulators.step(context.Background(), env.driver.ID))

		next, err := env.store.GetLocation(env.driver.ID)
		require.NoError(t, err)
		assert.NotEqual(t, prev.ID, next.ID)
		assert.LessOrEqual(t, abs(next.Latitude-prev.Latitude), maxStepDegrees+1e-12)
		assert.LessOrEqual(t, abs(next.Longitude-prev.Longitude), maxStepDegrees+1e-12)
		assert.GreaterOrEqual(t, next.Accuracy, 10.0)
		assert.LessOrEqual(t, next.Accuracy, 30.0)
		require.NotNil(t, next.Speed)
		assert.GreaterOrEqual(t, *next.Speed, 10.0)
		assert.LessOrEqual(t, *next.Speed, 70.0)
		require.NotNil(t, next.Heading)
		assert.GreaterOrEqual(t, *next.Heading, 0.0)
		assert.Less(t, *next.Heading, 360.0)
	}
	assert.Len(t, env.store.LocationHistory(env.driver.ID, 10), 4)
	assert.NotEqual(t, start.ID, env.store.LocationHistory(env.driver.ID, 1)[0].ID)
}

func TestLocationStepWithoutPosition(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	require.NoError(t, env.simulators.step(context.Background(), env.driver.ID))
	_, err := env.store.GetLocation(env.driver.ID)
	assert.Error(t, err)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestLocationSimulatorLifecycle(t *testing.T) {
	env := newTestEnv(t, 5*time.Millisecond)
	env.book(t, env.customer, 1)
	_, customerSink := env.connect(t, env.customer)
	_, err := env.store.UpdateLocation(env.driver.ID, models.LocationInput{Latitude: -1.2921, Longitude: 36.8219})
	require.NoError(t, err)

	assert.True(t, env.simulators.Start(env.driver.ID))
	assert.False(t, env.simulators.Start(env.driver.ID), "one simulator per driver")

	assert.Eventually(t, func() bool {
		return len(customerSink.ofType(EventLocationUpdate)) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	assert.True(t, env.simulators.Stop(env.driver.ID))
	assert.False(t, env.simulators.Active(env.driver.ID))
	seen := len(customerSink.ofType(EventLocationUpdate))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, len(customerSink.ofType(EventLocationUpdate)), "no ticks after stop")
	assert.False(t, env.simulators.Stop(env.driver.ID))
}

func TestNoLocationUpdatesAfterDriverDisconnects(t *testing.T) {
	env := newTestEnv(t, 5*time.Millisecond)
	env.book(t, env.customer, 1)
	_, customerSink := env.connect(t, env.customer)
	_, err := env.store.UpdateLocation(env.driver.ID, models.LocationInput{Latitude: -1.2921, Longitude: 36.8219})
	require.NoError(t, err)

	driver, _ := env.connect(t, env.driver)
	assert.Eventually(t, func() bool {
		return len(customerSink.ofType(EventLocationUpdate)) > 0
	}, 2*time.Second, 5*time.Millisecond)

	driver.Close()
	seen := len(customerSink.ofType(EventLocationUpdate))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, len(customerSink.ofType(EventLocationUpdate)))
	assert.Len(t, customerSink.ofType(EventDriverOffline), 1)
}

func TestBookingSweep(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	_, customerSink := env.connect(t, env.customer)
	_, driverSink := env.connect(t, env.driver)
	booking := env.book(t, env.customer, 2)

	sim := NewBookingSimulator(env.store, env.notifier, time.Hour, 0.05, env.gateway.logger)

	t.Run("probability miss leaves bookings alone", func(t *testing.T) {
		sim.random = sequence(0.9)
		assert.Zero(t, sim.Sweep())
		got, err := env.store.GetBooking(booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusPending, got.Status)
		assert.False(t, got.DriverConfirmed)
	})

	t.Run("hit confirms through the store", func(t *testing.T) {
		sim.random = sequence(0.01)
		assert.Equal(t, 1, sim.Sweep())

		got, err := env.store.GetBooking(booking.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, got.Status)
		assert.True(t, got.DriverConfirmed)
		assert.True(t, got.CustomerConfirmed)

		for _, sink := range []*recordingSink{customerSink, driverSink} {
			changes := sink.ofType(EventBookingStatusChange)
			require.Len(t, changes, 1)
			assert.Equal(t, BookingStatusChange{
				BookingID:         booking.ID,
				Status:            models.BookingStatusConfirmed,
				DriverConfirmed:   true,
				CustomerConfirmed: true,
			}, decodeData[BookingStatusChange](t, changes[0]))
		}
	})

	t.Run("non pending bookings are skipped", func(t *testing.T) {
		sim.random = sequence(0)
		assert.Zero(t, sim.Sweep())
	})
}

func TestBookingSweepNeverTouchesCustomerFlag(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	booking := env.book(t, env.customer, 1)
	withdraw := false
	_, err := env.store.UpdateBooking(booking.ID, models.BookingPatch{CustomerConfirmed: &withdraw})
	require.NoError(t, err)

	sim := NewBookingSimulator(env.store, env.notifier, time.Hour, 1, env.gateway.logger)
	sim.random = sequence(0)
	assert.Equal(t, 1, sim.Sweep())

	got, err := env.store.GetBooking(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusPending, got.Status)
	assert.True(t, got.DriverConfirmed)
	assert.False(t, got.CustomerConfirmed)

	assert.Zero(t, sim.Sweep(), "driver already confirmed")
}

func TestBookingSimulatorRunStopsWithContext(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	env.book(t, env.customer, 1)
	sim := NewBookingSimulator(env.store, env.notifier, 5*time.Millisecond, 1, env.gateway.logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sim.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		b := env.store.ListBookings(models.BookingFilter{CustomerID: env.customer.ID})
		return len(b) == 1 && b[0].Status == models.BookingStatusConfirmed
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
