package services

import (
	"context"
	"log/slog"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/observability"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

// LocationSink mirrors committed location samples to an external system.
type LocationSink interface {
	Name() string
	WriteLocation(ctx context.Context, sample models.LocationSample) error
}

// LocationBroadcaster is the single write path for positions: store first, then
// sinks, then fan-out to the rooms that care about the user.
type LocationBroadcaster struct {
	store  *store.Store
	hub    *Hub
	sinks  []LocationSink
	logger *slog.Logger
}

func NewLocationBroadcaster(st *store.Store, hub *Hub, logger *slog.Logger, sinks ...LocationSink) *LocationBroadcaster {
	return &LocationBroadcaster{
		store:  st,
		hub:    hub,
		sinks:  sinks,
		logger: logger.With("component", "location"),
	}
}

func (b *LocationBroadcaster) Update(ctx context.Context, userID string, in models.LocationInput) (models.LocationSample, error) {
	sample, err := b.store.UpdateLocation(userID, in)
	if err != nil {
		return models.LocationSample{}, err
	}

	for _, sink := range b.sinks {
		if err := sink.WriteLocation(ctx, sample); err != nil {
			observability.LocationSinkErrors.WithLabelValues(sink.Name()).Inc()
			b.logger.Warn("location sink write failed", "sink", sink.Name(), "user_id", userID, "error", err)
		}
	}

	b.Publish(userID, sample)
	return sample, nil
}

// Publish sends the sample to the user's own room and to every customer holding
// an active booking with them as driver.
func (b *LocationBroadcaster) Publish(userID string, sample models.LocationSample) {
	b.hub.Publish(UserRoom(userID), EventLocationUpdate, LocationUpdate{DriverID: userID, Location: sample})

	for _, booking := range b.store.ActiveBookingsForDriver(userID) {
		b.hub.Publish(UserRoom(booking.CustomerID), EventLocationUpdate, LocationUpdate{
			DriverID:  userID,
			Location:  sample,
			BookingID: booking.ID,
		})
	}
}
