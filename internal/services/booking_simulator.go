package services

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/observability"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

// BookingSimulator plays the driver for pending bookings: each sweep it sets
// driverConfirmed on a random subset and lets the store derive the status.
type BookingSimulator struct {
	store       *store.Store
	notifier    *Notifier
	interval    time.Duration
	probability float64
	random      func() float64
	logger      *slog.Logger
}

func NewBookingSimulator(st *store.Store, notifier *Notifier, interval time.Duration, probability float64, logger *slog.Logger) *BookingSimulator {
	return &BookingSimulator{
		store:       st,
		notifier:    notifier,
		interval:    interval,
		probability: probability,
		random:      rand.Float64,
		logger:      logger.With("component", "booking_simulator"),
	}
}

// Run sweeps on every interval until ctx is cancelled.
func (s *BookingSimulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("booking simulation started", "interval", s.interval, "probability", s.probability)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep makes one pass over pending bookings and returns how many it confirmed
// on the driver's behalf.
func (s *BookingSimulator) Sweep() int {
	pending := models.BookingStatusPending
	confirmed := true
	flipped := 0

	for _, b := range s.store.ListBookings(models.BookingFilter{Status: models.BookingStatusPending}) {
		if b.DriverConfirmed || s.random() >= s.probability {
			continue
		}
		updated, err := s.store.UpdateBooking(b.ID, models.BookingPatch{DriverConfirmed: &confirmed, IfStatus: &pending})
		if err != nil {
			// Cancelled or deleted since the listing.
			s.logger.Debug("skip booking", "booking_id", b.ID, "error", err)
			continue
		}
		flipped++
		observability.BookingsAutoConfirmed.Inc()
		s.notifier.BookingStatusChanged(updated)
		s.logger.Info("booking confirmed by driver", "booking_id", updated.ID, "status", updated.Status)
	}

	observability.SimulatorTicks.WithLabelValues("booking", "ok").Inc()
	return flipped
}
