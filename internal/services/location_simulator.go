package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/observability"
	"github.com/chachabrian/ridelink-backend/internal/store"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

// maxStepDegrees bounds how far a driver drifts per tick on each axis.
const maxStepDegrees = 0.0005

type simulation struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// LocationSimulator moves connected drivers around. At most one simulation runs
// per driver.
type LocationSimulator struct {
	store       *store.Store
	broadcaster *LocationBroadcaster
	interval    time.Duration
	random      func() float64
	logger      *slog.Logger

	mu      sync.Mutex
	running map[string]*simulation
}

func NewLocationSimulator(st *store.Store, broadcaster *LocationBroadcaster, interval time.Duration, logger *slog.Logger) *LocationSimulator {
	return &LocationSimulator{
		store:       st,
		broadcaster: broadcaster,
		interval:    interval,
		random:      rand.Float64,
		logger:      logger.With("component", "location_simulator"),
		running:     make(map[string]*simulation),
	}
}

// Start launches the driver's simulation. It reports false when one is already running.
func (s *LocationSimulator) Start(driverID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.running[driverID]; ok {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	sim := &simulation{cancel: cancel, done: make(chan struct{})}
	s.running[driverID] = sim
	observability.ActiveLocationSimulators.Inc()

	go s.run(ctx, driverID, sim.done)
	s.logger.Info("location simulation started", "driver_id", driverID)
	return true
}

// Stop cancels the driver's simulation and waits for its goroutine to exit, so
// no tick for the driver runs after Stop returns.
func (s *LocationSimulator) Stop(driverID string) bool {
	s.mu.Lock()
	sim, ok := s.running[driverID]
	delete(s.running, driverID)
	s.mu.Unlock()
	if !ok {
		return false
	}

	sim.cancel()
	<-sim.done
	observability.ActiveLocationSimulators.Dec()
	s.logger.Info("location simulation stopped", "driver_id", driverID)
	return true
}

func (s *LocationSimulator) Active(driverID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[driverID]
	return ok
}

func (s *LocationSimulator) StopAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.running))
	for id := range s.running {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Stop(id)
	}
}

func (s *LocationSimulator) run(ctx context.Context, driverID string, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if err := s.step(ctx, driverID); err != nil {
				observability.SimulatorTicks.WithLabelValues("location", "error").Inc()
				s.logger.Warn("location tick failed", "driver_id", driverID, "error", err)
				continue
			}
			observability.SimulatorTicks.WithLabelValues("location", "ok").Inc()
		}
	}
}

// step perturbs the driver's last known position. Drivers that never reported a
// position are left alone.
func (s *LocationSimulator) step(ctx context.Context, driverID string) error {
	current, err := s.store.GetLocation(driverID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	speed := math.Floor(s.random()*60 + 10)
	heading := math.Floor(s.random() * 360)
	next := models.LocationInput{
		Latitude:  utils.Clamp(current.Latitude+(s.random()-0.5)*2*maxStepDegrees, -90, 90),
		Longitude: utils.Clamp(current.Longitude+(s.random()-0.5)*2*maxStepDegrees, -180, 180),
		Accuracy:  math.Floor(s.random()*20 + 10),
		Speed:     &speed,
		Heading:   &heading,
	}

	_, err = s.broadcaster.Update(ctx, driverID, next)
	return err
}
