package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// CreateRoute publishes a route for a driver. All seats start available.
func (s *Store) CreateRoute(in models.NewRoute) (models.Route, error) {
	if in.TotalSeats < 1 {
		return models.Route{}, fmt.Errorf("%w: totalSeats must be at least 1", ErrInvalidInput)
	}
	if in.Price < 0 {
		return models.Route{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	driver, err := s.GetUser(in.DriverID)
	if err != nil {
		return models.Route{}, err
	}
	if driver.Role != models.RoleDriver {
		return models.Route{}, fmt.Errorf("%w: user %s is not a driver", ErrUnauthorized, driver.ID)
	}

	now := s.now()
	route := models.Route{
		ID:             s.newID(),
		DriverID:       driver.ID,
		DriverName:     driver.DisplayName(),
		DriverAvatar:   driver.Profile.Avatar,
		DriverRating:   driver.Profile.Rating,
		RouteName:      in.RouteName,
		Origin:         in.Origin,
		Destination:    in.Destination,
		DepartureDate:  in.DepartureDate,
		DepartureTime:  in.DepartureTime,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		Price:          in.Price,
		Notes:          in.Notes,
		Status:         models.RouteStatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	route.Stops = make([]models.Stop, 0, len(in.Stops))
	for i, stop := range in.Stops {
		route.Stops = append(route.Stops, models.Stop{
			ID:            s.newID(),
			RouteID:       route.ID,
			Name:          stop.Name,
			EstimatedTime: stop.EstimatedTime,
			Order:         i,
			Latitude:      stop.Latitude,
			Longitude:     stop.Longitude,
		})
	}

	s.routesMu.Lock()
	defer s.routesMu.Unlock()

	s.routes[route.ID] = &route
	return route.Clone(), nil
}

func (s *Store) GetRoute(id string) (models.Route, error) {
	s.routesMu.RLock()
	defer s.routesMu.RUnlock()

	route, ok := s.routes[id]
	if !ok {
		return models.Route{}, fmt.Errorf("route %s: %w", id, ErrNotFound)
	}
	return route.Clone(), nil
}

// ListRoutes returns routes matching every non-zero filter field, newest first.
func (s *Store) ListRoutes(filter models.RouteFilter) []models.Route {
	s.routesMu.RLock()
	defer s.routesMu.RUnlock()

	out := make([]models.Route, 0)
	for _, r := range s.routes {
		if !routeMatches(r, filter) {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func routeMatches(r *models.Route, f models.RouteFilter) bool {
	if f.Origin != "" && !strings.Contains(strings.ToLower(r.Origin), strings.ToLower(f.Origin)) {
		return false
	}
	if f.Destination != "" && !strings.Contains(strings.ToLower(r.Destination), strings.ToLower(f.Destination)) {
		return false
	}
	if f.Date != "" && r.DepartureDate != f.Date {
		return false
	}
	if f.MinSeats > 0 && r.AvailableSeats < f.MinSeats {
		return false
	}
	if f.MaxPrice > 0 && r.Price > f.MaxPrice {
		return false
	}
	if f.DriverID != "" && r.DriverID != f.DriverID {
		return false
	}
	return true
}

// UpdateRoute merges general route fields. availableSeats is never written from the
// patch; a totalSeats change shifts it by the same delta and is rejected when the
// seats already held by bookings would no longer fit.
func (s *Store) UpdateRoute(id string, patch models.RoutePatch) (models.Route, error) {
	s.routesMu.Lock()
	defer s.routesMu.Unlock()

	route, ok := s.routes[id]
	if !ok {
		return models.Route{}, fmt.Errorf("route %s: %w", id, ErrNotFound)
	}

	next := route.Clone()
	if patch.RouteName != nil {
		next.RouteName = *patch.RouteName
	}
	if patch.Origin != nil {
		next.Origin = *patch.Origin
	}
	if patch.Destination != nil {
		next.Destination = *patch.Destination
	}
	if patch.DepartureDate != nil {
		next.DepartureDate = *patch.DepartureDate
	}
	if patch.DepartureTime != nil {
		next.DepartureTime = *patch.DepartureTime
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return models.Route{}, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
		}
		next.Price = *patch.Price
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return models.Route{}, fmt.Errorf("%w: unknown route status %q", ErrInvalidInput, *patch.Status)
		}
		next.Status = *patch.Status
	}
	if patch.TotalSeats != nil {
		total := *patch.TotalSeats
		if total < 1 {
			return models.Route{}, fmt.Errorf("%w: totalSeats must be at least 1", ErrInvalidInput)
		}
		held := route.TotalSeats - route.AvailableSeats
		if total < held {
			return models.Route{}, fmt.Errorf("%w: %d seats are already booked on route %s", ErrInsufficientCapacity, held, id)
		}
		next.TotalSeats = total
		next.AvailableSeats = total - held
	}
	next.UpdatedAt = s.now()

	*route = next
	return route.Clone(), nil
}

// DeleteRoute removes the route record. Routes with pending or confirmed bookings
// cannot be deleted; settled bookings keep their denormalized snapshot.
func (s *Store) DeleteRoute(id string) error {
	s.routesMu.Lock()
	defer s.routesMu.Unlock()
	s.bookingsMu.RLock()
	defer s.bookingsMu.RUnlock()

	if _, ok := s.routes[id]; !ok {
		return fmt.Errorf("route %s: %w", id, ErrNotFound)
	}
	for _, b := range s.bookings {
		if b.RouteID == id && b.Status.Active() {
			return fmt.Errorf("%w: route %s has active bookings", ErrConflict, id)
		}
	}
	delete(s.routes, id)
	return nil
}

// releaseSeatsLocked credits a booking's seats back to its route exactly once.
// Callers hold routesMu and bookingsMu for writing.
func (s *Store) releaseSeatsLocked(b *models.Booking) {
	if b.SeatsReleased {
		return
	}
	b.SeatsReleased = true
	route, ok := s.routes[b.RouteID]
	if !ok {
		return
	}
	route.AvailableSeats += b.Seats
	if route.AvailableSeats > route.TotalSeats {
		route.AvailableSeats = route.TotalSeats
	}
	route.UpdatedAt = s.now()
}
