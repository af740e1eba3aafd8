package store

import (
	"fmt"
	"sort"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// CreateBooking reserves seats on a route for a customer. The seat check and the
// decrement happen inside one routes+bookings critical section, so concurrent
// requests against the same route can never overbook it. New bookings start
// pending, confirmed by the customer and awaiting the driver.
func (s *Store) CreateBooking(in models.NewBooking) (models.Booking, error) {
	if in.Seats < 1 {
		return models.Booking{}, fmt.Errorf("%w: seats must be at least 1", ErrInvalidInput)
	}

	customer, err := s.GetUser(in.CustomerID)
	if err != nil {
		return models.Booking{}, err
	}
	if customer.Role != models.RoleCustomer {
		return models.Booking{}, fmt.Errorf("%w: user %s is not a customer", ErrUnauthorized, customer.ID)
	}

	s.routesMu.Lock()
	defer s.routesMu.Unlock()
	s.bookingsMu.Lock()
	defer s.bookingsMu.Unlock()

	route, ok := s.routes[in.RouteID]
	if !ok {
		return models.Booking{}, fmt.Errorf("route %s: %w", in.RouteID, ErrNotFound)
	}
	if route.Status != models.RouteStatusActive {
		return models.Booking{}, fmt.Errorf("%w: route %s is %s", ErrInvalidTransition, route.ID, route.Status)
	}
	for _, b := range s.bookings {
		if b.RouteID == route.ID && b.CustomerID == customer.ID && b.Status.Active() {
			return models.Booking{}, fmt.Errorf("%w: customer %s already has booking %s on route %s", ErrConflict, customer.ID, b.ID, route.ID)
		}
	}
	if in.Seats > route.AvailableSeats {
		return models.Booking{}, fmt.Errorf("%w: requested %d seats, %d available on route %s",
			ErrInsufficientCapacity, in.Seats, route.AvailableSeats, route.ID)
	}

	now := s.now()
	booking := models.Booking{
		ID:                s.newID(),
		RouteID:           route.ID,
		CustomerID:        customer.ID,
		CustomerName:      customer.DisplayName(),
		CustomerAvatar:    customer.Profile.Avatar,
		DriverID:          route.DriverID,
		DriverName:        route.DriverName,
		DriverAvatar:      route.DriverAvatar,
		Origin:            route.Origin,
		Destination:       route.Destination,
		Date:              route.DepartureDate,
		Time:              route.DepartureTime,
		Seats:             in.Seats,
		PricePerSeat:      route.Price,
		TotalPrice:        route.Price * float64(in.Seats),
		Status:            models.BookingStatusPending,
		DriverConfirmed:   false,
		CustomerConfirmed: true,
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	route.AvailableSeats -= in.Seats
	route.UpdatedAt = now
	s.bookings[booking.ID] = &booking
	return booking, nil
}

func (s *Store) GetBooking(id string) (models.Booking, error) {
	s.bookingsMu.RLock()
	defer s.bookingsMu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	return *b, nil
}

// ListBookings returns bookings matching every non-zero filter field, newest first.
// UserID matches either side of the booking.
func (s *Store) ListBookings(filter models.BookingFilter) []models.Booking {
	s.bookingsMu.RLock()
	defer s.bookingsMu.RUnlock()

	out := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if filter.UserID != "" && !b.Participant(filter.UserID) {
			continue
		}
		if filter.RouteID != "" && b.RouteID != filter.RouteID {
			continue
		}
		if filter.DriverID != "" && b.DriverID != filter.DriverID {
			continue
		}
		if filter.CustomerID != "" && b.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ActiveBookingsForDriver lists the pending or confirmed bookings on a driver's routes.
func (s *Store) ActiveBookingsForDriver(driverID string) []models.Booking {
	s.bookingsMu.RLock()
	defer s.bookingsMu.RUnlock()

	var out []models.Booking
	for _, b := range s.bookings {
		if b.DriverID == driverID && b.Status.Active() {
			out = append(out, *b)
		}
	}
	return out
}

// UpdateBooking merges patch into the booking and applies the state machine:
//
//   - an explicit status must be a legal transition (same status is a no-op);
//   - a pending booking with both confirmation flags set becomes confirmed;
//   - flags cannot be cleared once the booking left pending;
//   - entering cancelled returns the held seats to the route exactly once.
func (s *Store) UpdateBooking(id string, patch models.BookingPatch) (models.Booking, error) {
	s.routesMu.Lock()
	defer s.routesMu.Unlock()
	s.bookingsMu.Lock()
	defer s.bookingsMu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	if patch.IfStatus != nil && b.Status != *patch.IfStatus {
		return models.Booking{}, fmt.Errorf("%w: booking %s is %s, expected %s", ErrInvalidTransition, id, b.Status, *patch.IfStatus)
	}

	prior := b.Status
	next := *b

	if patch.DriverConfirmed != nil {
		next.DriverConfirmed = *patch.DriverConfirmed
	}
	if patch.CustomerConfirmed != nil {
		next.CustomerConfirmed = *patch.CustomerConfirmed
	}
	if patch.Notes != nil {
		next.Notes = *patch.Notes
	}
	if prior != models.BookingStatusPending &&
		((b.DriverConfirmed && !next.DriverConfirmed) || (b.CustomerConfirmed && !next.CustomerConfirmed)) {
		return models.Booking{}, fmt.Errorf("%w: cannot withdraw confirmation of %s booking %s", ErrInvalidTransition, prior, id)
	}

	if patch.Status != nil && *patch.Status != prior {
		target := *patch.Status
		if !prior.CanTransition(target) {
			return models.Booking{}, fmt.Errorf("%w: booking %s cannot move from %s to %s", ErrInvalidTransition, id, prior, target)
		}
		if target == models.BookingStatusConfirmed && !(next.DriverConfirmed && next.CustomerConfirmed) {
			return models.Booking{}, fmt.Errorf("%w: booking %s needs both parties to confirm", ErrInvalidTransition, id)
		}
		next.Status = target
	}

	if prior == models.BookingStatusPending && next.Status == models.BookingStatusPending &&
		next.DriverConfirmed && next.CustomerConfirmed {
		next.Status = models.BookingStatusConfirmed
	}

	next.UpdatedAt = s.now()
	*b = next
	if b.Status == models.BookingStatusCancelled && prior != models.BookingStatusCancelled {
		s.releaseSeatsLocked(b)
	}
	return *b, nil
}

// DeleteBooking returns the booking's seats to its route (unless a cancellation
// already did) and removes the record. A second call fails with ErrNotFound.
func (s *Store) DeleteBooking(id string) error {
	s.routesMu.Lock()
	defer s.routesMu.Unlock()
	s.bookingsMu.Lock()
	defer s.bookingsMu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	s.releaseSeatsLocked(b)
	delete(s.bookings, id)
	return nil
}
