package store

import "github.com/chachabrian/ridelink-backend/internal/models"

func (s *Store) DriverStats(driverID string) (models.DriverStats, error) {
	driver, err := s.GetUser(driverID)
	if err != nil {
		return models.DriverStats{}, err
	}

	stats := models.DriverStats{
		Rating:       driver.Profile.Rating,
		TotalReviews: driver.Profile.TotalTrips,
	}

	s.routesMu.RLock()
	for _, r := range s.routes {
		if r.DriverID == driverID && r.Status == models.RouteStatusActive {
			stats.ActiveRoutes++
		}
	}
	s.routesMu.RUnlock()

	s.bookingsMu.RLock()
	defer s.bookingsMu.RUnlock()
	for _, b := range s.bookings {
		if b.DriverID != driverID {
			continue
		}
		stats.TotalBookings++
		switch b.Status {
		case models.BookingStatusPending:
			stats.PendingBookings++
		case models.BookingStatusCompleted:
			stats.CompletedTrips++
			stats.Earnings += b.TotalPrice
		}
	}
	return stats, nil
}

func (s *Store) CustomerStats(customerID string) (models.CustomerStats, error) {
	if _, err := s.GetUser(customerID); err != nil {
		return models.CustomerStats{}, err
	}

	s.bookingsMu.RLock()
	defer s.bookingsMu.RUnlock()

	var stats models.CustomerStats
	for _, b := range s.bookings {
		if b.CustomerID != customerID {
			continue
		}
		stats.TotalBookings++
		if b.Status == models.BookingStatusCompleted {
			stats.CompletedTrips++
			stats.TotalSpent += b.TotalPrice
		}
	}
	return stats, nil
}
