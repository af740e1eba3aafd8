package store

import (
	"fmt"
	"sort"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

// DefaultHistoryLimit is used when a caller asks for history without a limit.
const DefaultHistoryLimit = 50

// UpdateLocation stamps the sample with server time, makes it the user's current
// position and appends it to the bounded history.
func (s *Store) UpdateLocation(userID string, in models.LocationInput) (models.LocationSample, error) {
	if !in.Validate() {
		return models.LocationSample{}, fmt.Errorf("%w: location out of range", ErrInvalidInput)
	}

	s.usersMu.RLock()
	_, known := s.users[userID]
	s.usersMu.RUnlock()
	if !known {
		return models.LocationSample{}, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}

	sample := models.LocationSample{
		ID:        s.newID(),
		UserID:    userID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Accuracy:  in.Accuracy,
		Speed:     in.Speed,
		Heading:   in.Heading,
		Timestamp: s.now(),
	}

	s.locationsMu.Lock()
	defer s.locationsMu.Unlock()

	s.current[userID] = sample
	h, ok := s.history[userID]
	if !ok {
		h = newRing[models.LocationSample](HistoryCapacity)
		s.history[userID] = h
	}
	h.push(sample)
	return sample, nil
}

func (s *Store) GetLocation(userID string) (models.LocationSample, error) {
	s.locationsMu.RLock()
	defer s.locationsMu.RUnlock()

	sample, ok := s.current[userID]
	if !ok {
		return models.LocationSample{}, fmt.Errorf("location of user %s: %w", userID, ErrNotFound)
	}
	return sample, nil
}

// LocationHistory returns up to limit of the newest samples, oldest first.
func (s *Store) LocationHistory(userID string, limit int) []models.LocationSample {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > HistoryCapacity {
		limit = HistoryCapacity
	}

	s.locationsMu.RLock()
	defer s.locationsMu.RUnlock()

	h, ok := s.history[userID]
	if !ok {
		return []models.LocationSample{}
	}
	return h.last(limit)
}

// ClearLocationHistory drops the history but keeps the current position.
func (s *Store) ClearLocationHistory(userID string) {
	s.locationsMu.Lock()
	defer s.locationsMu.Unlock()

	delete(s.history, userID)
}

// NearbyDrivers lists drivers whose current position lies within radiusKm, nearest
// first. The ETA uses the driver's last reported speed in km/h.
func (s *Store) NearbyDrivers(lat, lng, radiusKm float64, limit int) []models.NearbyDriver {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	s.locationsMu.RLock()
	defer s.locationsMu.RUnlock()

	bbox := utils.GetBoundingBox(lat, lng, radiusKm)
	var out []models.NearbyDriver
	for userID, sample := range s.current {
		user, ok := s.users[userID]
		if !ok || user.Role != models.RoleDriver {
			continue
		}
		if !utils.IsPointInBoundingBox(utils.Point{Lat: sample.Latitude, Lng: sample.Longitude}, bbox) {
			continue
		}
		distance := utils.HaversineDistance(lat, lng, sample.Latitude, sample.Longitude)
		if distance > radiusKm {
			continue
		}
		var speed float64
		if sample.Speed != nil {
			speed = *sample.Speed
		}
		out = append(out, models.NearbyDriver{
			DriverID:   user.ID,
			DriverName: user.DisplayName(),
			Rating:     user.Profile.Rating,
			DistanceKm: distance,
			EtaMinutes: utils.CalculateETA(distance, speed),
			Location:   sample,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
