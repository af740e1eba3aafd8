package models

import "time"

// LocationSample is one recorded position of a user.
type LocationSample struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy"`
	Speed     *float64  `json:"speed,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationInput is a position reported by a client or produced by the simulator.
// The store stamps the id and timestamp.
type LocationInput struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Speed     *float64 `json:"speed,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
}

// Validate checks coordinate ranges and a non-negative accuracy.
func (l LocationInput) Validate() bool {
	if l.Latitude < -90 || l.Latitude > 90 {
		return false
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return false
	}
	return l.Accuracy >= 0
}

// NearbyDriver is a driver whose last known sample lies within a search radius.
type NearbyDriver struct {
	DriverID   string         `json:"driverId"`
	DriverName string         `json:"driverName"`
	Rating     float64        `json:"rating"`
	DistanceKm float64        `json:"distanceKm"`
	EtaMinutes int            `json:"etaMinutes"`
	Location   LocationSample `json:"location"`
}
