package utils

import "math"

const earthRadiusKm = 6371

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is the lat/lng rectangle used to prefilter radius searches.
type BoundingBox struct {
	NorthEast Point `json:"northEast"`
	SouthWest Point `json:"southWest"`
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// HaversineDistance returns the great-circle distance in kilometers.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dlat := radians(lat2 - lat1)
	dlng := radians(lng2 - lng1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dlng/2)*math.Sin(dlng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// GetBoundingBox returns a box that contains every point within radiusKm of the center.
func GetBoundingBox(centerLat, centerLng, radiusKm float64) BoundingBox {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	dLng := dLat / math.Cos(radians(centerLat))

	return BoundingBox{
		NorthEast: Point{Lat: centerLat + dLat, Lng: centerLng + dLng},
		SouthWest: Point{Lat: centerLat - dLat, Lng: centerLng - dLng},
	}
}

func IsPointInBoundingBox(p Point, bbox BoundingBox) bool {
	return p.Lat >= bbox.SouthWest.Lat && p.Lat <= bbox.NorthEast.Lat &&
		p.Lng >= bbox.SouthWest.Lng && p.Lng <= bbox.NorthEast.Lng
}

// CalculateETA converts a distance into whole minutes at the given speed, never less than one.
// A non-positive speed falls back to 30 km/h city traffic.
func CalculateETA(distanceKm, speedKmh float64) int {
	if speedKmh <= 0 {
		speedKmh = 30
	}
	minutes := int(distanceKm / speedKmh * 60)
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
