package models

import "time"

type RouteStatus string

const (
	RouteStatusActive    RouteStatus = "active"
	RouteStatusCancelled RouteStatus = "cancelled"
	RouteStatusCompleted RouteStatus = "completed"
)

func (s RouteStatus) Valid() bool {
	switch s {
	case RouteStatusActive, RouteStatusCancelled, RouteStatusCompleted:
		return true
	}
	return false
}

// Stop is a named waypoint on a route. Coordinates are optional.
type Stop struct {
	ID            string   `json:"id"`
	RouteID       string   `json:"routeId"`
	Name          string   `json:"name"`
	EstimatedTime string   `json:"estimatedTime"`
	Order         int      `json:"order"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

// Route is a driver's published trip.
type Route struct {
	ID             string      `json:"id"`
	DriverID       string      `json:"driverId"`
	DriverName     string      `json:"driverName"`
	DriverAvatar   string      `json:"driverAvatar,omitempty"`
	DriverRating   float64     `json:"driverRating"`
	RouteName      string      `json:"routeName"`
	Origin         string      `json:"origin"`
	Destination    string      `json:"destination"`
	DepartureDate  string      `json:"departureDate"`
	DepartureTime  string      `json:"departureTime"`
	Stops          []Stop      `json:"stops"`
	TotalSeats     int         `json:"totalSeats"`
	AvailableSeats int         `json:"availableSeats"`
	Price          float64     `json:"price"`
	Notes          string      `json:"notes,omitempty"`
	Status         RouteStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy so callers never share the store's stop slice.
func (r Route) Clone() Route {
	stops := make([]Stop, len(r.Stops))
	copy(stops, r.Stops)
	r.Stops = stops
	return r
}

// StopInput describes a stop when creating a route.
type StopInput struct {
	Name          string   `json:"name" binding:"required"`
	EstimatedTime string   `json:"estimatedTime"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
}

type NewRoute struct {
	DriverID      string      `json:"-"`
	RouteName     string      `json:"routeName" binding:"required"`
	Origin        string      `json:"origin" binding:"required"`
	Destination   string      `json:"destination" binding:"required"`
	DepartureDate string      `json:"departureDate" binding:"required"`
	DepartureTime string      `json:"departureTime" binding:"required"`
	Stops         []StopInput `json:"stops"`
	TotalSeats    int         `json:"totalSeats" binding:"required,min=1,max=8"`
	Price         float64     `json:"price" binding:"min=0"`
	Notes         string      `json:"notes"`
}

// RoutePatch is a general route update. availableSeats is not patchable.
type RoutePatch struct {
	RouteName     *string      `json:"routeName"`
	Origin        *string      `json:"origin"`
	Destination   *string      `json:"destination"`
	DepartureDate *string      `json:"departureDate"`
	DepartureTime *string      `json:"departureTime"`
	TotalSeats    *int         `json:"totalSeats"`
	Price         *float64     `json:"price"`
	Notes         *string      `json:"notes"`
	Status        *RouteStatus `json:"status"`
}

type RouteFilter struct {
	Origin      string
	Destination string
	Date        string
	MinSeats    int
	MaxPrice    float64
	DriverID    string
}
