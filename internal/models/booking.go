package models

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
}

// CanTransition reports whether the booking state machine allows from -> to.
func (from BookingStatus) CanTransition(to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Active bookings still hold seats and still care about the driver's position.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

type Booking struct {
	ID                string        `json:"id"`
	RouteID           string        `json:"routeId"`
	CustomerID        string        `json:"customerId"`
	CustomerName      string        `json:"customerName"`
	CustomerAvatar    string        `json:"customerAvatar,omitempty"`
	DriverID          string        `json:"driverId"`
	DriverName        string        `json:"driverName"`
	DriverAvatar      string        `json:"driverAvatar,omitempty"`
	Origin            string        `json:"origin"`
	Destination       string        `json:"destination"`
	Date              string        `json:"date"`
	Time              string        `json:"time"`
	Seats             int           `json:"seats"`
	PricePerSeat      float64       `json:"pricePerSeat"`
	TotalPrice        float64       `json:"totalPrice"`
	Status            BookingStatus `json:"status"`
	DriverConfirmed   bool          `json:"driverConfirmed"`
	CustomerConfirmed bool          `json:"customerConfirmed"`
	Notes             string        `json:"notes,omitempty"`
	// SeatsReleased is set once the held seats went back to the route.
	SeatsReleased bool      `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Participant reports whether userID is the booking's driver or customer.
func (b Booking) Participant(userID string) bool {
	return b.DriverID == userID || b.CustomerID == userID
}

type NewBooking struct {
	RouteID    string `json:"routeId" binding:"required"`
	CustomerID string `json:"-"`
	Seats      int    `json:"seats" binding:"required,min=1,max=8"`
	Notes      string `json:"notes"`
}

// BookingPatch is merged into a booking by the store. IfStatus, when set, makes the
// update conditional on the booking still being in that status.
type BookingPatch struct {
	Status            *BookingStatus `json:"status"`
	DriverConfirmed   *bool          `json:"driverConfirmed"`
	CustomerConfirmed *bool          `json:"customerConfirmed"`
	Notes             *string        `json:"notes"`
	IfStatus          *BookingStatus `json:"-"`
}

type BookingFilter struct {
	UserID     string
	RouteID    string
	DriverID   string
	CustomerID string
	Status     BookingStatus
}
