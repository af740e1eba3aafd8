package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chachabrian/ridelink-backend/internal/middleware"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/services"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

// CreateBooking reserves seats for the calling customer.
func CreateBooking(st *store.Store, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBooking
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		input.CustomerID = c.GetString(middleware.UserIDKey)

		booking, err := st.CreateBooking(input)
		if err != nil {
			respondError(c, err)
			return
		}

		notifier.Notify(booking.DriverID, "booking", "New booking request",
			booking.CustomerName+" requested "+pluralSeats(booking.Seats)+" from "+booking.Origin+" to "+booking.Destination,
			gin.H{"bookingId": booking.ID})
		notifyRoute(st, notifier, booking.RouteID)
		c.JSON(201, booking)
	}
}

func pluralSeats(n int) string {
	if n == 1 {
		return "1 seat"
	}
	return strconv.Itoa(n) + " seats"
}

// ListBookings returns the caller's bookings, optionally narrowed by status and
// by role=driver|customer.
func ListBookings(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.UserIDKey)
		filter := models.BookingFilter{UserID: userID, Status: models.BookingStatus(c.Query("status"))}
		switch c.Query("role") {
		case string(models.RoleDriver):
			filter.DriverID = userID
		case string(models.RoleCustomer):
			filter.CustomerID = userID
		}
		c.JSON(200, st.ListBookings(filter))
	}
}

// participantBooking loads the booking and checks the caller is on it.
func participantBooking(c *gin.Context, st *store.Store) (models.Booking, bool) {
	booking, err := st.GetBooking(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return models.Booking{}, false
	}
	if !booking.Participant(c.GetString(middleware.UserIDKey)) {
		forbidden(c, "Not authorized to access this booking")
		return models.Booking{}, false
	}
	return booking, true
}

func GetBooking(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, ok := participantBooking(c, st)
		if !ok {
			return
		}
		c.JSON(200, booking)
	}
}

// ConfirmBooking sets the caller's confirmation flag on a pending booking. The
// store promotes it to confirmed once both sides agreed.
func ConfirmBooking(st *store.Store, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, ok := participantBooking(c, st)
		if !ok {
			return
		}

		yes := true
		pending := models.BookingStatusPending
		patch := models.BookingPatch{IfStatus: &pending}
		if booking.DriverID == c.GetString(middleware.UserIDKey) {
			patch.DriverConfirmed = &yes
		} else {
			patch.CustomerConfirmed = &yes
		}
		applyBookingPatch(c, st, notifier, booking, patch)
	}
}

// RejectBooking lets the driver turn down a pending request.
func RejectBooking(st *store.Store, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, ok := participantBooking(c, st)
		if !ok {
			return
		}
		if booking.DriverID != c.GetString(middleware.UserIDKey) {
			forbidden(c, "Only drivers can reject bookings")
			return
		}

		cancelled := models.BookingStatusCancelled
		pending := models.BookingStatusPending
		applyBookingPatch(c, st, notifier, booking, models.BookingPatch{Status: &cancelled, IfStatus: &pending})
	}
}

func CancelBooking(st *store.Store, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, ok := participantBooking(c, st)
		if !ok {
			return
		}
		cancelled := models.BookingStatusCancelled
		applyBookingPatch(c, st, notifier, booking, models.BookingPatch{Status: &cancelled})
	}
}

// CompleteBooking lets the driver close out a confirmed trip.
func CompleteBooking(st *store.Store, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, ok := participantBooking(c, st)
		if !ok {
			return
		}
		if booking.DriverID != c.GetString(middleware.UserIDKey) {
			forbidden(c, "Only drivers can mark bookings as completed")
			return
		}
		completed := models.BookingStatusCompleted
		applyBookingPatch(c, st, notifier, booking, models.BookingPatch{Status: &completed})
	}
}

func applyBookingPatch(c *gin.Context, st *store.Store, notifier *services.Notifier, booking models.Booking, patch models.BookingPatch) {
	updated, err := st.UpdateBooking(booking.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	notifier.BookingStatusChanged(updated)
	if updated.Status != booking.Status && updated.Status == models.BookingStatusCancelled {
		notifyRoute(st, notifier, updated.RouteID)
	}
	c.JSON(200, updated)
}

func DeleteBooking(st *store.Store, notifier *services.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		booking, ok := participantBooking(c, st)
		if !ok {
			return
		}
		if err := st.DeleteBooking(booking.ID); err != nil {
			respondError(c, err)
			return
		}
		notifyRoute(st, notifier, booking.RouteID)
		c.JSON(200, gin.H{"message": "Booking deleted successfully"})
	}
}

// notifyRoute publishes the route's seat count after a booking changed it. The
// route may already be gone.
func notifyRoute(st *store.Store, notifier *services.Notifier, routeID string) {
	route, err := st.GetRoute(routeID)
	if err != nil {
		return
	}
	notifier.RouteUpdated(route)
}
