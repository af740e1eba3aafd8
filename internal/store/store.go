// Package store is the authoritative in-memory entity store. Every mutation runs
// inside the critical sections of the collections it touches and re-checks the
// cross-entity invariants (seat accounting, booking state machine, conversation
// read state) before committing.
//
// Collections are guarded by their own mutex. Operations that touch several
// collections acquire them in a fixed order to stay deadlock free:
//
//	users -> routes -> bookings -> conversations -> locations
//
// All reads return copies; nothing handed out aliases store memory.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chachabrian/ridelink-backend/internal/models"
)

// HistoryCapacity bounds the per-user location history.
const HistoryCapacity = 100

type Store struct {
	usersMu   sync.RWMutex
	users     map[string]*models.User
	usernames map[string]string

	routesMu sync.RWMutex
	routes   map[string]*models.Route

	bookingsMu sync.RWMutex
	bookings   map[string]*models.Booking

	conversationsMu sync.RWMutex
	conversations   map[string]*models.Conversation
	byBooking       map[string]string

	locationsMu sync.RWMutex
	current     map[string]models.LocationSample
	history     map[string]*ring[models.LocationSample]

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how record ids are produced.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func New(opts ...Option) *Store {
	s := &Store{
		users:         make(map[string]*models.User),
		usernames:     make(map[string]string),
		routes:        make(map[string]*models.Route),
		bookings:      make(map[string]*models.Booking),
		conversations: make(map[string]*models.Conversation),
		byBooking:     make(map[string]string),
		current:       make(map[string]models.LocationSample),
		history:       make(map[string]*ring[models.LocationSample]),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
