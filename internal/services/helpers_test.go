package services

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridelink-backend/internal/logging"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/store"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

type frame struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	Room      string          `json:"room"`
	ClientID  string          `json:"clientId"`
	UserID    string          `json:"userId"`
	Timestamp int64           `json:"timestamp"`
}

// recordingSink keeps every frame it accepts. A closed sink drops frames like a
// dead connection would.
type recordingSink struct {
	mu     sync.Mutex
	frames []frame
	closed bool
}

func (r *recordingSink) Deliver(raw []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		panic(err)
	}
	r.frames = append(r.frames, f)
	return true
}

func (r *recordingSink) close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}

func (r *recordingSink) ofType(eventType string) []frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []frame
	for _, f := range r.frames {
		if f.Type == eventType {
			out = append(out, f)
		}
	}
	return out
}

func (r *recordingSink) last(t *testing.T) frame {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.frames)
	return r.frames[len(r.frames)-1]
}

func decodeData[T any](t *testing.T, f frame) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(f.Data, &v))
	return v
}

type testEnv struct {
	store      *store.Store
	hub        *Hub
	notifier   *Notifier
	locations  *LocationBroadcaster
	simulators *LocationSimulator
	gateway    *Gateway
	jwt        *utils.JWTManager
	driver     models.User
	customer   models.User
	route      models.Route
}

func newTestEnv(t *testing.T, tick time.Duration) *testEnv {
	t.Helper()
	logger := logging.Discard()

	st := store.New()
	hub := NewHub(logger)
	notifier := NewNotifier(hub, st)
	locations := NewLocationBroadcaster(st, hub, logger)
	simulators := NewLocationSimulator(st, locations, tick, logger)
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	gateway := NewGateway(st, hub, locations, simulators, notifier, jwt, logger)
	t.Cleanup(simulators.StopAll)

	driver, err := st.CreateUser("driver1", "secret1", models.RoleDriver, models.Profile{FirstName: "Dana", LastName: "Driver"})
	require.NoError(t, err)
	customer, err := st.CreateUser("customer1", "secret1", models.RoleCustomer, models.Profile{FirstName: "Cole"})
	require.NoError(t, err)
	route, err := st.CreateRoute(models.NewRoute{
		DriverID:      driver.ID,
		Origin:        "Westlands",
		Destination:   "CBD",
		DepartureDate: "2026-10-20",
		DepartureTime: "07:30",
		TotalSeats:    4,
		Price:         250,
	})
	require.NoError(t, err)

	return &testEnv{
		store:      st,
		hub:        hub,
		notifier:   notifier,
		locations:  locations,
		simulators: simulators,
		gateway:    gateway,
		jwt:        jwt,
		driver:     driver,
		customer:   customer,
		route:      route,
	}
}

func (e *testEnv) token(t *testing.T, u models.User) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(u)
	require.NoError(t, err)
	return token
}

func (e *testEnv) book(t *testing.T, customer models.User, seats int) models.Booking {
	t.Helper()
	b, err := e.store.CreateBooking(models.NewBooking{RouteID: e.route.ID, CustomerID: customer.ID, Seats: seats})
	require.NoError(t, err)
	return b
}

// connect opens a session on a recording sink and authenticates it as u.
func (e *testEnv) connect(t *testing.T, u models.User) (*Session, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	s := e.gateway.NewSession(sink)
	s.Handle(mustJSON(t, InboundMessage{Type: EventAuthenticate, UserID: u.ID, Token: e.token(t, u)}))
	require.Equal(t, EventAuthSuccess, sink.last(t).Type)
	return s, sink
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
