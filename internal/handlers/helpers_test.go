package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/chachabrian/ridelink-backend/internal/logging"
	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/services"
	"github.com/chachabrian/ridelink-backend/internal/store"
	"github.com/chachabrian/ridelink-backend/pkg/utils"
)

type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// inbox stands in for a websocket connection registered on the hub.
type inbox struct {
	mu     sync.Mutex
	events []event
}

func (b *inbox) Deliver(raw []byte) bool {
	var e event
	if err := json.Unmarshal(raw, &e); err != nil {
		return false
	}
	b.mu.Lock()
	b.events = append(b.events, e)
	b.mu.Unlock()
	return true
}

func (b *inbox) ofType(eventType string) []event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event
	for _, e := range b.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type account struct {
	user  models.User
	token string
}

type apiEnv struct {
	router *gin.Engine
	store  *store.Store
	hub    *services.Hub
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logging.Discard()

	st := store.New()
	hub := services.NewHub(logger)
	notifier := services.NewNotifier(hub, st)
	locations := services.NewLocationBroadcaster(st, hub, logger)
	simulators := services.NewLocationSimulator(st, locations, time.Hour, logger)
	t.Cleanup(simulators.StopAll)
	jwt := utils.NewJWTManager("test-secret", time.Hour)
	avatars, err := services.NewLocalAvatarStorage(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	router := NewRouter(Deps{
		Store:     st,
		Hub:       hub,
		Notifier:  notifier,
		Locations: locations,
		Gateway:   services.NewGateway(st, hub, locations, simulators, notifier, jwt, logger),
		JWT:       jwt,
		Avatars:   avatars,
		Logger:    logger,
		Started:   time.Now(),
	})
	return &apiEnv{router: router, store: st, hub: hub}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *apiEnv) register(t *testing.T, username string, role models.Role) account {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"username":  username,
		"password":  "secret1",
		"role":      role,
		"firstName": username,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}](t, w)
	return account{user: resp.User, token: resp.Token}
}

// listen registers an inbox for the user on the hub.
func (e *apiEnv) listen(a account) *inbox {
	b := &inbox{}
	e.hub.Register(b, services.Identity{UserID: a.user.ID, Role: a.user.Role})
	return b
}

func (e *apiEnv) createRoute(t *testing.T, driver account, seats int) models.Route {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/routes", driver.token, gin.H{
		"routeName":     "Morning commute",
		"origin":        "Westlands",
		"destination":   "CBD",
		"departureDate": "2026-10-20",
		"departureTime": "07:30",
		"totalSeats":    seats,
		"price":         250,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Route](t, w)
}

func (e *apiEnv) book(t *testing.T, customer account, routeID string, seats int) models.Booking {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/bookings", customer.token, gin.H{"routeId": routeID, "seats": seats})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Booking](t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}
