// Package seed fills an empty store with demo users, routes, bookings, chats and
// driver positions so a fresh process has something to show.
package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/chachabrian/ridelink-backend/internal/models"
	"github.com/chachabrian/ridelink-backend/internal/store"
)

// DemoPassword is the password of every generated account.
const DemoPassword = "password123"

type Options struct {
	Users    int
	Routes   int
	Bookings int
	// HistoryPoints is the number of past positions recorded per driver.
	HistoryPoints int
}

func DefaultOptions() Options {
	return Options{Users: 50, Routes: 80, Bookings: 150, HistoryPoints: 20}
}

type Summary struct {
	Drivers       int `json:"drivers"`
	Customers     int `json:"customers"`
	Routes        int `json:"routes"`
	Bookings      int `json:"bookings"`
	Conversations int `json:"conversations"`
	Messages      int `json:"messages"`
	Locations     int `json:"locations"`
}

type Seeder struct {
	store  *store.Store
	rng    *rand.Rand
	now    func() time.Time
	logger *slog.Logger
}

func New(st *store.Store, rng *rand.Rand, logger *slog.Logger) *Seeder {
	return &Seeder{store: st, rng: rng, now: time.Now, logger: logger.With("component", "seed")}
}

var (
	firstNames = []string{"Amani", "Wanjiru", "Otieno", "Achieng", "Kamau", "Njeri", "Baraka", "Zawadi", "Mwangi", "Akinyi", "Kiprop", "Nafula"}
	lastNames  = []string{"Mutua", "Odhiambo", "Kariuki", "Wekesa", "Chebet", "Omondi", "Njoroge", "Maina", "Kibet", "Atieno"}
	places     = []string{
		"CBD", "Westlands", "JKIA Terminal 1A", "Upper Hill", "Kilimani", "Karen",
		"Gigiri", "Eastleigh", "Rongai", "Thika Road Mall", "Ngong Road", "Kasarani",
		"South B", "Langata", "Parklands", "Lavington",
	}
	routeNotes = []string{
		"Non-smoking vehicle only",
		"Small luggage only",
		"Departure is strict, please be on time",
		"AC available",
		"Pet-friendly",
		"Quiet ride preferred",
	}
	bookingNotes = []string{
		"One medium suitcase",
		"Prefer a window seat",
		"Will need help with luggage",
		"Might be a few minutes late",
	}
	driverLines = []string{
		"Hi! I'll be in a silver Axio",
		"Running about 5 minutes late, sorry",
		"Please wait at the main entrance",
		"Traffic is heavy on Waiyaki Way",
		"On my way, see you soon",
		"Where exactly should I pick you up?",
	}
	customerLines = []string{
		"Thanks! I'll be in a red jacket",
		"No problem, I can wait",
		"I'm at the main entrance",
		"Great, see you then",
		"I'm by the coffee shop",
		"Thank you for the ride!",
	}
	systemLines = []string{
		"Pickup location updated",
		"Route updated by driver",
		"Payment received",
	}
	// Positions are scattered around these points.
	bases = []struct{ lat, lng float64 }{
		{-1.2864, 36.8172},
		{-1.2676, 36.8108},
		{-1.3006, 36.7862},
		{-1.2195, 36.8869},
	}
)

// Run generates data according to opts. Bookings that collide with the store's
// rules (full routes, duplicate bookings) are skipped.
func (s *Seeder) Run(opts Options) (Summary, error) {
	var sum Summary

	drivers, customers, err := s.users(opts.Users)
	if err != nil {
		return sum, err
	}
	sum.Drivers, sum.Customers = len(drivers), len(customers)

	routes, err := s.routes(opts.Routes, drivers)
	if err != nil {
		return sum, err
	}
	sum.Routes = len(routes)

	bookings, err := s.bookings(opts.Bookings, routes, customers)
	if err != nil {
		return sum, err
	}
	sum.Bookings = len(bookings)

	for _, b := range bookings {
		if s.rng.Float64() < 0.4 {
			continue
		}
		n, err := s.conversation(b)
		if err != nil {
			return sum, err
		}
		sum.Conversations++
		sum.Messages += n
	}

	for _, d := range drivers {
		n, err := s.positions(d, opts.HistoryPoints)
		if err != nil {
			return sum, err
		}
		sum.Locations += n
	}

	s.logger.Info("demo data generated",
		"drivers", sum.Drivers,
		"customers", sum.Customers,
		"routes", sum.Routes,
		"bookings", sum.Bookings,
		"conversations", sum.Conversations,
		"messages", sum.Messages,
	)
	return sum, nil
}

func (s *Seeder) pick(list []string) string {
	return list[s.rng.Intn(len(list))]
}

// users alternates the first two roles so both sides exist whenever n >= 2.
func (s *Seeder) users(n int) (drivers, customers []models.User, err error) {
	for i := 0; i < n; i++ {
		first, last := s.pick(firstNames), s.pick(lastNames)
		role := models.RoleCustomer
		switch {
		case i == 0:
			role = models.RoleDriver
		case i == 1:
		case s.rng.Float64() < 0.5:
			role = models.RoleDriver
		}

		profile := models.Profile{
			FirstName:  first,
			LastName:   last,
			Email:      strings.ToLower(first + "." + last + "@example.com"),
			Phone:      fmt.Sprintf("+2547%08d", s.rng.Intn(100000000)),
			Avatar:     "https://api.dicebear.com/7.x/avataaars/svg?seed=" + first + last,
			Rating:     math.Round((3+s.rng.Float64()*2)*10) / 10,
			TotalTrips: s.rng.Intn(100),
		}
		if role == models.RoleDriver {
			profile.Bio = "Experienced driver around " + s.pick(places) + "."
		} else {
			profile.Bio = "Regular commuter."
		}

		username := strings.ToLower(fmt.Sprintf("%s%s%d", first, last, i))
		u, err := s.store.CreateUser(username, DemoPassword, role, profile)
		if err != nil {
			return nil, nil, fmt.Errorf("seed user %s: %w", username, err)
		}
		if role == models.RoleDriver {
			drivers = append(drivers, u)
		} else {
			customers = append(customers, u)
		}
	}
	return drivers, customers, nil
}

func (s *Seeder) routes(n int, drivers []models.User) ([]models.Route, error) {
	if len(drivers) == 0 {
		return nil, nil
	}
	out := make([]models.Route, 0, n)
	for i := 0; i < n; i++ {
		origin := s.pick(places)
		destination := s.pick(places)
		for destination == origin {
			destination = s.pick(places)
		}

		in := models.NewRoute{
			DriverID:      drivers[s.rng.Intn(len(drivers))].ID,
			RouteName:     origin + " to " + destination,
			Origin:        origin,
			Destination:   destination,
			DepartureDate: s.now().AddDate(0, 0, s.rng.Intn(30)).Format("2006-01-02"),
			DepartureTime: fmt.Sprintf("%02d:%02d", s.rng.Intn(24), s.rng.Intn(4)*15),
			Stops:         s.stops(origin, destination),
			TotalSeats:    2 + s.rng.Intn(4),
			Price:         float64(100 + s.rng.Intn(30)*10),
		}
		if s.rng.Float64() < 0.3 {
			in.Notes = s.pick(routeNotes)
		}

		r, err := s.store.CreateRoute(in)
		if err != nil {
			return nil, fmt.Errorf("seed route %s: %w", in.RouteName, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Seeder) stops(origin, destination string) []models.StopInput {
	names := []string{origin}
	if s.rng.Float64() < 0.4 {
		for i := 1 + s.rng.Intn(2); i > 0; i-- {
			stop := s.pick(places)
			if stop != origin && stop != destination {
				names = append(names, stop)
			}
		}
	}
	names = append(names, destination)

	out := make([]models.StopInput, len(names))
	for i, name := range names {
		lat, lng := s.near(0.05)
		out[i] = models.StopInput{
			Name:          name,
			EstimatedTime: fmt.Sprintf("%d min", i*15),
			Latitude:      &lat,
			Longitude:     &lng,
		}
	}
	return out
}

// bookings books random seats and then walks each booking through the state
// machine to a random final status.
func (s *Seeder) bookings(n int, routes []models.Route, customers []models.User) ([]models.Booking, error) {
	if len(routes) == 0 || len(customers) == 0 {
		return nil, nil
	}
	out := make([]models.Booking, 0, n)
	for i := 0; i < n; i++ {
		route, err := s.store.GetRoute(routes[s.rng.Intn(len(routes))].ID)
		if err != nil {
			return nil, err
		}
		if route.AvailableSeats == 0 {
			continue
		}

		in := models.NewBooking{
			RouteID:    route.ID,
			CustomerID: customers[s.rng.Intn(len(customers))].ID,
			Seats:      min(1+s.rng.Intn(3), route.AvailableSeats),
		}
		if s.rng.Float64() < 0.2 {
			in.Notes = s.pick(bookingNotes)
		}

		b, err := s.store.CreateBooking(in)
		if errors.Is(err, store.ErrConflict) || errors.Is(err, store.ErrInsufficientCapacity) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("seed booking on route %s: %w", route.ID, err)
		}

		b, err = s.settle(b)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Seeder) settle(b models.Booking) (models.Booking, error) {
	yes := true
	cancelled := models.BookingStatusCancelled
	completed := models.BookingStatusCompleted

	var patches []models.BookingPatch
	switch s.rng.Intn(4) {
	case 0:
		return b, nil
	case 1:
		patches = []models.BookingPatch{{DriverConfirmed: &yes}}
	case 2:
		patches = []models.BookingPatch{{Status: &cancelled}}
	case 3:
		patches = []models.BookingPatch{{DriverConfirmed: &yes}, {Status: &completed}}
	}

	for _, p := range patches {
		var err error
		if b, err = s.store.UpdateBooking(b.ID, p); err != nil {
			return b, fmt.Errorf("seed booking %s: %w", b.ID, err)
		}
	}
	return b, nil
}

func (s *Seeder) conversation(b models.Booking) (int, error) {
	conv, _, err := s.store.GetOrCreateConversation(b.ID)
	if err != nil {
		return 0, fmt.Errorf("seed conversation for booking %s: %w", b.ID, err)
	}

	count := 0
	for i := 3 + s.rng.Intn(12); i > 0; i-- {
		sender, text := b.CustomerID, s.pick(customerLines)
		if s.rng.Float64() < 0.5 {
			sender, text = b.DriverID, s.pick(driverLines)
		}
		if _, err := s.store.AddMessage(conv.ID, sender, text, models.MessageTypeText); err != nil {
			return count, err
		}
		count++

		if s.rng.Float64() < 0.1 {
			if _, err := s.store.AddMessage(conv.ID, b.DriverID, s.pick(systemLines), models.MessageTypeSystem); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

// positions records a trail of samples for the driver; the last one is current.
func (s *Seeder) positions(driver models.User, history int) (int, error) {
	base := bases[s.rng.Intn(len(bases))]
	for i := 0; i <= history; i++ {
		speed := float64(10 + s.rng.Intn(50))
		heading := float64(s.rng.Intn(360))
		in := models.LocationInput{
			Latitude:  base.lat + (s.rng.Float64()-0.5)*0.02,
			Longitude: base.lng + (s.rng.Float64()-0.5)*0.02,
			Accuracy:  float64(10 + s.rng.Intn(20)),
			Speed:     &speed,
			Heading:   &heading,
		}
		if _, err := s.store.UpdateLocation(driver.ID, in); err != nil {
			return i, fmt.Errorf("seed location for %s: %w", driver.ID, err)
		}
	}
	return history + 1, nil
}

func (s *Seeder) near(spread float64) (float64, float64) {
	base := bases[0]
	return base.lat + (s.rng.Float64()-0.5)*spread, base.lng + (s.rng.Float64()-0.5)*spread
}
