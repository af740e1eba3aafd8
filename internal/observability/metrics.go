package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ridelink"

var (
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "ws_connected_clients", Help: "Authenticated realtime connections"})

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "events_published_total", Help: "Events published to rooms, by event type"},
		[]string{"type"},
	)
	DeliveriesDropped = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "deliveries_dropped_total", Help: "Event deliveries dropped because the connection was full or closed"})

	SimulatorTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "simulator_ticks_total", Help: "Simulator iterations, by simulator and outcome"},
		[]string{"simulator", "outcome"},
	)
	ActiveLocationSimulators = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "location_simulators_active", Help: "Drivers with a running location simulator"})
	BookingsAutoConfirmed    = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "bookings_auto_confirmed_total", Help: "Pending bookings confirmed by the booking simulator"})

	LocationSinkErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "location_sink_errors_total", Help: "Failed location sink writes, by sink"},
		[]string{"sink"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
