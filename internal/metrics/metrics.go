// Package metrics provides Prometheus instrumentation for the simulator.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SimulationsTotal counts finished simulations, partitioned by outcome.
	SimulationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fibdozens_simulations_total",
		Help: "Total number of simulations run",
	}, []string{"outcome"})

	// SimulationDuration tracks wall-clock time of one simulation run.
	SimulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fibdozens_simulation_duration_seconds",
		Help:    "Simulation run duration in seconds",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
	})

	// SpinsPerSimulation tracks how many spins a run lasted.
	SpinsPerSimulation = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fibdozens_spins_per_simulation",
		Help:    "Number of spins played per simulation",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// LuckRatings counts summaries by luck band.
	LuckRatings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fibdozens_luck_ratings_total",
		Help: "Finished simulations by luck rating",
	}, []string{"luck"})

	// LargestFibIndex tracks the deepest losing streak index per run.
	LargestFibIndex = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fibdozens_largest_fib_index",
		Help:    "Largest Fibonacci index reached per simulation",
		Buckets: prometheus.LinearBuckets(1, 2, 15),
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fibdozens_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fibdozens_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fibdozens_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// ObserveSimulation records one finished run.
func ObserveSimulation(outcome, luck string, spins, largestIndex int, elapsed time.Duration) {
	SimulationsTotal.WithLabelValues(outcome).Inc()
	LuckRatings.WithLabelValues(luck).Inc()
	SpinsPerSimulation.Observe(float64(spins))
	LargestFibIndex.Observe(float64(largestIndex))
	SimulationDuration.Observe(elapsed.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrader take over the connection.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}
