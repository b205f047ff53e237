package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	Checkouts       *prometheus.CounterVec
	StockRejections prometheus.Counter
	Transitions     *prometheus.CounterVec
}

func New(service string) *Metrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsepixel",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pulsepixel",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsepixel",
		Subsystem: service,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	rejections := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pulsepixel",
		Subsystem: service,
		Name:      "stock_rejections_total",
		Help:      "Cart lines rejected for insufficient stock.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pulsepixel",
		Subsystem: service,
		Name:      "order_transitions_total",
		Help:      "Order status transitions by target state and outcome.",
	}, []string{"to", "outcome"})

	prometheus.MustRegister(requests, latency, checkouts, rejections, transitions)
	return &Metrics{
		HTTPRequests:    requests,
		HTTPLatency:     latency,
		Checkouts:       checkouts,
		StockRejections: rejections,
		Transitions:     transitions,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		m.HTTPLatency.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}
