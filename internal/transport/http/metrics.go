package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Total HTTP requests partitioned by method, route, and status code
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	// Request duration in seconds partitioned by method, route, and status code
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// In-flight HTTP requests
	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// metricsResponseWriter wraps http.ResponseWriter to capture the status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (mrw *metricsResponseWriter) WriteHeader(code int) {
	mrw.statusCode = code
	mrw.ResponseWriter.WriteHeader(code)
}

// routeLabel collapses request paths to route templates to keep
// the label cardinality bounded.
func routeLabel(path string) string {
	switch {
	case path == "/api/urls":
		return "/api/urls"
	case strings.HasPrefix(path, "/api/urls/"):
		if strings.HasSuffix(path, "/qr") {
			return "/api/urls/{code}/qr"
		}
		return "/api/urls/{code}"
	case path == "/api/analytics/summary":
		return "/api/analytics/summary"
	case strings.HasPrefix(path, "/api/analytics/urls/"):
		rest := strings.TrimPrefix(path, "/api/analytics/urls/")
		if _, sub, ok := strings.Cut(rest, "/"); ok {
			return "/api/analytics/urls/{code}/" + sub
		}
		return "/api/analytics/urls/{code}"
	case path == "/metrics":
		return "/metrics"
	case path == "/health":
		return "/health"
	default:
		return "/{code}"
	}
}

// MetricsMiddleware records request counts, latencies, and in-flight
// gauge for every request.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		mrw := &metricsResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(mrw, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"route":  routeLabel(r.URL.Path),
			"status": strconv.Itoa(mrw.statusCode),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}
