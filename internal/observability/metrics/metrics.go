package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "commerce_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	ordersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commerce_orders_created_total",
		Help: "Count of orders created",
	})

	profileEnrichmentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_profile_enrichment_total",
		Help: "Profile order-enrichment attempts by result (ok or degraded)",
	}, []string{"result"})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "commerce_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	authDenials = promauto.NewCounter(prometheus.CounterOpts{
		Name: "commerce_auth_denials_total",
		Help: "Count of requests rejected by the ownership guard",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveOrderCreated increments the order creation counter.
func ObserveOrderCreated() {
	ordersCreatedTotal.Inc()
}

// ObserveEnrichment records a profile order-enrichment attempt.
func ObserveEnrichment(result string) {
	profileEnrichmentTotal.WithLabelValues(result).Inc()
}

// ObserveLogin records a login attempt with a result label.
func ObserveLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

// ObserveAuthDenial increments the guard denial counter.
func ObserveAuthDenial() {
	authDenials.Inc()
}

// HTTPMetricsMiddleware wraps a handler so every request lands in the
// request counter and latency histogram, labeled with the final status.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(&rec, r)
		ObserveHTTPRequest(r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(start))
	})
}

// statusRecorder captures the status code written by the wrapped handler.
// Handlers that write a body without calling WriteHeader count as 200.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
