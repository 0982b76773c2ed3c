package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	complaintsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaints_submitted_total",
			Help: "Total number of complaints submitted",
		},
		[]string{"category"},
	)

	complaintTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_status_transitions_total",
			Help: "Total number of complaint status transitions",
		},
		[]string{"from_status", "to_status"},
	)

	dispositionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "complaint_dispositions_total",
			Help: "Total number of complaint routings to a unit",
		},
		[]string{"to_unit"},
	)

	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of notification deliveries by outcome",
		},
		[]string{"kind", "outcome"},
	)

	authorizationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_decisions_total",
			Help: "Total number of workflow authorization decisions",
		},
		[]string{"operation", "decision"},
	)

	auditEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of audit entries created",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath caps path cardinality; IDs in the path are left to the
// handler-level counters which label by operation, not URL.
func normalizePath(path string) string {
	if len(path) > 100 {
		return "/api/..."
	}
	return path
}

// --- Business metric helpers ---

// RecordComplaintSubmitted records a new complaint submission
func RecordComplaintSubmitted(category string) {
	complaintsSubmitted.WithLabelValues(category).Inc()
}

// RecordStatusTransition records a complaint status transition
func RecordStatusTransition(fromStatus, toStatus string) {
	complaintTransitions.WithLabelValues(fromStatus, toStatus).Inc()
}

// RecordDisposition records a routing of a complaint to a unit
func RecordDisposition(toUnitCode string) {
	dispositionsTotal.WithLabelValues(toUnitCode).Inc()
}

// RecordNotification records a notification delivery attempt outcome
func RecordNotification(kind string, ok bool) {
	outcome := "failed"
	if ok {
		outcome = "sent"
	}
	notificationsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordAuthorizationDecision records a workflow authorization decision
func RecordAuthorizationDecision(operation string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	authorizationDecisions.WithLabelValues(operation, decision).Inc()
}

// RecordAuditEntry records an audit entry creation
func RecordAuditEntry() {
	auditEntriesTotal.Inc()
}
