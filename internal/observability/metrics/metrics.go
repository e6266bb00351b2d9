package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordertrack_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ordertrack_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordertrack_auth_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	registrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordertrack_registrations_total",
		Help: "Accounts registered and awaiting approval",
	})

	statusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordertrack_user_status_changes_total",
		Help: "Approval decisions by resulting status",
	}, []string{"status"})

	orderOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordertrack_order_operations_total",
		Help: "Order writes by operation",
	}, []string{"operation"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin counts a login attempt. result is one of success,
// invalid_credentials, pending, rejected.
func ObserveLogin(result string) {
	authAttempts.WithLabelValues(result).Inc()
}

func ObserveRegistration() {
	registrations.Inc()
}

func ObserveStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

// ObserveOrder counts create, update and delete operations
func ObserveOrder(operation string) {
	orderOperations.WithLabelValues(operation).Inc()
}
