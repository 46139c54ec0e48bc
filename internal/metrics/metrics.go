// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodgram_http_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Domain
	RecipeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_mutations_total",
			Help: "Total number of recipe writes by operation",
		},
		[]string{"operation"}, // "create", "update", "delete"
	)

	ShoppingListDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_downloads_total",
			Help: "Total number of shopping list downloads by format",
		},
		[]string{"format"},
	)

	TokenRevocations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_token_revocations_total",
			Help: "Total number of access tokens revoked by logout",
		},
	)
)

// RecordHTTPRequest records a finished HTTP request.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight HTTP requests.
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

func RecordRecipeMutation(operation string) {
	RecipeMutations.WithLabelValues(operation).Inc()
}

func RecordShoppingListDownload(format string) {
	ShoppingListDownloads.WithLabelValues(format).Inc()
}

func RecordTokenRevocation() {
	TokenRevocations.Inc()
}
