package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	// Auth
	ConfirmationCodesIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "confirmation_codes_issued_total",
			Help: "Confirmation codes issued on sign-up.",
		},
	)
	TokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokens_issued_total",
			Help: "Access tokens issued for redeemed confirmation codes.",
		},
	)

	// Storage
	UniquenessConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uniqueness_conflicts_total",
			Help: "Writes rejected by a storage-level unique constraint.",
		},
		[]string{"entity"}, // user|category|genre|review
	)

	initOnce sync.Once
)

// Handler serves the default registry on /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(ConfirmationCodesIssued)
		prometheus.MustRegister(TokensIssued)
		prometheus.MustRegister(UniquenessConflicts)
	})
}
