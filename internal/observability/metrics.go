package observability

import "github.com/prometheus/client_golang/prometheus"

// Outcome label values shared by the bot counters.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeNotFound = "not_found"
	OutcomeRetried  = "retried"
)

// Bot counters. Label sets are closed enums (intent names, outcomes) so
// cardinality stays bounded.
var (
	// UpdatesTotal counts processed Telegram updates by classified intent.
	UpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elix_updates_total",
			Help: "Telegram updates processed, by intent.",
		},
		[]string{"intent"},
	)

	// PricingLookups counts price quotes by outcome (ok, not_found).
	PricingLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elix_pricing_lookups_total",
			Help: "Catalog price lookups, by outcome.",
		},
		[]string{"outcome"},
	)

	// AIRequests counts completion calls by outcome (ok, error, timeout).
	AIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elix_ai_requests_total",
			Help: "AI assistant requests, by outcome.",
		},
		[]string{"outcome"},
	)

	// AILatency records completion call duration in seconds.
	AILatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "elix_ai_request_duration_seconds",
			Help:    "Duration of AI assistant requests in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)

	// Notifications counts admin channel notifications by outcome.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elix_notifications_total",
			Help: "Admin channel notifications, by outcome.",
		},
		[]string{"outcome"},
	)

	// LedgerSubmissions counts request submissions by outcome (ok, retried, error).
	LedgerSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "elix_ledger_submissions_total",
			Help: "Request ledger submissions, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(UpdatesTotal, PricingLookups, AIRequests, AILatency, Notifications, LedgerSubmissions)
}
