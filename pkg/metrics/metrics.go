package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CollectorCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_cycles_total",
			Help: "Total number of collection cycles by outcome (count)",
		},
		[]string{"status"},
	)

	CollectorCycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "collector_cycle_duration_ms",
			Help:    "Duration of a full collection cycle in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 300000},
		},
		[]string{"status"},
	)

	CollectorMessagesEnumerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_messages_enumerated_total",
			Help: "Total number of message identifiers returned by enumeration (count)",
		},
	)

	CollectorClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_classifications_total",
			Help: "Total number of classified messages by result (count)",
		},
		[]string{"result"},
	)

	CollectorFetchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_fetch_failures_total",
			Help: "Total number of header fetches that failed (count)",
		},
	)

	CollectorInFlightFetches = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "collector_in_flight_fetches",
			Help: "Number of header fetches currently running (count)",
		},
	)

	GmailRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gmail_requests_total",
			Help: "Total number of Gmail API requests (count)",
		},
		[]string{"operation", "status"},
	)

	GmailRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gmail_request_duration_ms",
			Help:    "Duration of Gmail API requests in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"operation"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "operation"},
	)

	StatsQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_queries_total",
			Help: "Total number of stats query requests by outcome (count)",
		},
		[]string{"status"},
	)

	EventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of record events published to the broker (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"database", "operation", "status"},
	)

	DatabaseQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_ms",
			Help:    "Duration of database queries in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"database", "operation"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			CollectorCyclesTotal,
			CollectorCycleDuration,
			CollectorMessagesEnumerated,
			CollectorClassificationsTotal,
			CollectorFetchFailuresTotal,
			CollectorInFlightFetches,
			GmailRequestsTotal,
			GmailRequestDuration,
			RetryAttemptsTotal,
			StatsQueriesTotal,
			EventsPublishedTotal,
			CircuitBreakerState,
			CircuitBreakerRequests,
			CircuitBreakerFailures,
			RateLimitRequestsTotal,
			DatabaseQueriesTotal,
			DatabaseQueryDuration,
		)
	})
}

func ObserveCycle(duration time.Duration, status string) {
	CollectorCyclesTotal.WithLabelValues(status).Inc()
	CollectorCycleDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveGmailRequest(operation, status string, duration time.Duration) {
	GmailRequestsTotal.WithLabelValues(operation, status).Inc()
	GmailRequestDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}

func ObserveDatabaseQuery(database, operation, status string, duration time.Duration) {
	DatabaseQueriesTotal.WithLabelValues(database, operation, status).Inc()
	DatabaseQueryDuration.WithLabelValues(database, operation).Observe(float64(duration.Milliseconds()))
}

func IncClassification(result string, n int) {
	if n <= 0 {
		return
	}
	CollectorClassificationsTotal.WithLabelValues(result).Add(float64(n))
}
