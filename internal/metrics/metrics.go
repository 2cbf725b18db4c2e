package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Tracks the number of outbound API calls to 0x.
	ZeroExRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zeroex_api_requests_total",
			Help: "Total number of 0x API requests made (by endpoint and status).",
		},
		[]string{"endpoint", "status"},
	)

	// Measures duration of API requests to 0x.
	ZeroExRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zeroex_api_request_duration_seconds",
			Help:    "Duration of 0x API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"endpoint"},
	)

	// Tracks quotes served by integrator and result.
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_quotes_total",
			Help: "Total number of swap quotes served.",
		},
		[]string{"integrator", "kind", "result"}, // kind = "price" | "quote"
	)

	// Tracks affiliate-fee basis points distribution across served quotes.
	FeeBpsObserved = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swap_fee_bps",
			Help:    "Distribution of swap_fee_bps across served quotes.",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"integrator"},
	)

	// Counts fee cross-check mismatches between the venue and the local rule.
	FeeMismatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swap_fee_mismatch_total",
			Help: "Count of integrator-fee mismatches between 0x and the local computation.",
		},
		[]string{"integrator"},
	)

	// Tracks NATS messages processed by subject and result.
	NATSMessageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_total",
			Help: "Total number of NATS messages processed.",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	NATSMessageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nats_message_latency_seconds",
			Help:    "Time taken to publish NATS messages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"subject"},
	)

	// Tracks cache hits and misses for secrets / credentials.
	SecretsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "secrets_cache_access_total",
			Help: "Number of cache hits/misses in secret cache.",
		},
		[]string{"result"}, // hit | miss
	)

	// Tracks total errors (aggregated).
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adapter_errors_total",
			Help: "Count of adapter-level errors by component.",
		},
		[]string{"component", "reason"},
	)

	// Gauges the last successful settlement report time (seconds since epoch).
	LastSettlementTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "adapter_last_settlement_timestamp",
			Help: "Timestamp (unix seconds) of the last processed settlement report.",
		},
		[]string{"component"},
	)
)

// ObserveDuration records the time taken for a function and updates the given histogram.
func ObserveDuration(v interface{}, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// silently ignore counters; they're not meant for duration tracking
	}
}

func IncZeroExRequest(endpoint, status string) {
	ZeroExRequestsTotal.WithLabelValues(endpoint, status).Inc()
}

func IncQuote(integrator, kind, result string) {
	QuotesTotal.WithLabelValues(integrator, kind, result).Inc()
}

func ObserveFeeBps(integrator string, bps int) {
	FeeBpsObserved.WithLabelValues(integrator).Observe(float64(bps))
}

func IncFeeMismatch(integrator string) {
	FeeMismatchTotal.WithLabelValues(integrator).Inc()
}

func IncNATSMessage(subject, result string) {
	NATSMessageCount.WithLabelValues(subject, result).Inc()
}

func IncCacheHit(result string) {
	SecretsCacheHits.WithLabelValues(result).Inc()
}

func IncError(component, reason string) {
	ErrorsTotal.WithLabelValues(component, reason).Inc()
}

func SetLastSettlement(component string, t time.Time) {
	LastSettlementTimestamp.WithLabelValues(component).Set(float64(t.Unix()))
}
