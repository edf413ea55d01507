// Package metrics provides the centralized Prometheus metrics registry for the book.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	WagersPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackbook",
		Name:      "wagers_placed_total",
		Help:      "Total number of wagers successfully settled",
	})
	WagersRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hackbook",
		Name:      "wagers_rejected_total",
		Help:      "Total number of wagers rejected, by reason",
	}, []string{"reason"})
	SettlementRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackbook",
		Name:      "settlement_retries_total",
		Help:      "Total number of settlement transaction retries",
	})
	OddsBatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackbook",
		Name:      "odds_batches_total",
		Help:      "Total number of odds engine batch runs",
	})
	OddsRecordsComputedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackbook",
		Name:      "odds_records_computed_total",
		Help:      "Total number of odds records computed",
	})
	OddsPrizesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackbook",
		Name:      "odds_prizes_skipped_total",
		Help:      "Total number of prizes skipped due to degenerate ratings",
	})
	RecomputeJobsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackbook",
		Name:      "recompute_jobs_total",
		Help:      "Total number of post-wager odds recompute jobs processed",
	})
	RecomputeDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "hackbook",
		Name:      "recompute_dropped_total",
		Help:      "Total number of recompute jobs dropped due to a full queue",
	})
)

// Gauge metrics
var (
	MarketPool = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "hackbook",
		Name:      "market_pool",
		Help:      "Current total pool per market in currency units",
	}, []string{"prize_id"})
	RecomputeQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hackbook",
		Name:      "recompute_queue_depth",
		Help:      "Number of pending odds recompute jobs",
	})
	StreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "hackbook",
		Name:      "stream_clients",
		Help:      "Number of connected websocket clients",
	})
)

// Histogram metrics
var (
	SettlementLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hackbook",
		Name:      "settlement_latency_seconds",
		Help:      "Latency of wager settlement operations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PricingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hackbook",
		Name:      "pricing_duration_seconds",
		Help:      "Duration of per-prize odds pricing in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
	ActivitySyncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hackbook",
		Name:      "activity_sync_duration_seconds",
		Help:      "Duration of GitHub activity sync runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(WagersPlacedTotal)
		registry.MustRegister(WagersRejectedTotal)
		registry.MustRegister(SettlementRetriesTotal)
		registry.MustRegister(OddsBatchesTotal)
		registry.MustRegister(OddsRecordsComputedTotal)
		registry.MustRegister(OddsPrizesSkippedTotal)
		registry.MustRegister(RecomputeJobsTotal)
		registry.MustRegister(RecomputeDroppedTotal)

		registry.MustRegister(MarketPool)
		registry.MustRegister(RecomputeQueueDepth)
		registry.MustRegister(StreamClients)

		registry.MustRegister(SettlementLatency)
		registry.MustRegister(PricingDuration)
		registry.MustRegister(ActivitySyncDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordWagerPlaced records a successful settlement.
func RecordWagerPlaced(latencySeconds float64) {
	WagersPlacedTotal.Inc()
	SettlementLatency.Observe(latencySeconds)
}

// RecordWagerRejected records a rejected wager by reason.
func RecordWagerRejected(reason string) {
	WagersRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordSettlementRetry records a settlement transaction retry.
func RecordSettlementRetry() {
	SettlementRetriesTotal.Inc()
}

// RecordPricing records one priced prize.
func RecordPricing(records int, durationSeconds float64) {
	OddsRecordsComputedTotal.Add(float64(records))
	PricingDuration.Observe(durationSeconds)
}

// RecordPrizeSkipped records a prize skipped for degenerate input.
func RecordPrizeSkipped() {
	OddsPrizesSkippedTotal.Inc()
}

// RecordActivitySync records the duration of an activity sync run.
func RecordActivitySync(durationSeconds float64) {
	ActivitySyncDuration.Observe(durationSeconds)
}

// UpdateMarketPool updates the pool gauge for a market.
func UpdateMarketPool(prizeID string, pool float64) {
	MarketPool.WithLabelValues(prizeID).Set(pool)
}
