// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the fundraising platform.
var (
	// Counters.
	ConditionsCompletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "end_conditions_completed_total",
			Help: "Total number of end conditions that transitioned to completed",
		},
		[]string{"name"},
	)

	EventTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_transitions_total",
			Help: "Total number of event terminal-state transitions",
		},
		[]string{"status"},
	)

	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_unlocked_total",
			Help: "Total number of achievements unlocked by users",
		},
		[]string{"achievement"},
	)

	DepositsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transactions_total",
			Help: "Total number of ledger transactions recorded",
		},
		[]string{"type"},
	)

	// Gauges.
	EventsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "events_in_progress",
			Help: "Current number of events in progress",
		},
	)

	// Histograms.
	DepositAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "deposit_amount",
			Help:    "Distribution of deposit amounts",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 to ~260k
		},
	)

	EventEvaluationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "event_evaluation_seconds",
			Help:    "Duration of a full event condition evaluation",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)
)

// RecordConditionCompleted increments the completed-conditions counter.
func RecordConditionCompleted(name string) {
	ConditionsCompletedTotal.WithLabelValues(name).Inc()
}

// RecordEventTransition increments the event transition counter.
func RecordEventTransition(status string) {
	EventTransitionsTotal.WithLabelValues(status).Inc()
}

// RecordAchievementUnlocked increments the unlocked-achievements counter.
func RecordAchievementUnlocked(achievement string) {
	AchievementsUnlockedTotal.WithLabelValues(achievement).Inc()
}

// RecordTransaction records a ledger transaction and, for deposits, observes
// the amount distribution.
func RecordTransaction(txType string, amount float64) {
	DepositsTotal.WithLabelValues(txType).Inc()
	if txType == "deposit" {
		DepositAmount.Observe(amount)
	}
}

// SetEventsInProgress sets the in-progress events gauge.
func SetEventsInProgress(count int) {
	EventsInProgress.Set(float64(count))
}
