// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mmynk/settleup/internal/models"
)

const namespace = "settleup"

var (
	ledgerDeltas = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "deltas_total",
		Help:      "Ledger deltas applied, by sign.",
	}, []string{"sign"})

	balanceTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ledger",
		Name:      "status_transitions_total",
		Help:      "Balance status transitions, by previous and new status.",
	}, []string{"from", "to"})

	expensesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "expenses_created_total",
		Help:      "Expenses recorded, by split kind.",
	}, []string{"kind"})

	paymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_recorded_total",
		Help:      "Payments logged, by whether they reduced a balance.",
	}, []string{"applied"})

	simplifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simplify_duration_seconds",
		Help:      "Time spent computing simplified transfers.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	rpcHandled = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "handled_seconds",
		Help:      "Unary RPC latency, by procedure and Connect code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"procedure", "code"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Simplified transfer cache lookups, by result.",
	}, []string{"result"})
)

// LedgerDelta counts one applied delta.
func LedgerDelta(positive bool) {
	sign := "negative"
	if positive {
		sign = "positive"
	}
	ledgerDeltas.WithLabelValues(sign).Inc()
}

// StatusTransition counts a status change. Unchanged statuses are ignored.
func StatusTransition(from, to models.BalanceStatus) {
	if from == to {
		return
	}
	if from == "" {
		from = "NONE"
	}
	balanceTransitions.WithLabelValues(string(from), string(to)).Inc()
}

func ExpenseCreated(kind models.SplitKind) {
	expensesCreated.WithLabelValues(string(kind)).Inc()
}

func PaymentRecorded(applied bool) {
	label := "false"
	if applied {
		label = "true"
	}
	paymentsRecorded.WithLabelValues(label).Inc()
}

// ObserveSimplify records how long a simplification took.
func ObserveSimplify(seconds float64) {
	simplifyDuration.Observe(seconds)
}

// CacheLookup counts a cache hit, miss or error.
func CacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// RPCHandled records a finished RPC. code is "ok" on success.
func RPCHandled(procedure, code string, seconds float64) {
	rpcHandled.WithLabelValues(procedure, code).Observe(seconds)
}
