package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transferOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_transfer_operations_total",
			Help: "Transfer pipeline operations by stage and outcome",
		},
		[]string{"operation", "status"},
	)

	tradeTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_trade_transitions_total",
			Help: "Trade status transitions",
		},
		[]string{"status"},
	)

	rpcRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallet_ledger_rpc_duration_seconds",
			Help:    "Latency of ledger RPC round trips",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "outcome"},
	)

	balanceQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_balance_queries_total",
			Help: "Balance aggregation queries by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordTransfer counts a pipeline operation (prepare, submit) and its outcome
func RecordTransfer(operation, status string) {
	transferOperations.WithLabelValues(operation, status).Inc()
}

// RecordTradeTransition counts a trade entering the given status
func RecordTradeTransition(status string) {
	tradeTransitions.WithLabelValues(status).Inc()
}

// ObserveRPC records the latency of one ledger RPC call
func ObserveRPC(method string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcRequestDuration.WithLabelValues(method, outcome).Observe(time.Since(start).Seconds())
}

// RecordBalanceQuery counts a balance aggregation and its outcome
// (ok, partial, error)
func RecordBalanceQuery(outcome string) {
	balanceQueries.WithLabelValues(outcome).Inc()
}
