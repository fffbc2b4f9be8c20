// Package metrics holds the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupcard_transactions_total",
		Help: "Group transactions reaching a lifecycle state, labeled by state",
	}, []string{"outcome"})

	HoldsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupcard_holds_total",
		Help: "Member holds after each orchestrator operation, labeled by hold status",
	}, []string{"status"})

	GatewayCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupcard_gateway_calls_total",
		Help: "Calls to the payment gateway, labeled by operation and outcome",
	}, []string{"op", "outcome"})

	GatewayCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "groupcard_gateway_call_duration_seconds",
		Help:    "Latency distribution of payment gateway calls",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"op"})

	CompensationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groupcard_compensation_failures_total",
		Help: "Cancel or capture calls that failed during cleanup or settlement",
	}, []string{"op"})
)
