// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LeadsCreated counts leads accepted by the store.
	LeadsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_api_leads_created_total",
			Help: "Total number of leads stored",
		},
	)

	// StoreOperations counts document store calls by operation and outcome.
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_api_store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"op", "status"},
	)

	// StoreOperationDuration tracks document store latency.
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leads_api_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// ObserveStoreOperation records one store call that started at start.
func ObserveStoreOperation(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	StoreOperations.WithLabelValues(op, status).Inc()
	StoreOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
