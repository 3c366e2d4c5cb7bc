package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransfersCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_transfers_completed_total",
		Help: "Number of store transfers fulfilled.",
	})

	TransfersFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_transfers_failed_total",
		Help: "Number of transfer requests or fulfillments rejected, by reason.",
	}, []string{"reason"})

	AlertsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_alerts_emitted_total",
		Help: "Number of stock-health alerts emitted, by type.",
	}, []string{"type"})

	ForecastDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_forecast_duration_seconds",
		Help:    "Latency of demand forecast computations.",
		Buckets: prometheus.DefBuckets,
	})
)
