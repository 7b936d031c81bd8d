// Package signal provides Prometheus metrics for signal operations.
package signal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal tracks total predictions served
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_predictions_total",
			Help: "Total number of signal predictions served",
		},
		[]string{"source", "cache_hit"},
	)

	// PredictionLatency tracks prediction latency
	PredictionLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_prediction_latency_seconds",
			Help:    "Signal prediction latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// CacheHitRatio tracks prediction cache hit ratio
	CacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signal_cache_hit_ratio",
			Help: "Signal prediction cache hit ratio",
		},
	)

	// HTTPErrorsTotal tracks remote source errors
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_http_errors_total",
			Help: "Total number of remote signal source errors",
		},
		[]string{"error_type"},
	)
)
