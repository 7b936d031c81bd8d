// Package risk provides Prometheus metrics for risk operations.
package risk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsTotal tracks risk alerts by type and severity
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_alerts_total",
			Help: "Total number of risk alerts raised",
		},
		[]string{"type", "severity"},
	)

	// HaltDecisionsTotal tracks trading halt decisions by reason
	HaltDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_halt_decisions_total",
			Help: "Total number of trading halt decisions",
		},
		[]string{"reason"},
	)

	// VolatilityIndex tracks the current historical volatility estimate
	VolatilityIndex = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_volatility_index",
			Help: "Current historical volatility estimate",
		},
	)

	// CurrentDrawdownGauge tracks the latest computed drawdown
	CurrentDrawdownGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_current_drawdown",
			Help: "Current drawdown as a fraction of peak equity",
		},
	)
)
