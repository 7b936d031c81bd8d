package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRegistryIsSingleton(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	assert.Same(t, first, second)
}

func TestRecordHelpers(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordTradeExecuted("buy")
		RecordTradeExecuted("sell")
		RecordSignalEvaluation(0.05)
		RecordRiskEvaluation()
		RecordBacktestRun("historical_replay", "success")
		RecordBacktestDuration(12.5)
		RecordCompositeScore("bot-1", "historical_replay", 0.65)
	})
}

func TestUpdateGauges(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		value float64
	}{
		{name: "positive equity", value: 10000},
		{name: "zero equity", value: 0},
		{name: "fractional drawdown", value: 0.12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateEquity(tt.value)
				UpdateOpenPositionValue(tt.value)
				UpdateDrawdown(tt.value)
				UpdateTotalReturn("bot-1", tt.value)
			})
		})
	}
}

func TestHandler(t *testing.T) {
	InitRegistry()
	assert.NotNil(t, Handler())
}
