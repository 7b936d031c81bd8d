package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/crypto-orchestrator/internal/risk"
	"github.com/yourusername/crypto-orchestrator/internal/signal"
)

func walkForwardFactory(script map[int]signal.Action) EngineFactory {
	return func() (*Engine, error) {
		manager := risk.NewManager(
			risk.DefaultLimits(),
			risk.TradeParams{RiskPerTrade: 0.02, StopLoss: 0.02, TakeProfit: 0.03},
			risk.NewMemoryHistory(),
			nil,
			testLogger(),
		)
		return NewEngine(Config{BotID: "bot-wf", InitialBalance: 1000}, &scriptedSource{actions: script}, manager, testLogger())
	}
}

func TestRunWalkForwardValidation(t *testing.T) {
	series := priceSeries(t, flatPrices(180, 100))

	t.Run("requires factory", func(t *testing.T) {
		_, err := RunWalkForward(context.Background(), nil, series, WalkForwardConfig{TrainBars: 60, TestBars: 60})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("requires positive windows", func(t *testing.T) {
		_, err := RunWalkForward(context.Background(), walkForwardFactory(nil), series, WalkForwardConfig{TrainBars: 0, TestBars: 60})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestRunWalkForwardWindows(t *testing.T) {
	// rising prices so every segment's round trip closes at a profit
	prices := make([]float64, 180)
	for i := range prices {
		prices[i] = 100 + 0.5*float64(i)
	}
	series := priceSeries(t, prices)
	script := map[int]signal.Action{50: signal.ActionBuy, 55: signal.ActionSell}

	result, err := RunWalkForward(context.Background(), walkForwardFactory(script), series, WalkForwardConfig{
		TrainBars: 60,
		TestBars:  60,
		StepBars:  60,
	})
	require.NoError(t, err)

	require.Len(t, result.Windows, 2)
	assert.Equal(t, 0, result.Windows[0].TrainStart)
	assert.Equal(t, 60, result.Windows[0].TrainEnd)
	assert.Equal(t, 120, result.Windows[0].TestEnd)
	assert.Equal(t, 60, result.Windows[1].TrainStart)
	assert.Equal(t, 180, result.Windows[1].TestEnd)

	// every test window is profitable
	assert.Equal(t, 1.0, result.ConsistencyScore)
	assert.Greater(t, result.AggregatedMetrics.TotalReturn, 0.0)
	for _, w := range result.Windows {
		assert.Equal(t, 2, w.TrainMetrics.TotalTrades)
		assert.Equal(t, 2, w.TestMetrics.TotalTrades)
	}
}

func TestRunWalkForwardMinTradesFilter(t *testing.T) {
	series := priceSeries(t, flatPrices(180, 100))
	script := map[int]signal.Action{50: signal.ActionBuy, 55: signal.ActionSell}

	result, err := RunWalkForward(context.Background(), walkForwardFactory(script), series, WalkForwardConfig{
		TrainBars:          60,
		TestBars:           60,
		StepBars:           60,
		MinTradesPerWindow: 3,
	})
	require.NoError(t, err)

	assert.Empty(t, result.Windows)
	assert.Zero(t, result.ConsistencyScore)
}

func TestCalculateConsistency(t *testing.T) {
	assert.Zero(t, CalculateConsistency(nil))

	windows := []WalkForwardWindow{
		{TestMetrics: Metrics{TotalReturn: 0.1}},
		{TestMetrics: Metrics{TotalReturn: -0.05}},
		{TestMetrics: Metrics{TotalReturn: 0.02}},
		{TestMetrics: Metrics{TotalReturn: 0.03}},
	}
	assert.InDelta(t, 0.75, CalculateConsistency(windows), 1e-12)
}

func TestCalculateOverfitScore(t *testing.T) {
	t.Run("zero without windows", func(t *testing.T) {
		assert.Zero(t, calculateOverfitScore(nil))
	})

	t.Run("positive when out of sample lags in sample", func(t *testing.T) {
		windows := []WalkForwardWindow{
			{TrainMetrics: Metrics{TotalReturn: 0.2}, TestMetrics: Metrics{TotalReturn: 0.05}},
			{TrainMetrics: Metrics{TotalReturn: 0.3}, TestMetrics: Metrics{TotalReturn: 0.1}},
		}
		assert.InDelta(t, 0.7, calculateOverfitScore(windows), 1e-12)
	})

	t.Run("zero when training is flat", func(t *testing.T) {
		windows := []WalkForwardWindow{
			{TrainMetrics: Metrics{TotalReturn: 0}, TestMetrics: Metrics{TotalReturn: 0.1}},
		}
		assert.Zero(t, calculateOverfitScore(windows))
	})
}
