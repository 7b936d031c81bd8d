package backtest

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/models"
	"github.com/yourusername/crypto-orchestrator/internal/risk"
	"github.com/yourusername/crypto-orchestrator/internal/signal"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// scriptedSource emits a fixed action at chosen bar indexes and holds
// everywhere else, keyed by the index of the last bar in the window.
type scriptedSource struct {
	actions map[int]signal.Action
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) Predict(ctx context.Context, bars []models.Bar) (signal.Prediction, error) {
	action, ok := s.actions[len(bars)-1]
	if !ok {
		action = signal.ActionHold
	}
	return signal.Prediction{Action: action, Confidence: 1}, nil
}

type failingSource struct{ err error }

func (s *failingSource) Name() string { return "failing" }

func (s *failingSource) Predict(ctx context.Context, bars []models.Bar) (signal.Prediction, error) {
	return signal.Prediction{}, s.err
}

func priceSeries(t *testing.T, prices []float64) *marketdata.Series {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(prices))
	for i, p := range prices {
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      p,
			High:      p,
			Low:       p,
			Close:     p,
			Volume:    1,
		}
	}
	series, err := marketdata.NewSeries("BTC/USDT", bars)
	require.NoError(t, err)
	return series
}

func flatPrices(n int, price float64) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = price
	}
	return prices
}

func newTestEngine(t *testing.T, source signal.Source) *Engine {
	t.Helper()
	manager := risk.NewManager(
		risk.DefaultLimits(),
		risk.TradeParams{RiskPerTrade: 0.02, StopLoss: 0.02, TakeProfit: 0.03},
		risk.NewMemoryHistory(),
		nil,
		testLogger(),
	)
	engine, err := NewEngine(Config{BotID: "bot-test", InitialBalance: 1000}, source, manager, testLogger())
	require.NoError(t, err)
	return engine
}

func TestNewEngine(t *testing.T) {
	manager := risk.NewManager(risk.DefaultLimits(), risk.TradeParams{RiskPerTrade: 0.02, StopLoss: 0.02, TakeProfit: 0.03}, nil, nil, testLogger())

	t.Run("requires signal source", func(t *testing.T) {
		_, err := NewEngine(Config{}, nil, manager, testLogger())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("requires risk manager", func(t *testing.T) {
		_, err := NewEngine(Config{}, &scriptedSource{}, nil, testLogger())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("rejects excessive commission", func(t *testing.T) {
		_, err := NewEngine(Config{Commission: 0.5}, &scriptedSource{}, manager, testLogger())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("applies defaults", func(t *testing.T) {
		engine, err := NewEngine(Config{}, &scriptedSource{}, manager, testLogger())
		require.NoError(t, err)
		assert.Equal(t, DefaultWarmupBars, engine.Config().WarmupBars)
		assert.Equal(t, DefaultAnnualizationPeriods, engine.Config().AnnualizationPeriods)
		assert.Equal(t, StatusIdle, engine.Status())
	})
}

func TestRunInsufficientData(t *testing.T) {
	engine := newTestEngine(t, &scriptedSource{})

	_, err := engine.Run(context.Background(), priceSeries(t, flatPrices(30, 100)))
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Equal(t, StatusFailed, engine.Status())

	t.Run("one bar short of warmup fails", func(t *testing.T) {
		engine := newTestEngine(t, &scriptedSource{})
		_, err := engine.Run(context.Background(), priceSeries(t, flatPrices(DefaultWarmupBars-1, 100)))
		assert.ErrorIs(t, err, ErrInsufficientData)
	})

	t.Run("exactly warmup bars completes empty", func(t *testing.T) {
		engine := newTestEngine(t, &scriptedSource{})
		result, err := engine.Run(context.Background(), priceSeries(t, flatPrices(DefaultWarmupBars, 100)))
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, engine.Status())
		assert.Empty(t, result.Trades)
		assert.Empty(t, result.EquityCurve)
		assert.Equal(t, 1000.0, result.FinalBalance)
	})
}

func TestRunHoldOnly(t *testing.T) {
	engine := newTestEngine(t, &scriptedSource{})

	result, err := engine.Run(context.Background(), priceSeries(t, flatPrices(60, 100)))
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, engine.Status())

	assert.Zero(t, result.TotalTrades)
	assert.Zero(t, result.TotalReturn)
	assert.Zero(t, result.WinRate)
	assert.Zero(t, result.ProfitFactor)
	assert.Equal(t, 1000.0, result.FinalBalance)
	assert.Len(t, result.EquityCurve, 60-DefaultWarmupBars)
}

func TestRunRoundTrip(t *testing.T) {
	prices := flatPrices(60, 100)
	for i := 55; i < 60; i++ {
		prices[i] = 110
	}
	source := &scriptedSource{actions: map[int]signal.Action{
		50: signal.ActionBuy,
		55: signal.ActionSell,
	}}
	engine := newTestEngine(t, source)

	result, err := engine.Run(context.Background(), priceSeries(t, prices))
	require.NoError(t, err)

	require.Equal(t, 2, result.TotalTrades)
	buy, sell := result.Trades[0], result.Trades[1]

	// fresh history: bootstrap kelly 0.01 sizes
	// 1000 * 0.02 * 0.01 / (100 * 0.02) = 0.1 units
	assert.Equal(t, models.TradeSideBuy, buy.Side)
	assert.InDelta(t, 0.1, buy.Amount, 1e-9)
	assert.InDelta(t, 10.0, buy.Total, 1e-9)
	assert.InDelta(t, 0.01, buy.Fee, 1e-9)
	assert.Nil(t, buy.RealizedPnL)

	assert.Equal(t, models.TradeSideSell, sell.Side)
	require.NotNil(t, sell.RealizedPnL)
	assert.InDelta(t, 11.0-10.0-0.011, *sell.RealizedPnL, 1e-9)

	assert.Equal(t, 1.0, result.WinRate)
	assert.True(t, math.IsInf(result.ProfitFactor, 1))

	expectedBalance := 1000.0 - 10.0 - 0.01 + 11.0 - 0.011
	assert.InDelta(t, expectedBalance, result.FinalBalance, 1e-9)
	assert.InDelta(t, (expectedBalance-1000)/1000, result.TotalReturn, 1e-9)
}

func TestRunBuyIsNoOpWithOpenPosition(t *testing.T) {
	source := &scriptedSource{actions: map[int]signal.Action{
		50: signal.ActionBuy,
		51: signal.ActionBuy,
		52: signal.ActionBuy,
	}}
	engine := newTestEngine(t, source)

	result, err := engine.Run(context.Background(), priceSeries(t, flatPrices(60, 100)))
	require.NoError(t, err)

	// only the first buy fills and the position is never closed
	assert.Equal(t, 1, result.TotalTrades)
	assert.Zero(t, result.WinRate)
}

func TestRunSellIsNoOpWithoutPosition(t *testing.T) {
	source := &scriptedSource{actions: map[int]signal.Action{
		50: signal.ActionSell,
		51: signal.ActionSell,
	}}
	engine := newTestEngine(t, source)

	result, err := engine.Run(context.Background(), priceSeries(t, flatPrices(60, 100)))
	require.NoError(t, err)
	assert.Zero(t, result.TotalTrades)
}

func TestRunSignalSourceFailure(t *testing.T) {
	sourceErr := errors.New("model server down")
	engine := newTestEngine(t, &failingSource{err: sourceErr})

	_, err := engine.Run(context.Background(), priceSeries(t, flatPrices(60, 100)))
	require.Error(t, err)
	assert.ErrorIs(t, err, sourceErr)
	assert.Equal(t, StatusFailed, engine.Status())

	var barErr *BarError
	require.ErrorAs(t, err, &barErr)
	assert.Equal(t, DefaultWarmupBars, barErr.Index)
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := newTestEngine(t, &scriptedSource{})
	result, err := engine.Run(ctx, priceSeries(t, flatPrices(60, 100)))

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusFailed, engine.Status())

	var barErr *BarError
	assert.ErrorAs(t, err, &barErr)
}

func TestRunDeterminism(t *testing.T) {
	prices := flatPrices(70, 100)
	for i := 60; i < 70; i++ {
		prices[i] = 105
	}
	script := map[int]signal.Action{50: signal.ActionBuy, 60: signal.ActionSell}

	first, err := newTestEngine(t, &scriptedSource{actions: script}).Run(context.Background(), priceSeries(t, prices))
	require.NoError(t, err)
	second, err := newTestEngine(t, &scriptedSource{actions: script}).Run(context.Background(), priceSeries(t, prices))
	require.NoError(t, err)

	assert.Equal(t, first.TotalReturn, second.TotalReturn)
	assert.Equal(t, first.SharpeRatio, second.SharpeRatio)
	assert.Equal(t, first.MaxDrawdown, second.MaxDrawdown)
	assert.Equal(t, first.TotalTrades, second.TotalTrades)
	require.Equal(t, len(first.Trades), len(second.Trades))
	for i := range first.Trades {
		assert.Equal(t, first.Trades[i].Amount, second.Trades[i].Amount)
		assert.Equal(t, first.Trades[i].Price, second.Trades[i].Price)
	}
}

func TestRunEquityCurveMarksToMarket(t *testing.T) {
	prices := flatPrices(60, 100)
	prices[51] = 120
	source := &scriptedSource{actions: map[int]signal.Action{50: signal.ActionBuy}}
	engine := newTestEngine(t, source)

	result, err := engine.Run(context.Background(), priceSeries(t, prices))
	require.NoError(t, err)

	// bar 50: long 0.1 @ 100, cash 989.99, equity 999.99
	// bar 51: mark at 120, equity 989.99 + 12
	require.Len(t, result.EquityCurve, 10)
	assert.InDelta(t, 999.99, result.EquityCurve[0].Equity, 1e-9)
	assert.InDelta(t, 1001.99, result.EquityCurve[1].Equity, 1e-9)
}
