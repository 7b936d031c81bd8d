//go:build e2e

package e2e

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/crypto-orchestrator/internal/backtest"
	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/risk"
	"github.com/yourusername/crypto-orchestrator/internal/signal"
	"github.com/yourusername/crypto-orchestrator/test/helpers"
)

func e2eLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func newRiskManager(logger *logrus.Logger) *risk.Manager {
	return risk.NewManager(
		risk.DefaultLimits(),
		risk.TradeParams{RiskPerTrade: 0.02, StopLoss: 0.02, TakeProfit: 0.03},
		risk.NewMemoryHistory(),
		risk.NewLogSink(logger),
		logger,
	)
}

// TestBacktestPipelineWithRemoteSignals drives the whole pipeline: CSV
// market data is loaded, replayed against a remote prediction service,
// and the result is scored, stress-tested and exported.
func TestBacktestPipelineWithRemoteSignals(t *testing.T) {
	helpers.SkipIfShort(t)
	logger := e2eLogger()

	// 60 hourly bars: flat through the warmup, then a 10% jump after
	// the position opens.
	prices := make([]float64, 60)
	for i := range prices {
		if i >= 55 {
			prices[i] = 110
		} else {
			prices[i] = 100
		}
	}
	csvPath := helpers.WriteBarsCSV(t, prices)

	series, err := marketdata.LoadCSV(csvPath, "BTC/USDT")
	require.NoError(t, err)
	require.Equal(t, 60, series.Len())

	// The model buys right after warmup and takes profit five bars
	// later. Predictions carry one bar per request element, so the
	// request size identifies the bar being decided.
	server := helpers.MockSignalServer(t, "e2e-key", func(numBars int) (string, float64) {
		switch numBars {
		case 51:
			return "buy", 0.9
		case 56:
			return "sell", 0.9
		default:
			return "hold", 0.5
		}
	})

	source := signal.NewHTTPSource(signal.HTTPSourceConfig{
		BaseURL:           server.URL,
		APIKey:            "e2e-key",
		TimeoutSeconds:    5,
		RetryMax:          1,
		RequestsPerSecond: 1000,
		WindowSize:        200,
	}, logger)

	engine, err := backtest.NewEngine(backtest.Config{
		BotID:          "bot-e2e",
		InitialBalance: 1000,
	}, source, newRiskManager(logger), logger)
	require.NoError(t, err)

	ctx := helpers.CreateTestContext(t, time.Minute)
	result, err := engine.Run(ctx, series)
	require.NoError(t, err)
	require.Len(t, result.Trades, 2)
	assert.Greater(t, result.FinalBalance, 1000.0)

	curve := make(backtest.EquityCurve, len(result.EquityCurve))
	for i, p := range result.EquityCurve {
		curve[i] = backtest.EquityPoint{Time: p.Timestamp, Value: p.Equity}
	}
	historical := backtest.CalculateMetrics(result.Trades, curve, 1000, engine.Config().AnnualizationPeriods)
	assert.Greater(t, historical.TotalReturn, 0.0)
	assert.Equal(t, 1.0, historical.WinRate)

	monteCarlo, err := backtest.RunMonteCarlo(ctx, result.Trades, backtest.MonteCarloConfig{
		Iterations:      200,
		Seed:            42,
		InitialBalance:  1000,
		ConfidenceLevel: 0.95,
	})
	require.NoError(t, err)
	assert.Equal(t, 200, monteCarlo.Iterations)
	assert.Equal(t, 1.0, monteCarlo.ProbabilityOfProfit)

	aggregated := backtest.AggregateResults("bot-e2e", historical, monteCarlo, backtest.WalkForwardResult{}, backtest.DefaultAggregationWeights())
	assert.Equal(t, "bot-e2e", aggregated.BotID)
	assert.NotEmpty(t, aggregated.Recommendation)

	outputDir := t.TempDir()
	require.NoError(t, backtest.ExportToJSON(aggregated, filepath.Join(outputDir, "result.json")))
	require.NoError(t, backtest.ExportEquityCurveCSV(curve, filepath.Join(outputDir, "equity_curve.csv")))

	for _, name := range []string{"result.json", "equity_curve.csv"} {
		info, err := os.Stat(filepath.Join(outputDir, name))
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

// TestWalkForwardPipelineWithMomentumSignals validates the rolling
// train/test workflow end to end on a locally computed strategy.
func TestWalkForwardPipelineWithMomentumSignals(t *testing.T) {
	helpers.SkipIfShort(t)
	logger := e2eLogger()

	prices := make([]float64, 180)
	for i := range prices {
		prices[i] = 100 + 0.5*float64(i)
	}
	csvPath := helpers.WriteBarsCSV(t, prices)

	series, err := marketdata.LoadCSV(csvPath, "ETH/USDT")
	require.NoError(t, err)

	factory := func() (*backtest.Engine, error) {
		source, err := signal.NewMomentumSource(10, 30, 0.001, logger)
		if err != nil {
			return nil, err
		}
		return backtest.NewEngine(backtest.Config{
			BotID:          "bot-e2e-wf",
			InitialBalance: 1000,
		}, source, newRiskManager(logger), logger)
	}

	ctx := helpers.CreateTestContext(t, time.Minute)
	wf, err := backtest.RunWalkForward(ctx, factory, series, backtest.WalkForwardConfig{
		TrainBars:          60,
		TestBars:           60,
		StepBars:           60,
		MinTradesPerWindow: 0,
	})
	require.NoError(t, err)
	require.NotEmpty(t, wf.Windows)
	assert.GreaterOrEqual(t, wf.ConsistencyScore, 0.0)
	assert.LessOrEqual(t, wf.ConsistencyScore, 1.0)
}
