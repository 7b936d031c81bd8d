package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

func TestRunMonteCarloValidation(t *testing.T) {
	_, err := RunMonteCarlo(context.Background(), nil, MonteCarloConfig{InitialBalance: 0})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunMonteCarloNoClosedTrades(t *testing.T) {
	trades := []models.Trade{{Side: models.TradeSideBuy}}
	result, err := RunMonteCarlo(context.Background(), trades, MonteCarloConfig{
		Iterations:     100,
		Seed:           1,
		InitialBalance: 1000,
	})
	require.NoError(t, err)

	// nothing to resample: every path ends at the starting balance
	assert.Zero(t, result.MeanReturn)
	assert.Zero(t, result.StdReturn)
	assert.Zero(t, result.ProbabilityOfProfit)
	assert.Zero(t, result.ProbabilityOfRuin)
	for _, balance := range result.Distribution {
		assert.Equal(t, 1000.0, balance)
	}
}

func TestRunMonteCarloProfitableTrades(t *testing.T) {
	trades := []models.Trade{closedTrade(10), closedTrade(20), closedTrade(5)}
	result, err := RunMonteCarlo(context.Background(), trades, MonteCarloConfig{
		Iterations:     500,
		Seed:           42,
		InitialBalance: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, 500, result.Iterations)
	assert.Greater(t, result.MeanReturn, 0.0)
	assert.Equal(t, 1.0, result.ProbabilityOfProfit)
	assert.Zero(t, result.ProbabilityOfRuin)
	assert.GreaterOrEqual(t, result.VaR95, 0.0)
	assert.Len(t, result.Distribution, 500)
}

func TestRunMonteCarloRuin(t *testing.T) {
	// a single trade losing the whole balance ruins every path
	trades := []models.Trade{closedTrade(-1000)}
	result, err := RunMonteCarlo(context.Background(), trades, MonteCarloConfig{
		Iterations:     50,
		Seed:           7,
		InitialBalance: 1000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.ProbabilityOfRuin)
	assert.Zero(t, result.ProbabilityOfProfit)
}

func TestRunMonteCarloDeterministicWithSeed(t *testing.T) {
	trades := []models.Trade{closedTrade(10), closedTrade(-8), closedTrade(4)}
	cfg := MonteCarloConfig{Iterations: 200, Seed: 99, InitialBalance: 1000}

	first, err := RunMonteCarlo(context.Background(), trades, cfg)
	require.NoError(t, err)
	second, err := RunMonteCarlo(context.Background(), trades, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Distribution, second.Distribution)
	assert.Equal(t, first.MeanReturn, second.MeanReturn)
	assert.Equal(t, first.VaR95, second.VaR95)
}

func TestRunMonteCarloCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trades := []models.Trade{closedTrade(10)}
	_, err := RunMonteCarlo(ctx, trades, MonteCarloConfig{Iterations: 100, Seed: 1, InitialBalance: 1000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateConfidenceIntervals(t *testing.T) {
	distribution := make([]float64, 100)
	for i := range distribution {
		distribution[i] = float64(i + 1)
	}
	intervals := CalculateConfidenceIntervals(distribution, []float64{0.9, 0.95})

	require.Contains(t, intervals, "90%")
	require.Contains(t, intervals, "95%")
	assert.Greater(t, intervals["95%"], intervals["90%"])
}
