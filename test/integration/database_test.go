//go:build integration

package integration

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/crypto-orchestrator/internal/config"
	"github.com/yourusername/crypto-orchestrator/internal/database"
	"github.com/yourusername/crypto-orchestrator/internal/models"
	"github.com/yourusername/crypto-orchestrator/internal/repository"
	"github.com/yourusername/crypto-orchestrator/test/helpers"
)

// setupRepositories connects to the database named by TEST_DB_* env
// vars and skips when no test database is configured. Migrations must
// be applied beforehand via the migrate CLI.
func setupRepositories(t *testing.T) *repository.Repositories {
	t.Helper()

	host := helpers.GetEnvOrDefault("TEST_DB_HOST", "")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping database integration tests")
	}

	port, err := strconv.Atoi(helpers.GetEnvOrDefault("TEST_DB_PORT", "5432"))
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:               host,
		Port:               port,
		Name:               helpers.GetEnvOrDefault("TEST_DB_NAME", "crypto_orchestrator_test"),
		User:               helpers.GetEnvOrDefault("TEST_DB_USER", "test"),
		Password:           helpers.GetEnvOrDefault("TEST_DB_PASSWORD", "test"),
		SSLMode:            "disable",
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	ctx := helpers.CreateTestContext(t, 10*time.Second)
	db, err := database.NewDB(ctx, &cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repos, err := repository.NewRepositories(db)
	require.NoError(t, err)
	return repos
}

func TestTradeRepositoryRoundTrip(t *testing.T) {
	repos := setupRepositories(t)
	ctx := helpers.CreateTestContext(t, 10*time.Second)
	botID := "it-" + uuid.NewString()

	pnl := 11.5
	trades := []models.Trade{
		{
			ID:        uuid.New(),
			Symbol:    "BTC/USDT",
			Side:      models.TradeSideBuy,
			Amount:    0.1,
			Price:     100,
			Fee:       0.01,
			Total:     10,
			Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		},
		{
			ID:          uuid.New(),
			Symbol:      "BTC/USDT",
			Side:        models.TradeSideSell,
			Amount:      0.1,
			Price:       115,
			Fee:         0.0115,
			Total:       11.5,
			Timestamp:   time.Now().UTC().Truncate(time.Microsecond).Add(time.Hour),
			RealizedPnL: &pnl,
		},
	}

	for i := range trades {
		require.NoError(t, repos.Trade.Create(ctx, botID, &trades[i]))
	}

	stored, err := repos.Trade.GetByBot(ctx, botID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, trades[0].ID, stored[0].ID)

	closed, err := repos.Trade.GetClosedByBot(ctx, botID)
	require.NoError(t, err)
	require.Len(t, closed, 1)
	require.NotNil(t, closed[0].RealizedPnL)
	assert.InDelta(t, pnl, *closed[0].RealizedPnL, 1e-9)

	byID, err := repos.Trade.GetByID(ctx, trades[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.TradeSideBuy, byID.Side)

	_, err = repos.Trade.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBarRepositoryRoundTrip(t *testing.T) {
	repos := setupRepositories(t)
	ctx := helpers.CreateTestContext(t, 10*time.Second)
	symbol := "IT-" + uuid.NewString()[:8] + "/USDT"

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 10)
	for i := range bars {
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      100 + float64(i),
			High:      101 + float64(i),
			Low:       99 + float64(i),
			Close:     100.5 + float64(i),
			Volume:    1,
		}
	}

	require.NoError(t, repos.Bar.InsertBatch(ctx, symbol, bars))
	// Duplicate inserts are silently skipped.
	require.NoError(t, repos.Bar.InsertBatch(ctx, symbol, bars))

	stored, err := repos.Bar.GetRange(ctx, symbol, start, start.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stored, 10)
	assert.True(t, stored[0].Timestamp.Before(stored[9].Timestamp))

	latest, err := repos.Bar.GetLatest(ctx, symbol, 3)
	require.NoError(t, err)
	require.Len(t, latest, 3)
	assert.Equal(t, bars[9].Timestamp.Unix(), latest[2].Timestamp.Unix())
}

func TestBacktestResultRepositoryRoundTrip(t *testing.T) {
	repos := setupRepositories(t)
	ctx := helpers.CreateTestContext(t, 10*time.Second)

	result := &models.BacktestResult{
		ID:           uuid.New(),
		Symbol:       "BTC/USDT",
		TotalReturn:  0.12,
		SharpeRatio:  1.4,
		MaxDrawdown:  0.08,
		WinRate:      0.6,
		TotalTrades:  10,
		ProfitFactor: 2.1,
		FinalBalance: 1120,
		Trades:       []models.Trade{{ID: uuid.New(), Symbol: "BTC/USDT", Side: models.TradeSideBuy, Amount: 0.1, Price: 100, Timestamp: time.Now().UTC()}},
		EquityCurve:  []models.EquityPoint{{Timestamp: time.Now().UTC(), Equity: 1120}},
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, repos.BacktestResult.Create(ctx, result))

	stored, err := repos.BacktestResult.GetByID(ctx, result.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, stored.TotalReturn, 1e-9)
	require.Len(t, stored.Trades, 1)
	require.Len(t, stored.EquityCurve, 1)

	bySymbol, err := repos.BacktestResult.GetBySymbol(ctx, "BTC/USDT", 5)
	require.NoError(t, err)
	assert.NotEmpty(t, bySymbol)
}
