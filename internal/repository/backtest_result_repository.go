package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/crypto-orchestrator/internal/database"
	"github.com/yourusername/crypto-orchestrator/internal/models"
)

const (
	errScanBacktestResult = "failed to scan backtest result: %w"

	backtestResultColumns = `id, symbol, total_return, sharpe_ratio, max_drawdown, win_rate,
		total_trades, profit_factor, final_balance, trades, equity_curve, created_at`
)

// PostgresBacktestResultRepository implements BacktestResultRepository for PostgreSQL
type PostgresBacktestResultRepository struct {
	db *database.DB
}

// NewPostgresBacktestResultRepository creates a new backtest result repository
func NewPostgresBacktestResultRepository(db *database.DB) BacktestResultRepository {
	return &PostgresBacktestResultRepository{db: db}
}

// Create inserts a backtest result. Trades and the equity curve are
// stored as JSONB documents alongside the headline metrics.
func (r *PostgresBacktestResultRepository) Create(ctx context.Context, result *models.BacktestResult) error {
	if result.ID == uuid.Nil {
		return models.ErrInvalidID
	}
	if result.Symbol == "" {
		return models.ErrSymbolRequired
	}

	trades, err := json.Marshal(result.Trades)
	if err != nil {
		return fmt.Errorf("failed to marshal trades: %w", err)
	}
	curve, err := json.Marshal(result.EquityCurve)
	if err != nil {
		return fmt.Errorf("failed to marshal equity curve: %w", err)
	}

	query := `
		INSERT INTO backtest_results (
			id, symbol, total_return, sharpe_ratio, max_drawdown, win_rate,
			total_trades, profit_factor, final_balance, trades, equity_curve, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err = r.db.GetPool().Exec(ctx, query,
		result.ID, result.Symbol, result.TotalReturn, result.SharpeRatio, result.MaxDrawdown, result.WinRate,
		result.TotalTrades, result.ProfitFactor, result.FinalBalance, trades, curve, result.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: backtest result %s", models.ErrDuplicateKey, result.ID)
		}
		return fmt.Errorf("failed to save backtest result: %w", err)
	}
	return nil
}

// GetByID retrieves a backtest result by ID
func (r *PostgresBacktestResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidID
	}

	query := "SELECT " + backtestResultColumns + " FROM backtest_results WHERE id = $1"

	row := r.db.GetPool().QueryRow(ctx, query, id)
	result, err := scanBacktestResult(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return result, nil
}

// GetBySymbol retrieves recent backtest results for a symbol
func (r *PostgresBacktestResultRepository) GetBySymbol(ctx context.Context, symbol string, limit int) ([]*models.BacktestResult, error) {
	query := "SELECT " + backtestResultColumns + " FROM backtest_results WHERE symbol = $1 ORDER BY created_at DESC LIMIT $2"
	return r.queryResults(ctx, query, symbol, limit)
}

// GetLatest retrieves latest backtest results
func (r *PostgresBacktestResultRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestResult, error) {
	query := "SELECT " + backtestResultColumns + " FROM backtest_results ORDER BY created_at DESC LIMIT $1"
	return r.queryResults(ctx, query, limit)
}

func (r *PostgresBacktestResultRepository) queryResults(ctx context.Context, query string, args ...interface{}) ([]*models.BacktestResult, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest results: %w", err)
	}
	defer rows.Close()

	var results []*models.BacktestResult
	for rows.Next() {
		result, err := scanBacktestResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func scanBacktestResult(row pgx.Row) (*models.BacktestResult, error) {
	result := &models.BacktestResult{}
	var trades, curve []byte

	if err := row.Scan(
		&result.ID, &result.Symbol, &result.TotalReturn, &result.SharpeRatio, &result.MaxDrawdown, &result.WinRate,
		&result.TotalTrades, &result.ProfitFactor, &result.FinalBalance, &trades, &curve, &result.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf(errScanBacktestResult, err)
	}

	if len(trades) > 0 {
		if err := json.Unmarshal(trades, &result.Trades); err != nil {
			return nil, fmt.Errorf(errScanBacktestResult, err)
		}
	}
	if len(curve) > 0 {
		if err := json.Unmarshal(curve, &result.EquityCurve); err != nil {
			return nil, fmt.Errorf(errScanBacktestResult, err)
		}
	}
	return result, nil
}
