package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// TradeRepository defines the interface for trade data access
type TradeRepository interface {
	Create(ctx context.Context, botID string, trade *models.Trade) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Trade, error)
	GetByBot(ctx context.Context, botID string) ([]models.Trade, error)
	GetByBotAndRange(ctx context.Context, botID string, start, end time.Time) ([]models.Trade, error)
	GetClosedByBot(ctx context.Context, botID string) ([]models.Trade, error)
}

// BarRepository defines the interface for OHLCV time-series access
type BarRepository interface {
	InsertBatch(ctx context.Context, symbol string, bars []models.Bar) error
	GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error)
	GetLatest(ctx context.Context, symbol string, limit int) ([]models.Bar, error)
}

// BacktestResultRepository defines the interface for backtest result access
type BacktestResultRepository interface {
	Create(ctx context.Context, result *models.BacktestResult) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestResult, error)
	GetBySymbol(ctx context.Context, symbol string, limit int) ([]*models.BacktestResult, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestResult, error)
}
