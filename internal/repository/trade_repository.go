package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/crypto-orchestrator/internal/database"
	"github.com/yourusername/crypto-orchestrator/internal/models"
)

const (
	errScanTrade = "failed to scan trade: %w"

	tradeColumns = "id, bot_id, symbol, side, amount, price, fee, total, realized_pnl, executed_at"
)

// PostgresTradeRepository implements TradeRepository for PostgreSQL
type PostgresTradeRepository struct {
	db *database.DB
}

// NewPostgresTradeRepository creates a new trade repository
func NewPostgresTradeRepository(db *database.DB) TradeRepository {
	return &PostgresTradeRepository{db: db}
}

// Create inserts a trade for a bot
func (r *PostgresTradeRepository) Create(ctx context.Context, botID string, trade *models.Trade) error {
	if trade.ID == uuid.Nil {
		return models.ErrInvalidID
	}
	if trade.Symbol == "" {
		return models.ErrSymbolRequired
	}

	query := `
		INSERT INTO trades (id, bot_id, symbol, side, amount, price, fee, total, realized_pnl, executed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := r.db.GetPool().Exec(ctx, query,
		trade.ID, botID, trade.Symbol, trade.Side, trade.Amount,
		trade.Price, trade.Fee, trade.Total, trade.RealizedPnL, trade.Timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: trade %s", models.ErrDuplicateKey, trade.ID)
		}
		return fmt.Errorf("failed to save trade: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by ID
func (r *PostgresTradeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Trade, error) {
	if id == uuid.Nil {
		return nil, models.ErrInvalidID
	}

	query := "SELECT " + tradeColumns + " FROM trades WHERE id = $1"

	trade := &models.Trade{}
	var botID string
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&trade.ID, &botID, &trade.Symbol, &trade.Side, &trade.Amount,
		&trade.Price, &trade.Fee, &trade.Total, &trade.RealizedPnL, &trade.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf(errScanTrade, err)
	}
	return trade, nil
}

// GetByBot retrieves all trades for a bot in execution order
func (r *PostgresTradeRepository) GetByBot(ctx context.Context, botID string) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE bot_id = $1 ORDER BY executed_at ASC"
	return r.queryTrades(ctx, query, botID)
}

// GetByBotAndRange retrieves trades for a bot within a time range
func (r *PostgresTradeRepository) GetByBotAndRange(ctx context.Context, botID string, start, end time.Time) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE bot_id = $1 AND executed_at >= $2 AND executed_at <= $3 ORDER BY executed_at ASC"
	return r.queryTrades(ctx, query, botID, start, end)
}

// GetClosedByBot retrieves trades with a realized P&L for a bot
func (r *PostgresTradeRepository) GetClosedByBot(ctx context.Context, botID string) ([]models.Trade, error) {
	query := "SELECT " + tradeColumns + " FROM trades WHERE bot_id = $1 AND realized_pnl IS NOT NULL ORDER BY executed_at ASC"
	return r.queryTrades(ctx, query, botID)
}

func (r *PostgresTradeRepository) queryTrades(ctx context.Context, query string, args ...interface{}) ([]models.Trade, error) {
	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades: %w", err)
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var trade models.Trade
		var botID string
		if err := rows.Scan(
			&trade.ID, &botID, &trade.Symbol, &trade.Side, &trade.Amount,
			&trade.Price, &trade.Fee, &trade.Total, &trade.RealizedPnL, &trade.Timestamp,
		); err != nil {
			return nil, fmt.Errorf(errScanTrade, err)
		}
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

// TradeHistory adapts the trade repository to the risk engine's history
// provider for one bot.
type TradeHistory struct {
	repo  TradeRepository
	botID string
}

// NewTradeHistory creates a persistent trade history for a bot.
func NewTradeHistory(repo TradeRepository, botID string) *TradeHistory {
	return &TradeHistory{repo: repo, botID: botID}
}

// Trades returns the bot's trades in execution order.
func (h *TradeHistory) Trades(ctx context.Context) ([]models.Trade, error) {
	return h.repo.GetByBot(ctx, h.botID)
}

// Record appends an executed trade to the bot's history.
func (h *TradeHistory) Record(ctx context.Context, trade models.Trade) error {
	return h.repo.Create(ctx, h.botID, &trade)
}
