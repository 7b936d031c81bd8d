package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/crypto-orchestrator/internal/database"
	"github.com/yourusername/crypto-orchestrator/internal/models"
)

const errScanBar = "failed to scan bar: %w"

// PostgresBarRepository implements BarRepository for PostgreSQL. The
// market_data table is a TimescaleDB hypertable keyed on bucket time.
type PostgresBarRepository struct {
	db *database.DB
}

// NewPostgresBarRepository creates a new bar repository
func NewPostgresBarRepository(db *database.DB) BarRepository {
	return &PostgresBarRepository{db: db}
}

// InsertBatch inserts OHLCV bars for a symbol
func (r *PostgresBarRepository) InsertBatch(ctx context.Context, symbol string, bars []models.Bar) error {
	if symbol == "" {
		return models.ErrSymbolRequired
	}
	if len(bars) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO market_data (symbol, bucket_time, open, high, low, close, volume)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (symbol, bucket_time) DO NOTHING
	`
	for _, bar := range bars {
		batch.Queue(query, symbol, bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range bars {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert bars: %w", err)
		}
	}
	return nil
}

// GetRange retrieves bars for a symbol within a time range, ascending
func (r *PostgresBarRepository) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}

	query := `
		SELECT bucket_time, open, high, low, close, volume
		FROM market_data
		WHERE symbol = $1 AND bucket_time >= $2 AND bucket_time <= $3
		ORDER BY bucket_time ASC
	`
	rows, err := r.db.GetPool().Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query market data: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// GetLatest retrieves the most recent bars for a symbol, ascending
func (r *PostgresBarRepository) GetLatest(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}

	query := `
		SELECT bucket_time, open, high, low, close, volume
		FROM (
			SELECT bucket_time, open, high, low, close, volume
			FROM market_data
			WHERE symbol = $1
			ORDER BY bucket_time DESC
			LIMIT $2
		) recent
		ORDER BY bucket_time ASC
	`
	rows, err := r.db.GetPool().Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest market data: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

func scanBars(rows pgx.Rows) ([]models.Bar, error) {
	var bars []models.Bar
	for rows.Next() {
		var bar models.Bar
		if err := rows.Scan(&bar.Timestamp, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume); err != nil {
			return nil, fmt.Errorf(errScanBar, err)
		}
		bars = append(bars, bar)
	}
	return bars, rows.Err()
}
