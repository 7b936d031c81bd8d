package risk

import (
	"context"
	"sync"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// TradeHistoryProvider supplies the executed trades the sizing and metric
// formulas are derived from. Backtests use the in-memory implementation;
// live bots plug in a database-backed one.
type TradeHistoryProvider interface {
	// Trades returns all recorded trades in execution order.
	Trades(ctx context.Context) ([]models.Trade, error)

	// Record appends an executed trade.
	Record(ctx context.Context, trade models.Trade) error
}

// MemoryHistory is an in-memory TradeHistoryProvider.
type MemoryHistory struct {
	mu     sync.RWMutex
	trades []models.Trade
}

// NewMemoryHistory creates an empty in-memory trade history.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{}
}

// Trades returns a copy of the recorded trades.
func (h *MemoryHistory) Trades(ctx context.Context) ([]models.Trade, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	trades := make([]models.Trade, len(h.trades))
	copy(trades, h.trades)
	return trades, nil
}

// Record appends a trade.
func (h *MemoryHistory) Record(ctx context.Context, trade models.Trade) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.trades = append(h.trades, trade)
	return nil
}

// Len returns the number of recorded trades.
func (h *MemoryHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.trades)
}
