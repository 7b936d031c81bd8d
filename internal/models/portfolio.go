package models

// Portfolio tracks account state for a single simulation run or bot
// session. It has a single writer (the simulation loop); no concurrent
// mutation is permitted mid-run.
type Portfolio struct {
	TotalBalance     float64              `json:"total_balance"`
	AvailableBalance float64              `json:"available_balance"`
	OpenPositions    map[string]*Position `json:"open_positions"`
	CumulativePnL    float64              `json:"cumulative_pnl"`
}

// NewPortfolio creates a portfolio with the given starting balance.
func NewPortfolio(startingBalance float64) *Portfolio {
	return &Portfolio{
		TotalBalance:     startingBalance,
		AvailableBalance: startingBalance,
		OpenPositions:    make(map[string]*Position),
	}
}

// Position returns the open position for a symbol, nil if none exists.
func (p *Portfolio) Position(symbol string) *Position {
	return p.OpenPositions[symbol]
}

// OpenPositionValue returns the mark-to-market value of all open positions
// at the given price.
func (p *Portfolio) OpenPositionValue(currentPrice float64) float64 {
	total := 0.0
	for _, pos := range p.OpenPositions {
		total += pos.Value(currentPrice)
	}
	return total
}

// Exposure returns open-position value as a fraction of total balance.
func (p *Portfolio) Exposure(currentPrice float64) float64 {
	if p.TotalBalance <= 0 {
		return 0
	}
	return p.OpenPositionValue(currentPrice) / p.TotalBalance
}

// MarkToMarket recomputes total balance from available balance plus open
// position value at the given price.
func (p *Portfolio) MarkToMarket(currentPrice float64) float64 {
	p.TotalBalance = p.AvailableBalance + p.OpenPositionValue(currentPrice)
	return p.TotalBalance
}
