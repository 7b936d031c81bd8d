package marketdata

import (
	"errors"
	"fmt"
	"math"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// Custom errors
var (
	ErrEmptySeries    = errors.New("market data series is empty")
	ErrUnsortedSeries = errors.New("market data series is not sorted by timestamp")
	ErrInvalidBar     = errors.New("invalid bar data")
)

// Series is an immutable, timestamp-ascending sequence of OHLCV bars for a
// single symbol. Construction validates ordering; after that the bars are
// never mutated, so concurrent reads are safe.
type Series struct {
	symbol string
	bars   []models.Bar
}

// NewSeries validates and wraps a slice of bars. Bars must be sorted by
// timestamp in ascending order and carry positive prices.
func NewSeries(symbol string, bars []models.Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, ErrEmptySeries
	}

	for i, bar := range bars {
		if bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0 {
			return nil, fmt.Errorf("%w: non-positive price at index %d", ErrInvalidBar, i)
		}
		if i > 0 && !bars[i-1].Timestamp.Before(bar.Timestamp) {
			return nil, fmt.Errorf("%w: index %d (%s) not after index %d (%s)",
				ErrUnsortedSeries, i, bar.Timestamp, i-1, bars[i-1].Timestamp)
		}
	}

	copied := make([]models.Bar, len(bars))
	copy(copied, bars)

	return &Series{symbol: symbol, bars: copied}, nil
}

// Symbol returns the trading pair the series belongs to.
func (s *Series) Symbol() string {
	return s.symbol
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.bars)
}

// Bar returns the bar at index i.
func (s *Series) Bar(i int) models.Bar {
	return s.bars[i]
}

// Window returns the bars in [from, to). Callers must pass valid bounds.
func (s *Series) Window(from, to int) []models.Bar {
	return s.bars[from:to]
}

// UpTo returns all bars up to and including index i.
func (s *Series) UpTo(i int) []models.Bar {
	return s.bars[:i+1]
}

// Closes extracts the close prices of the given bars.
func Closes(bars []models.Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}

// LogReturns computes log-returns of consecutive closes. The result has
// one fewer element than the input.
func LogReturns(bars []models.Bar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		returns = append(returns, math.Log(bars[i].Close/bars[i-1].Close))
	}
	return returns
}
