package backtest

import (
	"errors"
	"fmt"
	"time"
)

// Custom errors
var (
	// ErrInsufficientData indicates the series is shorter than the warm-up window
	ErrInsufficientData = errors.New("insufficient historical data for backtesting")

	// ErrInvalidConfig indicates the backtest configuration is invalid
	ErrInvalidConfig = errors.New("invalid backtest configuration")

	// ErrAlreadyRunning indicates a run is in progress on this engine
	ErrAlreadyRunning = errors.New("backtest already running")
)

// BarError wraps a failure at a specific bar of the simulation so callers
// can see exactly where a run died.
type BarError struct {
	Index     int
	Timestamp time.Time
	Err       error
}

func (e *BarError) Error() string {
	return fmt.Sprintf("bar %d (%s): %v", e.Index, e.Timestamp.Format(time.RFC3339), e.Err)
}

func (e *BarError) Unwrap() error {
	return e.Err
}
