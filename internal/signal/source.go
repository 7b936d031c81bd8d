package signal

import (
	"context"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// Action is a trading decision emitted by a signal source
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Valid reports whether the action is one the engine understands.
func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold:
		return true
	}
	return false
}

// Prediction is the output of a signal source for one bar window.
// Confidence is in [0, 1]; Reasoning carries human-readable factors.
type Prediction struct {
	Action     Action   `json:"action"`
	Confidence float64  `json:"confidence"`
	Reasoning  []string `json:"reasoning"`
}

// Source produces a trading prediction from a window of historical bars.
// The engine treats the source as opaque: any error it returns fails the
// run, and malformed actions are rejected before the trade path.
type Source interface {
	// Name identifies the source in logs and metrics.
	Name() string

	// Predict returns a prediction for the most recent bar in the window.
	// Implementations must not retain or mutate the bars slice.
	Predict(ctx context.Context, bars []models.Bar) (Prediction, error)
}
