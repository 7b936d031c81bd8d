package signal

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// MomentumSource is a deterministic SMA-crossover signal. It exists so
// backtests can run without a model server: same bars in, same prediction
// out, every time.
type MomentumSource struct {
	fastPeriod int
	slowPeriod int
	threshold  float64
	logger     *logrus.Logger
}

// NewMomentumSource creates a momentum source with the given SMA periods.
// The threshold is the minimum relative gap between the fast and slow
// averages before a buy or sell fires; below it the source holds.
func NewMomentumSource(fastPeriod, slowPeriod int, threshold float64, logger *logrus.Logger) (*MomentumSource, error) {
	if fastPeriod <= 0 || slowPeriod <= fastPeriod {
		return nil, fmt.Errorf("%w: fast period %d must be positive and below slow period %d",
			ErrInvalidPrediction, fastPeriod, slowPeriod)
	}
	return &MomentumSource{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
		threshold:  threshold,
		logger:     logger,
	}, nil
}

// Name returns the source identifier.
func (s *MomentumSource) Name() string {
	return "momentum"
}

// Predict compares fast and slow moving averages over the window.
func (s *MomentumSource) Predict(ctx context.Context, bars []models.Bar) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}
	if len(bars) < s.slowPeriod {
		return Prediction{}, fmt.Errorf("%w: have %d bars, need %d", ErrNotEnoughBars, len(bars), s.slowPeriod)
	}

	closes := marketdata.Closes(bars)
	fast := sma(closes, s.fastPeriod)
	slow := sma(closes, s.slowPeriod)
	gap := (fast - slow) / slow

	prediction := Prediction{
		Action:     ActionHold,
		Confidence: confidenceFromGap(gap, s.threshold),
		Reasoning: []string{
			fmt.Sprintf("sma_fast(%d)=%.4f", s.fastPeriod, fast),
			fmt.Sprintf("sma_slow(%d)=%.4f", s.slowPeriod, slow),
			fmt.Sprintf("gap=%.4f threshold=%.4f", gap, s.threshold),
		},
	}

	switch {
	case gap > s.threshold:
		prediction.Action = ActionBuy
	case gap < -s.threshold:
		prediction.Action = ActionSell
	}

	s.logger.WithFields(logrus.Fields{
		"source":     s.Name(),
		"action":     prediction.Action,
		"confidence": prediction.Confidence,
		"gap":        gap,
	}).Debug("Momentum prediction")

	PredictionsTotal.WithLabelValues(s.Name(), "false").Inc()
	return prediction, nil
}

func sma(closes []float64, period int) float64 {
	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period)
}

// confidenceFromGap maps the crossover gap onto [0.5, 1.0): the wider the
// gap relative to the threshold, the more confident the signal.
func confidenceFromGap(gap, threshold float64) float64 {
	if threshold <= 0 {
		return 0.5
	}
	strength := math.Abs(gap) / threshold
	return math.Min(0.5+0.1*strength, 0.99)
}
