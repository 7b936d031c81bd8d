package backtest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// WalkForwardConfig configures walk-forward analysis over a bar series.
type WalkForwardConfig struct {
	TrainBars          int
	TestBars           int
	StepBars           int
	MinTradesPerWindow int
}

// WalkForwardWindow represents one in-sample/out-of-sample split
type WalkForwardWindow struct {
	WindowID     int     `json:"window_id"`
	TrainStart   int     `json:"train_start"`
	TrainEnd     int     `json:"train_end"`
	TestStart    int     `json:"test_start"`
	TestEnd      int     `json:"test_end"`
	TrainMetrics Metrics `json:"train_metrics"`
	TestMetrics  Metrics `json:"test_metrics"`
}

// WalkForwardResult represents walk-forward analysis result
type WalkForwardResult struct {
	Windows           []WalkForwardWindow `json:"windows"`
	AggregatedMetrics Metrics             `json:"aggregated_metrics"`
	ConsistencyScore  float64             `json:"consistency_score"`
	OverfitScore      float64             `json:"overfit_score"`
}

// EngineFactory builds a fresh engine (with fresh trade history) for
// each walk-forward segment so windows do not leak state into each other.
type EngineFactory func() (*Engine, error)

// RunWalkForward slides train/test windows across the series, replaying
// each segment with a fresh engine, and scores how consistently the
// out-of-sample windows hold up against the in-sample ones.
func RunWalkForward(ctx context.Context, factory EngineFactory, series *marketdata.Series, cfg WalkForwardConfig) (WalkForwardResult, error) {
	if factory == nil {
		return WalkForwardResult{}, fmt.Errorf("%w: engine factory is required", ErrInvalidConfig)
	}
	if cfg.TrainBars <= 0 || cfg.TestBars <= 0 {
		return WalkForwardResult{}, fmt.Errorf("%w: train and test windows must be positive", ErrInvalidConfig)
	}
	if cfg.StepBars <= 0 {
		cfg.StepBars = cfg.TestBars
	}

	windows := []WalkForwardWindow{}
	windowID := 0

	for start := 0; start+cfg.TrainBars+cfg.TestBars <= series.Len(); start += cfg.StepBars {
		trainEnd := start + cfg.TrainBars
		testEnd := trainEnd + cfg.TestBars
		windowID++

		trainResult, trainMetrics, err := runSegment(ctx, factory, series, start, trainEnd)
		if err != nil {
			return WalkForwardResult{}, fmt.Errorf("train window %d: %w", windowID, err)
		}
		testResult, testMetrics, err := runSegment(ctx, factory, series, trainEnd, testEnd)
		if err != nil {
			return WalkForwardResult{}, fmt.Errorf("test window %d: %w", windowID, err)
		}

		if cfg.MinTradesPerWindow > 0 &&
			(trainResult.TotalTrades < cfg.MinTradesPerWindow || testResult.TotalTrades < cfg.MinTradesPerWindow) {
			continue
		}

		windows = append(windows, WalkForwardWindow{
			WindowID:     windowID,
			TrainStart:   start,
			TrainEnd:     trainEnd,
			TestStart:    trainEnd,
			TestEnd:      testEnd,
			TrainMetrics: trainMetrics,
			TestMetrics:  testMetrics,
		})
	}

	return WalkForwardResult{
		Windows:           windows,
		AggregatedMetrics: aggregateWalkForward(windows),
		ConsistencyScore:  CalculateConsistency(windows),
		OverfitScore:      calculateOverfitScore(windows),
	}, nil
}

func runSegment(ctx context.Context, factory EngineFactory, series *marketdata.Series, from, to int) (*models.BacktestResult, Metrics, error) {
	engine, err := factory()
	if err != nil {
		return nil, Metrics{}, err
	}

	segment, err := marketdata.NewSeries(series.Symbol(), series.Window(from, to))
	if err != nil {
		return nil, Metrics{}, err
	}

	result, err := engine.Run(ctx, segment)
	if err != nil {
		return nil, Metrics{}, err
	}

	curve := make(EquityCurve, len(result.EquityCurve))
	for i, p := range result.EquityCurve {
		curve[i] = EquityPoint{Time: p.Timestamp, Value: p.Equity}
	}
	metrics := CalculateMetrics(result.Trades, curve, engine.Config().InitialBalance, engine.Config().AnnualizationPeriods)
	return result, metrics, nil
}

// CalculateConsistency calculates the fraction of profitable test windows
func CalculateConsistency(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	profitable := 0
	for _, w := range windows {
		if w.TestMetrics.TotalReturn > 0 {
			profitable++
		}
	}
	return float64(profitable) / float64(len(windows))
}

func calculateOverfitScore(windows []WalkForwardWindow) float64 {
	if len(windows) == 0 {
		return 0
	}
	trainReturn := 0.0
	testReturn := 0.0
	for _, w := range windows {
		trainReturn += w.TrainMetrics.TotalReturn
		testReturn += w.TestMetrics.TotalReturn
	}
	if trainReturn == 0 {
		return 0
	}
	return (trainReturn - testReturn) / trainReturn
}

func aggregateWalkForward(windows []WalkForwardWindow) Metrics {
	if len(windows) == 0 {
		return Metrics{}
	}
	metrics := Metrics{}
	for _, w := range windows {
		metrics.TotalReturn += w.TestMetrics.TotalReturn
		metrics.SharpeRatio += w.TestMetrics.SharpeRatio
		metrics.MaxDrawdown += w.TestMetrics.MaxDrawdown
	}
	metrics.TotalReturn /= float64(len(windows))
	metrics.SharpeRatio /= float64(len(windows))
	metrics.MaxDrawdown /= float64(len(windows))
	return metrics
}

// ToJSON exports the walk-forward result as JSON.
func (w WalkForwardResult) ToJSON() string {
	data, _ := json.Marshal(w)
	return string(data)
}
