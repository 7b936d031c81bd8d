package backtest

import (
	"encoding/json"
	"math"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// Metrics represents backtest performance metrics
type Metrics struct {
	TotalReturn    float64 `json:"total_return"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	SortinoRatio   float64 `json:"sortino_ratio"`
	MaxDrawdown    float64 `json:"max_drawdown"`
	WinRate        float64 `json:"win_rate"`
	ProfitFactor   float64 `json:"profit_factor"`
	TotalTrades    int     `json:"total_trades"`
	WinningTrades  int     `json:"winning_trades"`
	LosingTrades   int     `json:"losing_trades"`
	AverageWin     float64 `json:"average_win"`
	AverageLoss    float64 `json:"average_loss"`
	Expectancy     float64 `json:"expectancy"`
	LargestWin     float64 `json:"largest_win"`
	LargestLoss    float64 `json:"largest_loss"`
	ValueAtRisk95  float64 `json:"var_95"`
	FinalBalance   float64 `json:"final_balance"`
	InitialBalance float64 `json:"initial_balance"`
}

// CalculateMetrics derives performance metrics from executed trades and
// the equity curve. It is a pure function of its inputs: an empty run
// yields zeroed metrics, never an error.
func CalculateMetrics(trades []models.Trade, curve EquityCurve, initialBalance float64, annualizationPeriods int) Metrics {
	metrics := Metrics{
		TotalTrades:    len(trades),
		InitialBalance: initialBalance,
		FinalBalance:   initialBalance,
	}

	if len(curve) > 0 {
		final := curve[len(curve)-1].Value
		metrics.FinalBalance = final
		if initialBalance > 0 {
			metrics.TotalReturn = (final - initialBalance) / initialBalance
		}
	}

	returns := curve.GetReturns()
	metrics.SharpeRatio = sharpeRatio(returns, annualizationPeriods)
	metrics.SortinoRatio = sortinoRatio(returns, annualizationPeriods)
	metrics.MaxDrawdown = maxDrawdown(curve, initialBalance)
	metrics.ValueAtRisk95 = valueAtRisk(returns, 0.95)

	closed := closedPnLs(trades)
	metrics.WinningTrades, metrics.LosingTrades, metrics.AverageWin, metrics.AverageLoss,
		metrics.LargestWin, metrics.LargestLoss = tradeStats(closed)
	metrics.WinRate = winRate(metrics.WinningTrades, len(closed))
	metrics.ProfitFactor = profitFactor(closed)
	metrics.Expectancy = expectancy(closed)

	return metrics
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func closedPnLs(trades []models.Trade) []float64 {
	pnls := make([]float64, 0, len(trades))
	for i := range trades {
		if trades[i].RealizedPnL != nil {
			pnls = append(pnls, *trades[i].RealizedPnL)
		}
	}
	return pnls
}

// sharpeRatio annualizes mean/stddev of periodic returns. Zero when there
// are fewer than two equity samples or returns do not vary.
func sharpeRatio(returns []float64, annualizationPeriods int) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std * math.Sqrt(float64(annualizationPeriods))
}

func sortinoRatio(returns []float64, annualizationPeriods int) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := downsideStddev(returns)
	if std == 0 {
		return 0
	}
	return average(returns) / std * math.Sqrt(float64(annualizationPeriods))
}

// maxDrawdown seeds the running peak with the starting balance so a curve
// that only ever declines still reports its full drawdown.
func maxDrawdown(curve EquityCurve, initialBalance float64) float64 {
	maxDD := 0.0
	peak := initialBalance
	for _, p := range curve {
		if p.Value > peak {
			peak = p.Value
		}
		if peak == 0 {
			continue
		}
		drawdown := (peak - p.Value) / peak
		if drawdown > maxDD {
			maxDD = drawdown
		}
	}
	return maxDD
}

// profitFactor is gross profit over gross loss. A run with profits and no
// losses is +Inf; a run with no closed trades is 0.
func profitFactor(pnls []float64) float64 {
	grossProfit := 0.0
	grossLoss := 0.0
	for _, pnl := range pnls {
		if pnl > 0 {
			grossProfit += pnl
		} else {
			grossLoss += math.Abs(pnl)
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

func expectancy(pnls []float64) float64 {
	if len(pnls) == 0 {
		return 0
	}
	net := 0.0
	for _, pnl := range pnls {
		net += pnl
	}
	return net / float64(len(pnls))
}

func valueAtRisk(returns []float64, level float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64{}, returns...)
	sortFloats(sorted)
	index := int(math.Floor((1.0 - level) * float64(len(sorted))))
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func tradeStats(pnls []float64) (int, int, float64, float64, float64, float64) {
	wins := 0
	losses := 0
	winSum := 0.0
	lossSum := 0.0
	largestWin := 0.0
	largestLoss := 0.0
	for _, pnl := range pnls {
		if pnl > 0 {
			wins++
			winSum += pnl
			if pnl > largestWin {
				largestWin = pnl
			}
		} else if pnl < 0 {
			losses++
			lossSum += pnl
			if pnl < largestLoss {
				largestLoss = pnl
			}
		}
	}

	avgWin := 0.0
	avgLoss := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return wins, losses, avgWin, avgLoss, largestWin, largestLoss
}

func winRate(wins, closed int) float64 {
	if closed == 0 {
		return 0
	}
	return float64(wins) / float64(closed)
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func downsideStddev(values []float64) float64 {
	negatives := make([]float64, 0)
	for _, v := range values {
		if v < 0 {
			negatives = append(negatives, v)
		}
	}
	return stddev(negatives)
}

func sortFloats(values []float64) {
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			if values[j] < values[i] {
				values[i], values[j] = values[j], values[i]
			}
		}
	}
}
