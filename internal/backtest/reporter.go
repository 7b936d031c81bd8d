package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// GenerateConsoleReport formats a completed run for terminal output
func GenerateConsoleReport(result *models.BacktestResult) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	builder.WriteString(fmt.Sprintf("Symbol: %s\n", result.Symbol))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", result.TotalReturn*100))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", result.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", result.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%%\n", result.WinRate*100))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", result.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Total Trades: %d\n", result.TotalTrades))
	builder.WriteString(fmt.Sprintf("Final Balance: %.2f\n", result.FinalBalance))
	return builder.String()
}

// GenerateAggregatedReport formats combined replay/resampling results
func GenerateAggregatedReport(result AggregatedResult) string {
	var builder strings.Builder
	builder.WriteString("Aggregated Backtest Report\n")
	builder.WriteString("==========================\n")
	builder.WriteString(fmt.Sprintf("Composite Score: %.2f\n", result.CompositeScore))
	builder.WriteString(fmt.Sprintf("Recommendation: %s\n", result.Recommendation))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", result.HistoricalReplayMetrics.TotalReturn*100))
	builder.WriteString(fmt.Sprintf("Sharpe Ratio: %.2f\n", result.HistoricalReplayMetrics.SharpeRatio))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", result.HistoricalReplayMetrics.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Monte Carlo P(profit): %.2f\n", result.MonteCarloResult.ProbabilityOfProfit))
	builder.WriteString(fmt.Sprintf("Walk-Forward Consistency: %.2f\n", result.WalkForwardResult.ConsistencyScore))
	return builder.String()
}

// GenerateCSVExport exports key metrics for spreadsheets
func GenerateCSVExport(result *models.BacktestResult, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	csv := "metric,value\n" +
		fmt.Sprintf("total_return,%.4f\n", result.TotalReturn) +
		fmt.Sprintf("sharpe_ratio,%.4f\n", result.SharpeRatio) +
		fmt.Sprintf("max_drawdown,%.4f\n", result.MaxDrawdown) +
		fmt.Sprintf("win_rate,%.4f\n", result.WinRate) +
		fmt.Sprintf("profit_factor,%.4f\n", result.ProfitFactor) +
		fmt.Sprintf("total_trades,%d\n", result.TotalTrades) +
		fmt.Sprintf("final_balance,%.4f\n", result.FinalBalance)
	return os.WriteFile(outputPath, []byte(csv), 0o644)
}

// ExportEquityCurveCSV writes the equity curve next to the metrics export
func ExportEquityCurveCSV(curve EquityCurve, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte(curve.ToCSV()), 0o644)
}
