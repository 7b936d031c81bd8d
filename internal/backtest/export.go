package backtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/crypto-orchestrator/internal/models"
	"github.com/yourusername/crypto-orchestrator/internal/repository"
)

// ExportToJSON writes an aggregated result to a JSON file for downstream
// model training.
func ExportToJSON(result AggregatedResult, outputPath string) error {
	if outputPath == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	return os.WriteFile(outputPath, data, 0o644)
}

// SaveResult persists a completed run through the result repository.
func SaveResult(ctx context.Context, result *models.BacktestResult, repo repository.BacktestResultRepository) error {
	if repo == nil {
		return fmt.Errorf("backtest result repository is required")
	}
	if err := repo.Create(ctx, result); err != nil {
		return fmt.Errorf("failed to persist backtest result: %w", err)
	}
	return nil
}
