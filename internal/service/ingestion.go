// Package service contains the data ingestion workflow that loads
// historical OHLCV data into persistent storage.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/repository"
)

// IngestionService handles the market data ingestion workflow
type IngestionService struct {
	bars      repository.BarRepository
	metrics   *IngestionMetrics
	logger    *logrus.Logger
	batchSize int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(bars repository.BarRepository, logger *logrus.Logger, batchSize int) *IngestionService {
	if batchSize <= 0 {
		batchSize = 500
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &IngestionService{
		bars:      bars,
		metrics:   NewIngestionMetrics(),
		logger:    logger,
		batchSize: batchSize,
	}
}

// IngestCSV loads an OHLCV CSV file and persists its bars. Parsing and
// ordering validation happen up front so a malformed file fails before
// anything is written.
func (s *IngestionService) IngestCSV(ctx context.Context, path, symbol string) (*IngestionMetrics, error) {
	series, err := marketdata.LoadCSV(path, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to load market data: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"path":   path,
		"symbol": symbol,
		"bars":   series.Len(),
	}).Info("Starting market data ingestion")

	return s.IngestSeries(ctx, series)
}

// IngestSeries persists a validated series in batches. Bars already
// stored for the same symbol and timestamp are left untouched.
func (s *IngestionService) IngestSeries(ctx context.Context, series *marketdata.Series) (*IngestionMetrics, error) {
	s.metrics.Reset()
	startTime := time.Now()

	total := series.Len()
	s.metrics.setTotal(total)

	for i := 0; i < total; i += s.batchSize {
		end := i + s.batchSize
		if end > total {
			end = total
		}

		batch := series.Window(i, end)
		if err := s.bars.InsertBatch(ctx, series.Symbol(), batch); err != nil {
			s.metrics.RecordError()
			s.metrics.setDuration(time.Since(startTime))
			return s.metrics, fmt.Errorf("failed to insert batch %d-%d: %w", i, end, err)
		}
		s.metrics.RecordBatch(len(batch))
	}

	s.metrics.setDuration(time.Since(startTime))
	s.logger.WithFields(logrus.Fields{
		"symbol":   series.Symbol(),
		"bars":     s.metrics.InsertedBars,
		"batches":  s.metrics.Batches,
		"duration": s.metrics.Duration,
	}).Info("Market data ingestion complete")

	return s.metrics, nil
}

// GetMetrics returns current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}
