package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/models"
)

type recordingBarRepository struct {
	symbol  string
	batches [][]models.Bar
	err     error
}

func (r *recordingBarRepository) InsertBatch(ctx context.Context, symbol string, bars []models.Bar) error {
	if r.err != nil {
		return r.err
	}
	r.symbol = symbol
	r.batches = append(r.batches, bars)
	return nil
}

func (r *recordingBarRepository) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	return nil, nil
}

func (r *recordingBarRepository) GetLatest(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	return nil, nil
}

func testSeries(t *testing.T, n int) *marketdata.Series {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      100,
			High:      100,
			Low:       100,
			Close:     100,
			Volume:    1,
		}
	}
	series, err := marketdata.NewSeries("BTC/USDT", bars)
	require.NoError(t, err)
	return series
}

func TestIngestSeriesBatches(t *testing.T) {
	repo := &recordingBarRepository{}
	svc := NewIngestionService(repo, logrus.New(), 100)

	metrics, err := svc.IngestSeries(context.Background(), testSeries(t, 250))
	require.NoError(t, err)

	assert.Equal(t, "BTC/USDT", repo.symbol)
	require.Len(t, repo.batches, 3)
	assert.Len(t, repo.batches[0], 100)
	assert.Len(t, repo.batches[1], 100)
	assert.Len(t, repo.batches[2], 50)

	assert.Equal(t, 250, metrics.TotalBars)
	assert.Equal(t, 250, metrics.InsertedBars)
	assert.Equal(t, 3, metrics.Batches)
	assert.Equal(t, 0, metrics.Errors)
}

func TestIngestSeriesInsertFailure(t *testing.T) {
	repo := &recordingBarRepository{err: errors.New("connection refused")}
	svc := NewIngestionService(repo, logrus.New(), 100)

	metrics, err := svc.IngestSeries(context.Background(), testSeries(t, 10))
	require.Error(t, err)
	assert.Equal(t, 1, metrics.Errors)
	assert.Equal(t, 0, metrics.InsertedBars)
}

func TestIngestCSV(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	content := "timestamp,open,high,low,close,volume\n"
	for i := 0; i < 5; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		content += fmt.Sprintf("%s,100,101,99,100.5,12.5\n", ts.Format(time.RFC3339))
	}

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	repo := &recordingBarRepository{}
	svc := NewIngestionService(repo, logrus.New(), 100)

	metrics, err := svc.IngestCSV(context.Background(), path, "ETH/USDT")
	require.NoError(t, err)
	assert.Equal(t, 5, metrics.InsertedBars)
	assert.Equal(t, "ETH/USDT", repo.symbol)
}

func TestIngestCSVMissingFile(t *testing.T) {
	svc := NewIngestionService(&recordingBarRepository{}, logrus.New(), 100)
	_, err := svc.IngestCSV(context.Background(), "/nonexistent/bars.csv", "BTC/USDT")
	assert.Error(t, err)
}
