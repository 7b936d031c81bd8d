package marketdata

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

func makeBars(t *testing.T, closes ...float64) []models.Bar {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			Volume:    100,
		}
	}
	return bars
}

func TestNewSeries(t *testing.T) {
	t.Run("valid ascending series", func(t *testing.T) {
		series, err := NewSeries("BTC/USDT", makeBars(t, 100, 101, 102))
		require.NoError(t, err)
		assert.Equal(t, 3, series.Len())
		assert.Equal(t, "BTC/USDT", series.Symbol())
		assert.Equal(t, 102.0, series.Bar(2).Close)
	})

	t.Run("empty series rejected", func(t *testing.T) {
		_, err := NewSeries("BTC/USDT", nil)
		assert.ErrorIs(t, err, ErrEmptySeries)
	})

	t.Run("unsorted series rejected", func(t *testing.T) {
		bars := makeBars(t, 100, 101, 102)
		bars[1].Timestamp = bars[2].Timestamp.Add(time.Hour)
		_, err := NewSeries("BTC/USDT", bars)
		assert.ErrorIs(t, err, ErrUnsortedSeries)
	})

	t.Run("duplicate timestamps rejected", func(t *testing.T) {
		bars := makeBars(t, 100, 101)
		bars[1].Timestamp = bars[0].Timestamp
		_, err := NewSeries("BTC/USDT", bars)
		assert.ErrorIs(t, err, ErrUnsortedSeries)
	})

	t.Run("non-positive price rejected", func(t *testing.T) {
		bars := makeBars(t, 100, 101)
		bars[1].Close = 0
		_, err := NewSeries("BTC/USDT", bars)
		assert.ErrorIs(t, err, ErrInvalidBar)
	})

	t.Run("input slice is copied", func(t *testing.T) {
		bars := makeBars(t, 100, 101)
		series, err := NewSeries("BTC/USDT", bars)
		require.NoError(t, err)

		bars[0].Close = 999
		assert.Equal(t, 100.0, series.Bar(0).Close)
	})
}

func TestSeriesWindows(t *testing.T) {
	series, err := NewSeries("ETH/USDT", makeBars(t, 100, 101, 102, 103, 104))
	require.NoError(t, err)

	window := series.Window(1, 4)
	require.Len(t, window, 3)
	assert.Equal(t, 101.0, window[0].Close)
	assert.Equal(t, 103.0, window[2].Close)

	upTo := series.UpTo(2)
	require.Len(t, upTo, 3)
	assert.Equal(t, 102.0, upTo[2].Close)
}

func TestLogReturns(t *testing.T) {
	bars := makeBars(t, 100, 110, 99)
	returns := LogReturns(bars)
	require.Len(t, returns, 2)
	assert.InDelta(t, math.Log(1.1), returns[0], 1e-12)
	assert.InDelta(t, math.Log(0.9), returns[1], 1e-12)

	assert.Nil(t, LogReturns(bars[:1]))
}

func TestParseCSV(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		data := strings.Join([]string{
			"timestamp,open,high,low,close,volume",
			"2024-01-01T00:00:00Z,100.0,101.5,99.5,100.50,1200.0",
			"2024-01-01T01:00:00Z,100.5,102.0,100.0,101.25,900.0",
		}, "\n")

		series, err := ParseCSV(strings.NewReader(data), "BTC/USDT")
		require.NoError(t, err)
		assert.Equal(t, 2, series.Len())
		assert.Equal(t, 100.50, series.Bar(0).Close)
		assert.Equal(t, 1200.0, series.Bar(0).Volume)
	})

	t.Run("unix timestamps", func(t *testing.T) {
		data := strings.Join([]string{
			"timestamp,open,high,low,close,volume",
			"1704067200,100,101,99,100,10",
		}, "\n")

		series, err := ParseCSV(strings.NewReader(data), "BTC/USDT")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series.Bar(0).Timestamp)
	})

	t.Run("bad price rejected", func(t *testing.T) {
		data := strings.Join([]string{
			"timestamp,open,high,low,close,volume",
			"2024-01-01T00:00:00Z,100,101,99,not-a-number,10",
		}, "\n")

		_, err := ParseCSV(strings.NewReader(data), "BTC/USDT")
		assert.ErrorIs(t, err, ErrInvalidBar)
	})

	t.Run("missing columns rejected", func(t *testing.T) {
		data := "timestamp,open\n2024-01-01T00:00:00Z,100\n"
		_, err := ParseCSV(strings.NewReader(data), "BTC/USDT")
		assert.Error(t, err)
	})
}
