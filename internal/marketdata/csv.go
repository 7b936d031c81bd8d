package marketdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// Expected CSV header: timestamp,open,high,low,close,volume
// Timestamps are RFC3339 or unix seconds. Prices are parsed through
// decimal to normalize exchange exports that carry trailing zeros or
// scientific notation.

// LoadCSV reads an OHLCV CSV file into a validated Series.
func LoadCSV(path, symbol string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open market data file: %w", err)
	}
	defer f.Close()

	return ParseCSV(f, symbol)
}

// ParseCSV reads OHLCV rows from the reader into a validated Series.
func ParseCSV(r io.Reader, symbol string) (*Series, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) < 6 {
		return nil, fmt.Errorf("%w: expected 6 columns, got %d", ErrInvalidBar, len(header))
	}

	var bars []models.Bar
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", line, err)
		}
		line++

		bar, err := parseBar(record)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		bars = append(bars, bar)
	}

	return NewSeries(symbol, bars)
}

func parseBar(record []string) (models.Bar, error) {
	if len(record) < 6 {
		return models.Bar{}, fmt.Errorf("%w: expected 6 fields, got %d", ErrInvalidBar, len(record))
	}

	ts, err := parseTimestamp(record[0])
	if err != nil {
		return models.Bar{}, err
	}

	fields := [5]float64{}
	names := [5]string{"open", "high", "low", "close", "volume"}
	for i := 0; i < 5; i++ {
		d, err := decimal.NewFromString(record[i+1])
		if err != nil {
			return models.Bar{}, fmt.Errorf("%w: bad %s %q", ErrInvalidBar, names[i], record[i+1])
		}
		fields[i] = d.InexactFloat64()
	}

	return models.Bar{
		Timestamp: ts,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: bad timestamp %q", ErrInvalidBar, value)
}
