// Package helpers provides shared utilities for integration and
// end-to-end tests.
package helpers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// MockSignalServer creates a mock HTTP prediction service speaking the
// remote signal source protocol. The decide callback receives the
// number of bars in each request and returns the action and confidence
// to respond with. If apiKey is non-empty the server rejects requests
// without a matching bearer token.
func MockSignalServer(t *testing.T, apiKey string, decide func(numBars int) (string, float64)) *httptest.Server {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/predict" || r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if apiKey != "" && r.Header.Get("Authorization") != "Bearer "+apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req struct {
			Bars []json.RawMessage `json:"bars"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		action, confidence := decide(len(req.Bars))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"action":     action,
			"confidence": confidence,
		})
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// WriteBarsCSV writes hourly OHLCV bars with the given close prices to
// a CSV file in a temp directory and returns its path.
func WriteBarsCSV(t *testing.T, prices []float64) string {
	t.Helper()

	content := "timestamp,open,high,low,close,volume\n"
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, price := range prices {
		ts := start.Add(time.Duration(i) * time.Hour)
		content += fmt.Sprintf("%s,%g,%g,%g,%g,1\n", ts.Format(time.RFC3339), price, price, price, price)
	}

	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// CreateTestContext creates a context with a timeout for testing.
func CreateTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// WaitForCondition waits for a condition to become true or times out.
func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool, message string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	require.Fail(t, "condition not met within timeout", message)
}

// GetEnvOrDefault returns environment variable value or a default.
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SkipIfShort skips test if running in short mode.
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode")
	}
}
