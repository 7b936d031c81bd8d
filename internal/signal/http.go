package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// HTTPSourceConfig configures the remote prediction source.
type HTTPSourceConfig struct {
	BaseURL           string
	APIKey            string
	TimeoutSeconds    int
	RetryMax          int
	RequestsPerSecond float64
	WindowSize        int
}

// HTTPSource queries a remote model server for predictions. Requests are
// retried with backoff and rate-limited so a backtest replay cannot
// hammer the server.
type HTTPSource struct {
	client     *retryablehttp.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	windowSize int
	logger     *logrus.Logger
}

type predictRequest struct {
	Symbol string       `json:"symbol,omitempty"`
	Bars   []predictBar `json:"bars"`
}

type predictBar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// NewHTTPSource creates a remote signal source.
func NewHTTPSource(cfg HTTPSourceConfig, logger *logrus.Logger) *HTTPSource {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	client.Logger = nil

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	windowSize := cfg.WindowSize
	if windowSize <= 0 {
		windowSize = 50
	}

	return &HTTPSource{
		client:     client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		windowSize: windowSize,
		logger:     logger,
	}
}

// Name returns the source identifier.
func (s *HTTPSource) Name() string {
	return "remote"
}

// Predict posts the most recent bars to the model server.
func (s *HTTPSource) Predict(ctx context.Context, bars []models.Bar) (Prediction, error) {
	if len(bars) == 0 {
		return Prediction{}, ErrNotEnoughBars
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return Prediction{}, fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	start := time.Now()
	window := bars
	if len(window) > s.windowSize {
		window = window[len(window)-s.windowSize:]
	}

	payload := predictRequest{Bars: make([]predictBar, len(window))}
	for i, bar := range window {
		payload.Bars[i] = predictBar(bar)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/v1/predict", bytes.NewReader(body))
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		HTTPErrorsTotal.WithLabelValues("network").Inc()
		return Prediction{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		HTTPErrorsTotal.WithLabelValues("http_error").Inc()
		return Prediction{}, fmt.Errorf("%w: status %d: %s", ErrSourceUnavailable, resp.StatusCode, string(raw))
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		HTTPErrorsTotal.WithLabelValues("decode").Inc()
		return Prediction{}, fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}

	if !prediction.Action.Valid() {
		HTTPErrorsTotal.WithLabelValues("invalid_action").Inc()
		return Prediction{}, fmt.Errorf("%w: unknown action %q", ErrInvalidPrediction, prediction.Action)
	}

	s.logger.WithFields(logrus.Fields{
		"source":     s.Name(),
		"action":     prediction.Action,
		"confidence": prediction.Confidence,
		"duration":   time.Since(start),
	}).Debug("Remote prediction")

	PredictionsTotal.WithLabelValues(s.Name(), "false").Inc()
	PredictionLatency.WithLabelValues(s.Name()).Observe(time.Since(start).Seconds())

	return prediction, nil
}
