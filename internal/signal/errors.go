// Package signal provides trading signal sources for the simulation engine.
package signal

import "errors"

var (
	// ErrSourceUnavailable indicates the signal source is unreachable
	ErrSourceUnavailable = errors.New("signal source unavailable")

	// ErrInvalidPrediction indicates the prediction response is invalid
	ErrInvalidPrediction = errors.New("invalid prediction response")

	// ErrNotEnoughBars indicates the window is too short to predict on
	ErrNotEnoughBars = errors.New("not enough bars for prediction")

	// ErrTimeout indicates the prediction request timed out
	ErrTimeout = errors.New("prediction request timeout")
)
