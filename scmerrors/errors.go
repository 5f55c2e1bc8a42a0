package scmerrors

import (
	"errors"
	"fmt"
)

// Common error types for categorization and handling

var (
	// ErrNotConfigured indicates a required external endpoint or key is missing
	ErrNotConfigured = errors.New("service not configured")

	// ErrNoData indicates an aggregation scope matched no records
	ErrNoData = errors.New("no data for this scope")

	// ErrInsufficientData indicates too little history for a local forecast
	ErrInsufficientData = errors.New("insufficient historical data")

	// ErrRateLimited indicates the generation endpoint rejected us for rate limits
	ErrRateLimited = errors.New("rate limited")

	// ErrQuotaExceeded indicates a quota or permission failure (not retryable)
	ErrQuotaExceeded = errors.New("quota or permission denied")

	// ErrServiceUnavailable indicates a required service is unavailable
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrEmptyResponse indicates the generation endpoint returned no usable text
	ErrEmptyResponse = errors.New("empty generation response")
)

// WrapError wraps an error with context message
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsNoData checks if error is a no-data error
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// IsRateLimited checks if error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsServiceUnavailable checks if error is a service unavailable error
func IsServiceUnavailable(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}
