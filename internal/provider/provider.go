package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/evyataryagoni/cityweather/internal/models"
)

// Provider fetches current conditions for a free-text city query
// Allows the real weatherapi.com client and test doubles to be swapped
type Provider interface {
	// Current returns the normalized weather for city or one of the errors below
	Current(ctx context.Context, city string) (*models.WeatherResult, error)
}

var (
	// ErrNetwork means no usable response arrived (transport failure, timeout, truncated body)
	ErrNetwork = errors.New("weather provider unreachable")

	// ErrUnexpectedStatus means a non-2xx response without a structured error body
	ErrUnexpectedStatus = errors.New("unexpected weather provider status")

	// ErrSchemaMismatch means a 2xx response whose body did not have the expected shape
	ErrSchemaMismatch = errors.New("unexpected weather provider response shape")
)

// APIError is a structured rejection returned by the provider, e.g. an unknown location
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("weather provider error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
}
