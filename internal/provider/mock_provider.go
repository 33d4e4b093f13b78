package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/evyataryagoni/cityweather/internal/models"
)

// MockProvider is a test double for the Provider interface
// It allows tests to control behavior and verify interactions
type MockProvider struct {
	mu sync.Mutex

	// Results maps a city query to the result returned for it
	Results map[string]*models.WeatherResult

	// CurrentError, when set, is returned for every call
	CurrentError error

	// Gate, when set, holds every call until it is closed or ctx ends.
	// Entered receives the city once a call is waiting on Gate.
	Gate    chan struct{}
	Entered chan string

	currentCalls []string
}

// NewMockProvider creates a mock provider with sample data
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Results: map[string]*models.WeatherResult{
			"Paris": {
				CityName:           "Paris",
				CountryName:        "France",
				TemperatureCelsius: 18,
				ConditionText:      "Sunny",
				IconURL:            "https://example.com/icon.png",
			},
			"London": {
				CityName:           "London",
				CountryName:        "United Kingdom",
				TemperatureCelsius: 11.5,
				ConditionText:      "Light rain",
				IconURL:            "https://cdn.weatherapi.com/weather/64x64/day/296.png",
			},
		},
	}
}

// Current implements the Provider interface
func (m *MockProvider) Current(ctx context.Context, city string) (*models.WeatherResult, error) {
	m.mu.Lock()
	m.currentCalls = append(m.currentCalls, city)
	gate, entered := m.Gate, m.Entered
	m.mu.Unlock()

	if gate != nil {
		if entered != nil {
			entered <- city
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrNetwork, ctx.Err())
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CurrentError != nil {
		return nil, m.CurrentError
	}

	result, ok := m.Results[city]
	if !ok {
		return nil, &APIError{StatusCode: 400, Code: 1006, Message: "No matching location found."}
	}

	copied := *result
	return &copied, nil
}

// CurrentCalls returns the cities Current was called with, in order
func (m *MockProvider) CurrentCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.currentCalls...)
}
