package models

import "time"

// WeatherResult is the normalized set of fields shown for a city
// It is only ever built from a provider response that passed validation
type WeatherResult struct {
	CityName           string  `json:"city_name"`
	CountryName        string  `json:"country_name"`
	TemperatureCelsius float64 `json:"temperature_celsius"`
	ConditionText      string  `json:"condition_text"`
	IconURL            string  `json:"icon_url"`
}

// Status is the lifecycle stage of one lookup attempt
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// FailureReason classifies why a lookup ended in StatusFailed
type FailureReason string

const (
	ReasonEmptyInput     FailureReason = "empty_input"
	ReasonNetworkFailure FailureReason = "network_failure"
	ReasonProviderError  FailureReason = "provider_error"
	ReasonSchemaMismatch FailureReason = "schema_mismatch"
)

// RequestState is a tagged variant: Message and Reason are only set when Status is StatusFailed.
// Build values with the constructors below rather than by hand.
type RequestState struct {
	Status  Status        `json:"status"`
	Message string        `json:"message,omitempty"`
	Reason  FailureReason `json:"reason,omitempty"`
}

func Idle() RequestState      { return RequestState{Status: StatusIdle} }
func Loading() RequestState   { return RequestState{Status: StatusLoading} }
func Succeeded() RequestState { return RequestState{Status: StatusSucceeded} }

// Failed returns a failed state carrying a user-visible message
func Failed(reason FailureReason, message string) RequestState {
	return RequestState{Status: StatusFailed, Reason: reason, Message: message}
}

// Snapshot is what one form session currently displays
type Snapshot struct {
	State  RequestState   `json:"state"`
	Result *WeatherResult `json:"result,omitempty"` // last successful result, kept across failures

	// LoadingUntil bounds how long a Loading state is honored.
	// A Loading snapshot past its lease belongs to a submission that never resolved.
	LoadingUntil time.Time `json:"-"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// InFlight reports whether a submission is still outstanding at the given time
func (s Snapshot) InFlight(now time.Time) bool {
	return s.State.Status == StatusLoading && now.Before(s.LoadingUntil)
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
}

// LookupResponse is the JSON view of a session snapshot
type LookupResponse struct {
	SessionID string         `json:"session_id"`
	Loading   bool           `json:"loading"`
	State     RequestState   `json:"state"`
	Result    *WeatherResult `json:"result,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}
