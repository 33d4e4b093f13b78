package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/cityweather/internal/logger"
	"github.com/evyataryagoni/cityweather/internal/metrics"
	"github.com/evyataryagoni/cityweather/internal/models"
	"github.com/evyataryagoni/cityweather/internal/provider"
	"github.com/evyataryagoni/cityweather/internal/session"
)

// User-visible failure messages
const (
	MessageEmptyInput     = "Please enter a city name"
	MessageGenericFailure = "Failed to fetch weather data. Please try again."
)

// ErrSubmissionInFlight is returned when a session submits while its previous lookup is still loading.
// The submission is ignored: no provider call is made and the state is left untouched.
var ErrSubmissionInFlight = errors.New("a weather lookup is already in flight for this session")

// Options tunes a WeatherLookup
type Options struct {
	RequestTimeout time.Duration // provider deadline, 0 means 10s
	LeaseGrace     time.Duration // extra Loading lease on top of RequestTimeout, 0 means 5s
}

// WeatherLookup drives the form's request lifecycle
// This is the service layer - it sits between handlers and the provider
//
// Responsibilities:
//   - Reject empty input before any I/O
//   - Enforce one in-flight lookup per session (later submissions are ignored)
//   - Call the provider under a deadline
//   - Reduce every failure to a user-visible RequestState
type WeatherLookup struct {
	provider provider.Provider
	sessions session.Store
	options  Options
	metrics  *metrics.Metrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewWeatherLookup creates a new lookup component
//
// Parameters:
//   - p: the weather provider (real client or a test double)
//   - sessions: where each form session's state lives
//   - opts: timeouts
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewWeatherLookup(p provider.Provider, sessions session.Store, opts Options, m *metrics.Metrics, log *logger.Logger) *WeatherLookup {
	if log == nil {
		log = logger.NewDefault()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.LeaseGrace <= 0 {
		opts.LeaseGrace = 5 * time.Second
	}

	return &WeatherLookup{
		provider: p,
		sessions: sessions,
		options:  opts,
		metrics:  m,
		logger:   log.WithComponent("WeatherLookup"),
		now:      time.Now,
	}
}

// Submit runs one lookup for the session and returns the resulting snapshot
//
// Flow:
//  1. Ignore the submission if the session is already loading
//  2. Fail locally on empty input
//  3. Move to Loading, call the provider, then Succeeded or Failed
//
// Lookup failures never come back as errors; they are recorded in the snapshot state.
// The returned error is ErrSubmissionInFlight or a session store failure.
func (l *WeatherLookup) Submit(ctx context.Context, sessionID, city string) (*models.Snapshot, error) {
	log := l.logger.WithSession(sessionID)

	current, err := l.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if current.InFlight(l.now()) {
		log.Debug().Msg("Submission ignored, lookup already in flight")
		l.count("ignored")
		return current, ErrSubmissionInFlight
	}

	query := strings.TrimSpace(city)
	if query == "" {
		log.Debug().Msg("Empty city submitted")
		return l.reject(ctx, sessionID, models.Failed(models.ReasonEmptyInput, MessageEmptyInput))
	}

	won, err := l.sessions.BeginLoading(ctx, sessionID, l.now().Add(l.options.RequestTimeout+l.options.LeaseGrace))
	if err != nil {
		return nil, fmt.Errorf("failed to begin loading: %w", err)
	}
	if !won {
		// Lost a race with another submission for the same session
		return l.ignored(ctx, sessionID)
	}

	if l.metrics != nil {
		l.metrics.WeatherLookupsInFlight.Inc()
		defer l.metrics.WeatherLookupsInFlight.Dec()
	}

	// The provider call outlives a caller that goes away; only the deadline stops it
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.options.RequestTimeout)
	result, err := l.provider.Current(fetchCtx, query)
	cancel()

	if err != nil {
		state := failureState(err)
		log.Warn().Err(err).Str("city", query).Str("reason", string(state.Reason)).Msg("Weather lookup failed")
		return l.finish(ctx, sessionID, state, nil)
	}

	log.Info().
		Str("city", result.CityName).
		Str("country", result.CountryName).
		Float64("temp_c", result.TemperatureCelsius).
		Msg("Weather lookup successful")
	return l.finish(ctx, sessionID, models.Succeeded(), result)
}

// Snapshot returns what the session currently displays
func (l *WeatherLookup) Snapshot(ctx context.Context, sessionID string) (*models.Snapshot, error) {
	snapshot, err := l.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return snapshot, nil
}

// Loading reports whether a lookup is in flight for the session
func (l *WeatherLookup) Loading(ctx context.Context, sessionID string) (bool, error) {
	snapshot, err := l.Snapshot(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return snapshot.InFlight(l.now()), nil
}

// Close cleans up resources
// This will close the underlying session store
func (l *WeatherLookup) Close() error {
	return l.sessions.Close()
}

// reject records a failure that never reached the provider.
// Another submission may have started loading since the in-flight check; its lease wins.
func (l *WeatherLookup) reject(ctx context.Context, sessionID string, state models.RequestState) (*models.Snapshot, error) {
	recorded, err := l.sessions.Reject(ctx, sessionID, state)
	if err != nil {
		return nil, fmt.Errorf("failed to store lookup outcome: %w", err)
	}
	if !recorded {
		return l.ignored(ctx, sessionID)
	}

	l.count(string(state.Reason))

	snapshot, err := l.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return snapshot, nil
}

// ignored returns the snapshot of a session whose live lease belongs to another submission
func (l *WeatherLookup) ignored(ctx context.Context, sessionID string) (*models.Snapshot, error) {
	l.count("ignored")
	snapshot, err := l.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return snapshot, ErrSubmissionInFlight
}

// finish records the outcome and returns the fresh snapshot.
// It must run even if the caller is gone, otherwise the session would stay Loading until its lease ends.
func (l *WeatherLookup) finish(ctx context.Context, sessionID string, state models.RequestState, result *models.WeatherResult) (*models.Snapshot, error) {
	ctx = context.WithoutCancel(ctx)

	outcome := "success"
	if state.Status == models.StatusFailed {
		outcome = string(state.Reason)
	}
	l.count(outcome)

	if err := l.sessions.Complete(ctx, sessionID, state, result); err != nil {
		return nil, fmt.Errorf("failed to store lookup outcome: %w", err)
	}

	snapshot, err := l.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return snapshot, nil
}

func (l *WeatherLookup) count(outcome string) {
	if l.metrics != nil {
		l.metrics.WeatherLookupsTotal.WithLabelValues(outcome).Inc()
	}
}

// failureState maps a provider error onto the user-visible state.
// Only a structured provider message is shown verbatim.
func failureState(err error) models.RequestState {
	var apiErr *provider.APIError
	switch {
	case errors.As(err, &apiErr):
		return models.Failed(models.ReasonProviderError, apiErr.Message)
	case errors.Is(err, provider.ErrUnexpectedStatus):
		return models.Failed(models.ReasonProviderError, MessageGenericFailure)
	case errors.Is(err, provider.ErrSchemaMismatch):
		return models.Failed(models.ReasonSchemaMismatch, MessageGenericFailure)
	default:
		return models.Failed(models.ReasonNetworkFailure, MessageGenericFailure)
	}
}
