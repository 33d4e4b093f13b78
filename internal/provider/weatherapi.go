package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/evyataryagoni/cityweather/internal/logger"
	"github.com/evyataryagoni/cityweather/internal/metrics"
	"github.com/evyataryagoni/cityweather/internal/models"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes caps how much of a provider response is read
const maxBodyBytes = 1 << 20

// currentResponse mirrors the part of /current.json the lookup consumes.
// Pointers plus `required` let validation tell a missing field from a zero value.
type currentResponse struct {
	Location *locationDTO `json:"location" validate:"required"`
	Current  *currentDTO  `json:"current" validate:"required"`
}

type locationDTO struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country" validate:"required"`
}

type currentDTO struct {
	TempC     *float64      `json:"temp_c" validate:"required"`
	Condition *conditionDTO `json:"condition" validate:"required"`
}

type conditionDTO struct {
	Text string `json:"text" validate:"required"`
	Icon string `json:"icon" validate:"required"`
}

// errorResponse is the provider's error envelope: {"error":{"code":1006,"message":"..."}}
type errorResponse struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ClientOptions tunes the underlying HTTP client
type ClientOptions struct {
	Timeout           time.Duration // whole-request deadline, 0 means 10s
	ConnectionTimeout time.Duration // dial deadline, 0 means 5s
	HTTPClient        *http.Client  // overrides the built client entirely
}

// WeatherAPIClient talks to weatherapi.com's current conditions endpoint
type WeatherAPIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	validator  *validator.Validate
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

// NewWeatherAPIClient creates a client for the given base URL and credential
//
// Parameters:
//   - baseURL: endpoint root, e.g. https://api.weatherapi.com/v1
//   - apiKey: provider credential, sent as the `key` query parameter and never logged
//   - opts: HTTP tuning
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewWeatherAPIClient(baseURL, apiKey string, opts ClientOptions, m *metrics.Metrics, log *logger.Logger) *WeatherAPIClient {
	if log == nil {
		log = logger.NewDefault()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		if opts.Timeout == 0 {
			opts.Timeout = 10 * time.Second
		}
		if opts.ConnectionTimeout == 0 {
			opts.ConnectionTimeout = 5 * time.Second
		}
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				DialContext: (&net.Dialer{
					Timeout: opts.ConnectionTimeout,
				}).DialContext,
			},
		}
	}

	return &WeatherAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		validator:  validator.New(),
		metrics:    m,
		logger:     log.WithComponent("WeatherAPIClient"),
	}
}

// Current implements Provider with one GET /current.json call. No retries.
func (c *WeatherAPIClient) Current(ctx context.Context, city string) (*models.WeatherResult, error) {
	start := time.Now()

	result, err := c.fetch(ctx, city)

	outcome := classify(err)
	if c.metrics != nil {
		c.metrics.ProviderRequestsTotal.WithLabelValues(outcome).Inc()
		c.metrics.ProviderRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.logger.Warn().Err(err).Str("city", city).Str("result", outcome).Msg("Weather provider request failed")
		return nil, err
	}

	c.logger.Debug().Str("city", city).Dur("duration", time.Since(start)).Msg("Weather provider request succeeded")
	return result, nil
}

func (c *WeatherAPIClient) fetch(ctx context.Context, city string) (*models.WeatherResult, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", city)
	params.Set("aqi", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/current.json?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrNetwork, redact(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, redact(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil && errResp.Error.Message != "" {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Code:       errResp.Error.Code,
				Message:    errResp.Error.Message,
			}
		}
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload currentResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	if err := c.validator.Struct(payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}

	return &models.WeatherResult{
		CityName:           payload.Location.Name,
		CountryName:        payload.Location.Country,
		TemperatureCelsius: *payload.Current.TempC,
		ConditionText:      payload.Current.Condition.Text,
		IconURL:            NormalizeIconURL(payload.Current.Condition.Icon),
	}, nil
}

// NormalizeIconURL turns the provider's protocol-relative icon path ("//cdn.weatherapi.com/...")
// into an absolute https URL. Anything else, absolute or relative, is returned unchanged;
// a relative path has no host to attach.
func NormalizeIconURL(icon string) string {
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

// redact drops the request URL from transport errors; it carries the API key
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// classify maps an error onto a metrics label
func classify(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &apiErr):
		return "provider_error"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrUnexpectedStatus):
		return "unexpected_status"
	default:
		return "network_error"
	}
}
