package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evyataryagoni/cityweather/internal/config"
	"github.com/evyataryagoni/cityweather/internal/handler"
	"github.com/evyataryagoni/cityweather/internal/logger"
	"github.com/evyataryagoni/cityweather/internal/metrics"
	"github.com/evyataryagoni/cityweather/internal/provider"
	"github.com/evyataryagoni/cityweather/internal/router"
	"github.com/evyataryagoni/cityweather/internal/service"
	"github.com/evyataryagoni/cityweather/internal/session"
	"github.com/prometheus/client_golang/prometheus"
)

// @title           City Weather API
// @version         1.0
// @description     Current weather lookup by city name, backed by weatherapi.com

// @contact.name   Evyatar Yagoni
// @contact.email  evyatar@example.com

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
func main() {
	appConfig := config.Load()

	appLogger := setupLogger(appConfig)
	metricsCollector := setupMetrics(appLogger)

	sessionStore := setupSessionStore(appConfig, metricsCollector, appLogger)
	weatherProvider := setupProvider(appConfig, metricsCollector, appLogger)

	// Build application layers
	lookup := service.NewWeatherLookup(weatherProvider, sessionStore, service.Options{
		RequestTimeout: appConfig.WeatherAPITimeout,
	}, metricsCollector, appLogger)

	weatherHandler := handler.NewWeatherHandler(lookup, appLogger)
	appRouter := router.SetupRouter(weatherHandler, metricsCollector, prometheus.DefaultGatherer, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := startServer(ctx, newServer(appConfig, appRouter), appConfig.WeatherAPITimeout+5*time.Second, appLogger)
	stop()

	// Close the store before any exit so connections are released
	if closeErr := lookup.Close(); closeErr != nil {
		appLogger.Error().Err(closeErr).Msg("Failed to close session store")
	}
	if err != nil {
		appLogger.Error().Err(err).Msg("Server failed")
		os.Exit(1)
	}
	appLogger.Info().Msg("Server stopped")
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: appConfig.LogPretty,
	})

	appLogger.Info().Msg("Starting City Weather Server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("weather_api_base_url", appConfig.WeatherAPIBaseURL).
		Bool("weather_api_key_set", appConfig.WeatherAPIKey != "").
		Dur("weather_api_timeout", appConfig.WeatherAPITimeout).
		Str("session_store_type", appConfig.SessionStoreType).
		Dur("session_ttl", appConfig.SessionTTL).
		Msg("Configuration loaded")

	if appConfig.WeatherAPIKey == "" {
		appLogger.Warn().Msg("WEATHER_API_KEY is empty, every lookup will be rejected by the provider")
	}

	return appLogger
}

// setupMetrics initializes the Prometheus metrics collector
func setupMetrics(log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New()
	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// setupSessionStore initializes the session store based on configuration
// Supports memory, Redis, and MySQL backends
func setupSessionStore(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) session.Store {
	store, err := session.NewStore(session.StoreConfig{
		Type:          appConfig.SessionStoreType,
		TTL:           appConfig.SessionTTL,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
		MySQLDSN:      appConfig.MySQLDSN,
	})
	if err != nil {
		log.Fatal().Err(err).Str("type", appConfig.SessionStoreType).Msg("Failed to initialize session store")
	}

	log.Info().Str("type", appConfig.SessionStoreType).Msg("Session store initialized")
	return session.Instrument(store, appConfig.SessionStoreType, m)
}

// setupProvider builds the weatherapi.com client.
// The key is handed over here and nowhere else.
func setupProvider(appConfig *config.Config, m *metrics.Metrics, log *logger.Logger) provider.Provider {
	return provider.NewWeatherAPIClient(
		appConfig.WeatherAPIBaseURL,
		appConfig.WeatherAPIKey,
		provider.ClientOptions{Timeout: appConfig.WeatherAPITimeout},
		m,
		log,
	)
}

func newServer(appConfig *config.Config, appRouter http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           appRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// startServer runs the HTTP server until ctx ends, then drains in-flight requests.
// It returns nil after a clean shutdown and the listen error otherwise.
func startServer(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, log *logger.Logger) error {
	log.Info().
		Str("addr", server.Addr).
		Str("form", "/").
		Str("api_endpoint", "/v1/weather?city=<city>").
		Str("health_check", "/health").
		Str("metrics", "/metrics").
		Str("swagger", "/swagger/index.html").
		Msg("Server is running")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", server.Addr, err)
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	}
}
