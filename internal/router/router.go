package router

import (
	"net/http"

	_ "github.com/evyataryagoni/cityweather/docs" // Swagger docs
	"github.com/evyataryagoni/cityweather/internal/handler"
	"github.com/evyataryagoni/cityweather/internal/logger"
	"github.com/evyataryagoni/cityweather/internal/metrics"
	custommiddleware "github.com/evyataryagoni/cityweather/internal/middleware"
	v1 "github.com/evyataryagoni/cityweather/internal/router/v1"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// SetupRouter creates and configures the Chi router with all middleware and routes
//
// Parameters:
//   - weatherHandler: the weather lookup handler (JSON API and HTML form)
//   - m: metrics collector
//   - gatherer: registry served on /metrics, normally prometheus.DefaultGatherer
//   - log: structured logger
func SetupRouter(weatherHandler *handler.WeatherHandler, m *metrics.Metrics, gatherer prometheus.Gatherer, log *logger.Logger) chi.Router {
	r := chi.NewRouter()

	// Order matters: RequestID first so every log line has it, session last so
	// only application routes see a session ID
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer)
	r.Use(custommiddleware.MetricsMiddleware(m))

	r.Group(func(r chi.Router) {
		r.Use(custommiddleware.SessionMiddleware())

		// The form page: GET renders, POST submits
		r.Get("/", weatherHandler.ShowForm)
		r.Post("/", weatherHandler.SubmitForm)

		r.Mount("/v1", v1.SetupRoutes(weatherHandler))
	})

	// Root-level routes (not versioned, no session)
	r.Get("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Access at: http://localhost:3000/swagger/index.html
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

// healthCheckHandler is a simple liveness endpoint
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
