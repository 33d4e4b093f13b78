package v1

import (
	"github.com/evyataryagoni/cityweather/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures all v1 API routes
// This function is called by the main router to setup /v1/* endpoints
func SetupRoutes(weatherHandler *handler.WeatherHandler) chi.Router {
	r := chi.NewRouter()

	// GET /v1/weather?city=<city>
	r.Get("/weather", weatherHandler.GetWeather)

	// GET /v1/session
	r.Get("/session", weatherHandler.GetSession)

	return r
}
