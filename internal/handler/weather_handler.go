package handler

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/evyataryagoni/cityweather/internal/logger"
	"github.com/evyataryagoni/cityweather/internal/middleware"
	"github.com/evyataryagoni/cityweather/internal/models"
	"github.com/evyataryagoni/cityweather/internal/service"
)

//go:embed templates/form.html
var templateFS embed.FS

var formTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html"))

// formView is what the form template renders
type formView struct {
	City    string
	Loading bool
	State   models.RequestState
	Result  *models.WeatherResult
}

// WeatherHandler handles HTTP requests for weather lookups
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Read the city from the query string or form
//   - Call the lookup for the request's session
//   - Render JSON or the HTML form
//   - Set appropriate status codes
type WeatherHandler struct {
	lookup *service.WeatherLookup
	logger *logger.Logger
}

// NewWeatherHandler creates a new weather handler with the given lookup
func NewWeatherHandler(lookup *service.WeatherLookup, log *logger.Logger) *WeatherHandler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &WeatherHandler{
		lookup: lookup,
		logger: log.WithComponent("WeatherHandler"),
	}
}

// GetWeather handles GET /v1/weather?city=<city>
// @Summary      Look up current weather for a city
// @Description  Submits a lookup for the caller's session and returns the resulting state and last result
// @Tags         Weather
// @Produce      json
// @Param        city          query   string  true   "Free-text city name"  example(Paris)
// @Param        X-Session-ID  header  string  false  "Session UUID (defaults to the weather_session cookie)"
// @Success      200  {object}  models.LookupResponse
// @Failure      400  {object}  models.LookupResponse  "Empty city"
// @Failure      409  {object}  models.LookupResponse  "A lookup is already in flight for this session"
// @Failure      502  {object}  models.LookupResponse  "Provider, network or response shape failure"
// @Failure      500  {object}  models.ErrorResponse   "Internal server error"
// @Router       /v1/weather [get]
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	city := r.URL.Query().Get("city")

	snapshot, err := h.lookup.Submit(r.Context(), sessionID, city)
	if err != nil {
		if errors.Is(err, service.ErrSubmissionInFlight) {
			h.respondJSON(w, http.StatusConflict, toResponse(sessionID, snapshot))
			return
		}
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Weather lookup could not run")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, statusFor(snapshot.State), toResponse(sessionID, snapshot))
}

// GetSession handles GET /v1/session
// @Summary      Current session state
// @Description  Returns the caller's lookup state and last successful result without submitting
// @Tags         Weather
// @Produce      json
// @Param        X-Session-ID  header  string  false  "Session UUID (defaults to the weather_session cookie)"
// @Success      200  {object}  models.LookupResponse
// @Failure      500  {object}  models.ErrorResponse  "Internal server error"
// @Router       /v1/session [get]
func (h *WeatherHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	snapshot, err := h.lookup.Snapshot(r.Context(), sessionID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to load session")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, toResponse(sessionID, snapshot))
}

// ShowForm handles GET / and renders the form with the session's current state
func (h *WeatherHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	snapshot, err := h.lookup.Snapshot(r.Context(), sessionID)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to load session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.renderForm(w, http.StatusOK, "", snapshot)
}

// SubmitForm handles POST / with a `city` form field
func (h *WeatherHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	city := r.PostFormValue("city")

	snapshot, err := h.lookup.Submit(r.Context(), sessionID, city)
	if err != nil && !errors.Is(err, service.ErrSubmissionInFlight) {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Weather lookup could not run")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.renderForm(w, http.StatusOK, city, snapshot)
}

func (h *WeatherHandler) renderForm(w http.ResponseWriter, statusCode int, city string, snapshot *models.Snapshot) {
	view := formView{
		City:    city,
		Loading: snapshot.InFlight(time.Now()),
		State:   snapshot.State,
		Result:  snapshot.Result,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := formTemplate.Execute(w, view); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render form")
	}
}

// respondJSON writes a JSON response with the given status code
func (h *WeatherHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, nothing left to do but log
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes an error response with consistent formatting
func (h *WeatherHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}

// statusFor maps a finished lookup onto an HTTP status
func statusFor(state models.RequestState) int {
	if state.Status != models.StatusFailed {
		return http.StatusOK
	}
	if state.Reason == models.ReasonEmptyInput {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func toResponse(sessionID string, snapshot *models.Snapshot) models.LookupResponse {
	response := models.LookupResponse{
		SessionID: sessionID,
		Loading:   snapshot.InFlight(time.Now()),
		State:     snapshot.State,
		Result:    snapshot.Result,
	}
	if !snapshot.UpdatedAt.IsZero() {
		updated := snapshot.UpdatedAt
		response.UpdatedAt = &updated
	}
	return response
}
