package middleware

import (
	"net/http"
	"time"

	"github.com/evyataryagoni/cityweather/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// LoggingMiddleware logs each request once on arrival (debug) and once on completion.
// The completion level follows the status: 5xx error, 4xx warn, everything else info.
//
// Query strings are never logged; the city a user typed stays out of access logs.
// The session ID is only known after SessionMiddleware has run, so it is read back from the response header.
func LoggingMiddleware(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLog := log.WithRequestID(middleware.GetReqID(r.Context()))

			reqLog.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("Request started")

			next.ServeHTTP(ww, r)

			event := reqLog.Info()
			switch status := ww.Status(); {
			case status >= http.StatusInternalServerError:
				event = reqLog.Error()
			case status >= http.StatusBadRequest:
				event = reqLog.Warn()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("session_id", ww.Header().Get(SessionHeaderName)).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration_ms", time.Since(start)).
				Msg("Request completed")
		})
	}
}
