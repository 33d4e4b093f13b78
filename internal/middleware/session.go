package middleware

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	// SessionCookieName is the cookie that carries the form session ID
	SessionCookieName = "weather_session"

	// SessionHeaderName lets API clients pick their session explicitly
	SessionHeaderName = "X-Session-ID"
)

type sessionKey struct{}

// SessionMiddleware attaches a form session ID to every request.
// Priority: X-Session-ID header > weather_session cookie > a new random ID (set as a cookie).
// Values that are not UUIDs are ignored.
func SessionMiddleware() func(http.Handler) http.Handler {
	validate := validator.New()
	valid := func(id string) bool {
		return id != "" && validate.Var(id, "uuid") == nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(SessionHeaderName)

			if !valid(id) {
				id = ""
				if cookie, err := r.Cookie(SessionCookieName); err == nil && valid(cookie.Value) {
					id = cookie.Value
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			w.Header().Set(SessionHeaderName, id)
			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), id)))
		})
	}
}

// WithSessionID returns a copy of ctx carrying the session ID
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// GetSessionID returns the session ID set by SessionMiddleware, or "" if none
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}
