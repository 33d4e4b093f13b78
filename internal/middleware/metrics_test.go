package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evyataryagoni/cityweather/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetricsMiddleware tests that requests are counted under their route pattern
func TestMetricsMiddleware(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Get("/swagger/*", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("docs"))
	})
	r.Get("/v1/weather", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	for _, path := range []string{"/swagger/index.html", "/swagger/doc.json", "/v1/weather?city=Paris"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/swagger/*", "200")); got != 2 {
		t.Errorf("expected 2 swagger requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/weather", "502")); got != 1 {
		t.Errorf("expected 1 weather request, got %v", got)
	}
	if got := testutil.CollectAndCount(m.HTTPRequestDuration); got != 2 {
		t.Errorf("expected 2 duration series, got %d", got)
	}
}

// TestMetricsMiddleware_Unmatched tests that unknown paths share a single label value
func TestMetricsMiddleware_Unmatched(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	r := chi.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 50; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, fmt.Sprintf("/nope-%d", i), nil))
	}

	if got := testutil.CollectAndCount(m.HTTPRequestsTotal); got != 1 {
		t.Errorf("expected 1 series for unknown paths, got %d", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 50 {
		t.Errorf("expected 50 unmatched requests, got %v", got)
	}
}

// TestMetricsMiddleware_WithoutRouter tests requests that never pass through chi
func TestMetricsMiddleware_WithoutRouter(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())

	handler := MetricsMiddleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "200")); got != 1 {
		t.Errorf("expected 1 request, got %v", got)
	}
}
