package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/evyataryagoni/cityweather/internal/metrics"
	"github.com/evyataryagoni/cityweather/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewStore tests backend selection
func TestNewStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	tests := []struct {
		name      string
		cfg       StoreConfig
		expectErr bool
	}{
		{"default is memory", StoreConfig{}, false},
		{"memory", StoreConfig{Type: "memory"}, false},
		{"case insensitive", StoreConfig{Type: " Memory "}, false},
		{"redis", StoreConfig{Type: "redis", RedisAddr: mr.Addr(), TTL: time.Minute}, false},
		{"redis unreachable", StoreConfig{Type: "redis", RedisAddr: "invalid:9999"}, true},
		{"unknown", StoreConfig{Type: "postgres"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.cfg)

			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer store.Close()
		})
	}
}

// TestInstrument tests operation counting
func TestInstrument(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	store := Instrument(NewMemoryStore(time.Minute), "memory", m)
	ctx := context.Background()
	until := time.Now().Add(time.Minute)

	store.Get(ctx, "s1")
	store.BeginLoading(ctx, "s1", until)
	store.BeginLoading(ctx, "s1", until)
	store.Reject(ctx, "s1", models.Failed(models.ReasonEmptyInput, "x"))
	store.Complete(ctx, "s1", models.Succeeded(), paris)
	store.Reject(ctx, "s1", models.Failed(models.ReasonEmptyInput, "x"))

	counts := map[[2]string]float64{
		{"get", "ok"}:             1,
		{"begin_loading", "ok"}:   1,
		{"begin_loading", "busy"}: 1,
		{"reject", "busy"}:        1,
		{"reject", "ok"}:          1,
		{"complete", "ok"}:        1,
	}
	for labels, expected := range counts {
		got := testutil.ToFloat64(m.SessionStoreOpsTotal.WithLabelValues("memory", labels[0], labels[1]))
		if got != expected {
			t.Errorf("%v: expected %v, got %v", labels, expected, got)
		}
	}
}

// TestInstrument_NilMetrics tests that nil metrics returns the store unchanged
func TestInstrument_NilMetrics(t *testing.T) {
	inner := NewMemoryStore(time.Minute)
	if Instrument(inner, "memory", nil) != Store(inner) {
		t.Error("expected store to be returned unchanged")
	}
}
