package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

// TestLogger_LevelFiltering tests that messages below the configured level are dropped
func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info message to be filtered, got %q", buf.String())
	}

	log.Warn().Msg("shown")
	if buf.Len() == 0 {
		t.Error("expected warn message to be written")
	}
}

// TestLogger_InvalidLevelDefaultsToInfo tests the fallback level
func TestLogger_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "verbose", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	if bytes.Count(buf.Bytes(), []byte("\n")) != 1 {
		t.Errorf("expected exactly one line, got %q", buf.String())
	}
}

// TestLogger_ContextFields tests the With* helpers
func TestLogger_ContextFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf}).
		WithComponent("WeatherLookup").
		WithRequestID("req-1").
		WithSession("sess-1")

	log.Info().Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line: %v", err)
	}

	expected := map[string]string{
		"component":  "WeatherLookup",
		"request_id": "req-1",
		"session_id": "sess-1",
		"message":    "hello",
	}
	for key, value := range expected {
		if entry[key] != value {
			t.Errorf("expected %s=%q, got %v", key, value, entry[key])
		}
	}
}

// TestNewNop tests that the nop logger writes nothing and does not panic
func TestNewNop(t *testing.T) {
	log := NewNop()
	log.Error().Msg("discarded")
	log.WithComponent("x").Info().Msg("discarded")
}
