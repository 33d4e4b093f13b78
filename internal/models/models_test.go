package models

import (
	"testing"
	"time"
)

// TestFailed tests that Failed carries reason and message
func TestFailed(t *testing.T) {
	state := Failed(ReasonEmptyInput, "Please enter a city name")

	if state.Status != StatusFailed {
		t.Errorf("expected status %s, got %s", StatusFailed, state.Status)
	}
	if state.Reason != ReasonEmptyInput {
		t.Errorf("expected reason %s, got %s", ReasonEmptyInput, state.Reason)
	}
	if state.Message != "Please enter a city name" {
		t.Errorf("unexpected message: %s", state.Message)
	}
}

// TestNonFailedStatesCarryNoMessage tests that only Failed has a message
func TestNonFailedStatesCarryNoMessage(t *testing.T) {
	for _, state := range []RequestState{Idle(), Loading(), Succeeded()} {
		if state.Message != "" || state.Reason != "" {
			t.Errorf("state %s should not carry a message or reason", state.Status)
		}
	}
}

// TestSnapshot_InFlight tests the loading lease
func TestSnapshot_InFlight(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		snapshot Snapshot
		expected bool
	}{
		{"idle", Snapshot{State: Idle()}, false},
		{"loading with live lease", Snapshot{State: Loading(), LoadingUntil: now.Add(time.Second)}, true},
		{"loading with expired lease", Snapshot{State: Loading(), LoadingUntil: now.Add(-time.Second)}, false},
		{"succeeded", Snapshot{State: Succeeded(), LoadingUntil: now.Add(time.Second)}, false},
		{"failed", Snapshot{State: Failed(ReasonNetworkFailure, "x")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snapshot.InFlight(now); got != tt.expected {
				t.Errorf("expected InFlight=%v, got %v", tt.expected, got)
			}
		})
	}
}
