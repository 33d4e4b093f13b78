package session

import (
	"context"
	"time"

	"github.com/evyataryagoni/cityweather/internal/models"
)

// Store holds the display state of each form session: the current RequestState
// and the last successful WeatherResult. One slot per session, overwritten in place.
type Store interface {
	// Get returns the session snapshot; unknown sessions are Idle with no result
	Get(ctx context.Context, id string) (*models.Snapshot, error)

	// BeginLoading atomically moves the session to Loading with a lease ending at until.
	// It returns false, without changing anything, if a live Loading lease already exists.
	BeginLoading(ctx context.Context, id string, until time.Time) (bool, error)

	// Reject records the failure of a submission that never began loading (an empty city).
	// Like BeginLoading it returns false, without changing anything, while a live Loading lease exists.
	Reject(ctx context.Context, id string, state models.RequestState) (bool, error)

	// Complete records the outcome of a submission and clears the lease.
	// A nil result keeps the previously stored result.
	Complete(ctx context.Context, id string, state models.RequestState, result *models.WeatherResult) error

	// Close cleans up resources (connections, etc.)
	Close() error
}

// idleSnapshot is what an unknown session looks like
func idleSnapshot() *models.Snapshot {
	return &models.Snapshot{State: models.Idle()}
}
