package session

import (
	"context"
	"time"

	"github.com/evyataryagoni/cityweather/internal/metrics"
	"github.com/evyataryagoni/cityweather/internal/models"
)

// instrumentedStore counts store operations by outcome
type instrumentedStore struct {
	next    Store
	name    string
	metrics *metrics.Metrics
}

// Instrument wraps store so every operation is counted under the given store name.
// A nil metrics collector returns store unchanged.
func Instrument(store Store, name string, m *metrics.Metrics) Store {
	if m == nil {
		return store
	}
	return &instrumentedStore{next: store, name: name, metrics: m}
}

func (s *instrumentedStore) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	snapshot, err := s.next.Get(ctx, id)
	s.observe("get", err)
	return snapshot, err
}

func (s *instrumentedStore) BeginLoading(ctx context.Context, id string, until time.Time) (bool, error) {
	won, err := s.next.BeginLoading(ctx, id, until)
	s.observeCAS("begin_loading", won, err)
	return won, err
}

func (s *instrumentedStore) Reject(ctx context.Context, id string, state models.RequestState) (bool, error) {
	recorded, err := s.next.Reject(ctx, id, state)
	s.observeCAS("reject", recorded, err)
	return recorded, err
}

func (s *instrumentedStore) Complete(ctx context.Context, id string, state models.RequestState, result *models.WeatherResult) error {
	err := s.next.Complete(ctx, id, state, result)
	s.observe("complete", err)
	return err
}

func (s *instrumentedStore) Close() error {
	return s.next.Close()
}

// observeCAS counts a compare-and-set operation; losing to a live lease is "busy"
func (s *instrumentedStore) observeCAS(operation string, won bool, err error) {
	if err == nil && !won {
		s.metrics.SessionStoreOpsTotal.WithLabelValues(s.name, operation, "busy").Inc()
		return
	}
	s.observe(operation, err)
}

func (s *instrumentedStore) observe(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.SessionStoreOpsTotal.WithLabelValues(s.name, operation, status).Inc()
}
