package session

import (
	"context"
	"sync"
	"time"

	"github.com/evyataryagoni/cityweather/internal/models"
)

// MockStore is a test double for the Store interface
// It keeps real in-memory semantics and lets tests inject failures
type MockStore struct {
	*MemoryStore

	mu sync.Mutex

	// Control behavior for error scenarios
	GetError          error
	BeginLoadingError error
	RejectError       error
	CompleteError     error
	CloseError        error

	// Track method calls for verification in tests
	CompleteCalls []models.RequestState
	CloseCalled   bool
}

// NewMockStore creates a mock store with no sessions
func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: NewMemoryStore(time.Hour)}
}

// Get implements the Store interface
func (m *MockStore) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	m.mu.Lock()
	err := m.GetError
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.MemoryStore.Get(ctx, id)
}

// BeginLoading implements the Store interface
func (m *MockStore) BeginLoading(ctx context.Context, id string, until time.Time) (bool, error) {
	m.mu.Lock()
	err := m.BeginLoadingError
	m.mu.Unlock()
	if err != nil {
		return false, err
	}
	return m.MemoryStore.BeginLoading(ctx, id, until)
}

// Reject implements the Store interface
func (m *MockStore) Reject(ctx context.Context, id string, state models.RequestState) (bool, error) {
	m.mu.Lock()
	err := m.RejectError
	m.mu.Unlock()
	if err != nil {
		return false, err
	}
	return m.MemoryStore.Reject(ctx, id, state)
}

// Complete implements the Store interface
func (m *MockStore) Complete(ctx context.Context, id string, state models.RequestState, result *models.WeatherResult) error {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, state)
	err := m.CompleteError
	m.mu.Unlock()
	if err != nil {
		return err
	}
	return m.MemoryStore.Complete(ctx, id, state, result)
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return m.CloseError
}
