package session

import (
	"context"
	"sync"
	"time"

	"github.com/evyataryagoni/cityweather/internal/models"
)

// MemoryStore keeps sessions in process memory
// Suitable for single-instance deployments and the CLI
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[string]*memoryEntry
	ttl         time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

type memoryEntry struct {
	snapshot   models.Snapshot
	lastAccess time.Time
}

// NewMemoryStore creates an in-memory store; sessions idle longer than ttl are dropped
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*memoryEntry),
		ttl:         ttl,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Get implements Store
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return idleSnapshot(), nil
	}
	entry.lastAccess = s.now()

	return copySnapshot(entry.snapshot), nil
}

// BeginLoading implements Store
func (s *MemoryStore) BeginLoading(ctx context.Context, id string, until time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeCleanup(now)

	entry := s.entry(id, now)
	if entry.snapshot.InFlight(now) {
		return false, nil
	}

	entry.snapshot.State = models.Loading()
	entry.snapshot.LoadingUntil = until
	entry.snapshot.UpdatedAt = now
	return true, nil
}

// Reject implements Store
func (s *MemoryStore) Reject(ctx context.Context, id string, state models.RequestState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeCleanup(now)

	entry := s.entry(id, now)
	if entry.snapshot.InFlight(now) {
		return false, nil
	}

	entry.snapshot.State = state
	entry.snapshot.LoadingUntil = time.Time{}
	entry.snapshot.UpdatedAt = now
	return true, nil
}

// Complete implements Store
func (s *MemoryStore) Complete(ctx context.Context, id string, state models.RequestState, result *models.WeatherResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.maybeCleanup(now)

	entry := s.entry(id, now)
	entry.snapshot.State = state
	entry.snapshot.LoadingUntil = time.Time{}
	entry.snapshot.UpdatedAt = now
	if result != nil {
		copied := *result
		entry.snapshot.Result = &copied
	}
	return nil
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close implements Store; there is nothing to release
func (s *MemoryStore) Close() error {
	return nil
}

// entry gets or creates a session entry. Must be called with mu held.
func (s *MemoryStore) entry(id string, now time.Time) *memoryEntry {
	entry, ok := s.sessions[id]
	if !ok {
		entry = &memoryEntry{snapshot: *idleSnapshot()}
		s.sessions[id] = entry
	}
	entry.lastAccess = now
	return entry
}

// maybeCleanup drops sessions idle for longer than ttl, at most once per ttl.
// Must be called with mu held.
func (s *MemoryStore) maybeCleanup(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastCleanup) < s.ttl {
		return
	}

	threshold := now.Add(-s.ttl)
	for id, entry := range s.sessions {
		if entry.lastAccess.Before(threshold) && !entry.snapshot.InFlight(now) {
			delete(s.sessions, id)
		}
	}

	s.lastCleanup = now
}

func copySnapshot(snapshot models.Snapshot) *models.Snapshot {
	copied := snapshot
	if snapshot.Result != nil {
		result := *snapshot.Result
		copied.Result = &result
	}
	return &copied
}
