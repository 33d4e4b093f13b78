package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/evyataryagoni/cityweather/internal/models"
)

// newTestRedisStore starts miniredis and connects a store to it
func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	store, err := NewRedisStore(mr.Addr(), "", 0, time.Minute)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store, mr
}

// TestRedisStore_ConnectionFailure tests connection errors
func TestRedisStore_ConnectionFailure(t *testing.T) {
	_, err := NewRedisStore("invalid:9999", "", 0, time.Minute)

	if err == nil {
		t.Error("expected connection error, got nil")
	}
}

// TestRedisStore_Get_Unknown tests that unknown sessions are Idle
func TestRedisStore_Get_Unknown(t *testing.T) {
	store, _ := newTestRedisStore(t)

	snapshot, err := store.Get(context.Background(), "nobody")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.State.Status != models.StatusIdle {
		t.Errorf("expected idle, got %s", snapshot.State.Status)
	}
	if snapshot.Result != nil {
		t.Error("expected no result")
	}
}

// TestRedisStore_BeginLoading_SingleFlight tests the Lua compare-and-set
func TestRedisStore_BeginLoading_SingleFlight(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	until := time.Now().Add(time.Minute)

	won, err := store.BeginLoading(ctx, "s1", until)
	if err != nil || !won {
		t.Fatalf("expected first begin to win, got %v, %v", won, err)
	}

	won, err = store.BeginLoading(ctx, "s1", until)
	if err != nil || won {
		t.Errorf("expected second begin to lose, got %v, %v", won, err)
	}

	if got := mr.HGet("session:s1", "status"); got != "loading" {
		t.Errorf("expected status field 'loading', got %q", got)
	}
	if mr.TTL("session:s1") <= 0 {
		t.Error("expected session key to have a TTL")
	}

	snapshot, _ := store.Get(ctx, "s1")
	if !snapshot.InFlight(time.Now()) {
		t.Error("expected snapshot to be in flight")
	}
}

// TestRedisStore_BeginLoading_ExpiredLease tests takeover of an abandoned Loading
func TestRedisStore_BeginLoading_ExpiredLease(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	store.BeginLoading(ctx, "s1", now.Add(time.Second))

	store.now = func() time.Time { return now.Add(5 * time.Second) }
	won, err := store.BeginLoading(ctx, "s1", now.Add(time.Minute))
	if err != nil || !won {
		t.Errorf("expected begin to win after lease expiry, got %v, %v", won, err)
	}
}

// TestRedisStore_Complete tests result replacement and preservation
func TestRedisStore_Complete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	store.BeginLoading(ctx, "s1", time.Now().Add(time.Minute))
	if err := store.Complete(ctx, "s1", models.Succeeded(), paris); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.State.Status != models.StatusSucceeded {
		t.Errorf("expected succeeded, got %s", snapshot.State.Status)
	}
	if snapshot.Result == nil || *snapshot.Result != *paris {
		t.Errorf("expected Paris result, got %+v", snapshot.Result)
	}
	if !snapshot.LoadingUntil.IsZero() {
		t.Error("expected lease to be cleared")
	}
	if snapshot.UpdatedAt.IsZero() {
		t.Error("expected updated_at to be set")
	}

	failed := models.Failed(models.ReasonProviderError, "No matching location found.")
	store.Complete(ctx, "s1", failed, nil)

	snapshot, _ = store.Get(ctx, "s1")
	if snapshot.State != failed {
		t.Errorf("expected %+v, got %+v", failed, snapshot.State)
	}
	if snapshot.Result == nil || snapshot.Result.CityName != "Paris" {
		t.Error("expected stale Paris result to remain")
	}
}

// TestRedisStore_TTL tests that idle sessions expire
func TestRedisStore_TTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	store.Complete(ctx, "s1", models.Succeeded(), paris)
	mr.FastForward(2 * time.Minute)

	snapshot, _ := store.Get(ctx, "s1")
	if snapshot.State.Status != models.StatusIdle || snapshot.Result != nil {
		t.Errorf("expected expired session to be idle, got %+v", snapshot)
	}
}

// TestRedisStore_Get_CorruptResult tests decoding errors
func TestRedisStore_Get_CorruptResult(t *testing.T) {
	store, mr := newTestRedisStore(t)

	mr.HSet("session:s1", "status", "succeeded")
	mr.HSet("session:s1", "result", "{not json")

	if _, err := store.Get(context.Background(), "s1"); err == nil {
		t.Error("expected decode error, got nil")
	}
}

// TestRedisStore_Reject tests the Lua compare-and-set for rejections
func TestRedisStore_Reject(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	empty := models.Failed(models.ReasonEmptyInput, "Please enter a city name")

	store.Complete(ctx, "s1", models.Succeeded(), paris)
	recorded, err := store.Reject(ctx, "s1", empty)
	if err != nil || !recorded {
		t.Fatalf("expected rejection to be recorded, got %v, %v", recorded, err)
	}

	snapshot, _ := store.Get(ctx, "s1")
	if snapshot.State != empty {
		t.Errorf("expected %+v, got %+v", empty, snapshot.State)
	}
	if snapshot.Result == nil || snapshot.Result.CityName != "Paris" {
		t.Error("expected previous result to remain")
	}
	if mr.TTL("session:s1") <= 0 {
		t.Error("expected session key to have a TTL")
	}

	store.BeginLoading(ctx, "s1", time.Now().Add(time.Minute))
	recorded, err = store.Reject(ctx, "s1", empty)
	if err != nil || recorded {
		t.Errorf("expected rejection to lose to the live lease, got %v, %v", recorded, err)
	}
	if got := mr.HGet("session:s1", "status"); got != "loading" {
		t.Errorf("expected status field 'loading', got %q", got)
	}
}

// TestRedisStore_TTLCoversLease tests that a key outlives its Loading lease
func TestRedisStore_TTLCoversLease(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	// Session TTL is one minute, the lease five
	store.BeginLoading(ctx, "s1", now.Add(5*time.Minute))

	if ttl := mr.TTL("session:s1"); ttl < 5*time.Minute {
		t.Errorf("expected TTL of at least the lease, got %v", ttl)
	}

	mr.FastForward(2 * time.Minute)
	won, err := store.BeginLoading(ctx, "s1", now.Add(10*time.Minute))
	if err != nil || won {
		t.Errorf("expected the live lease to block a second begin, got %v, %v", won, err)
	}
}

// TestRedisStore_ZeroTTL tests that a zero TTL keeps sessions forever, like MemoryStore
func TestRedisStore_ZeroTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewRedisStore(mr.Addr(), "", 0, 0)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	store.BeginLoading(ctx, "s1", time.Now().Add(time.Minute))
	store.Complete(ctx, "s1", models.Succeeded(), paris)
	store.Reject(ctx, "s2", models.Failed(models.ReasonEmptyInput, "Please enter a city name"))

	for _, key := range []string{"session:s1", "session:s2"} {
		if ttl := mr.TTL(key); ttl != 0 {
			t.Errorf("%s: expected no expiry, got %v", key, ttl)
		}
	}

	mr.FastForward(48 * time.Hour)
	snapshot, _ := store.Get(ctx, "s1")
	if snapshot.Result == nil {
		t.Error("expected session to survive without a TTL")
	}
}
