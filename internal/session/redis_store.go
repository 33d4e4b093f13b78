package session

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/evyataryagoni/cityweather/internal/models"
	"github.com/redis/go-redis/v9"
)

// leaseCheck returns 0 from the script when the session holds a live Loading lease.
// ARGV[1] is always now (ms).
const leaseCheck = `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])

	if redis.call('HGET', key, 'status') == 'loading' then
		local current = tonumber(redis.call('HGET', key, 'loading_until') or '0')
		if current and current > now then
			return 0
		end
	end
`

// beginLoadingScript flips a session hash to loading unless a live lease exists.
// Runs atomically on the Redis server, so two instances cannot both win.
// The key never expires before the lease does.
//
// KEYS[1] = session key, ARGV[1] = now (ms), ARGV[2] = lease end (ms), ARGV[3] = TTL (s, 0 = no expiry)
var beginLoadingScript = redis.NewScript(leaseCheck + `
	local lease = tonumber(ARGV[2])
	local ttl = tonumber(ARGV[3])

	redis.call('HSET', key, 'status', 'loading', 'message', '', 'reason', '', 'loading_until', lease, 'updated_at', now)
	if ttl > 0 then
		local remaining = math.ceil((lease - now) / 1000)
		if remaining > ttl then
			ttl = remaining
		end
		redis.call('EXPIRE', key, ttl)
	else
		redis.call('PERSIST', key)
	end
	return 1
`)

// rejectScript records a failed state unless a live lease exists
//
// KEYS[1] = session key, ARGV[1] = now (ms), ARGV[2] = TTL (s, 0 = no expiry),
// ARGV[3] = status, ARGV[4] = message, ARGV[5] = reason
var rejectScript = redis.NewScript(leaseCheck + `
	local ttl = tonumber(ARGV[2])

	redis.call('HSET', key, 'status', ARGV[3], 'message', ARGV[4], 'reason', ARGV[5], 'loading_until', 0, 'updated_at', now)
	if ttl > 0 then
		redis.call('EXPIRE', key, ttl)
	else
		redis.call('PERSIST', key)
	end
	return 1
`)

// RedisStore keeps sessions in Redis hashes
// Required when several instances serve the same sessions
//
// Key format: session:<id>
// Fields: status, message, reason, result (JSON), loading_until (ms), updated_at (ms)
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a new Redis store and checks the connection.
// A ttl of zero keeps sessions forever, like MemoryStore; otherwise it is rounded up to whole seconds.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	switch {
	case ttl <= 0:
		ttl = 0
	case ttl < time.Second:
		ttl = time.Second
	}

	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Snapshot, error) {
	fields, err := s.client.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("Redis query failed: %w", err)
	}
	if len(fields) == 0 {
		return idleSnapshot(), nil
	}

	snapshot := &models.Snapshot{
		State: models.RequestState{
			Status:  models.Status(fields["status"]),
			Message: fields["message"],
			Reason:  models.FailureReason(fields["reason"]),
		},
		LoadingUntil: parseMillis(fields["loading_until"]),
		UpdatedAt:    parseMillis(fields["updated_at"]),
	}
	if snapshot.State.Status == "" {
		snapshot.State = models.Idle()
	}

	if raw := fields["result"]; raw != "" {
		var result models.WeatherResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, fmt.Errorf("failed to decode session result: %w", err)
		}
		snapshot.Result = &result
	}

	return snapshot, nil
}

// BeginLoading implements Store
func (s *RedisStore) BeginLoading(ctx context.Context, id string, until time.Time) (bool, error) {
	won, err := beginLoadingScript.Run(ctx, s.client,
		[]string{sessionKey(id)},
		s.now().UnixMilli(), until.UnixMilli(), s.ttlSeconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to begin loading in Redis: %w", err)
	}
	return won == 1, nil
}

// Reject implements Store
func (s *RedisStore) Reject(ctx context.Context, id string, state models.RequestState) (bool, error) {
	recorded, err := rejectScript.Run(ctx, s.client,
		[]string{sessionKey(id)},
		s.now().UnixMilli(), s.ttlSeconds(),
		string(state.Status), state.Message, string(state.Reason),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to record rejection in Redis: %w", err)
	}
	return recorded == 1, nil
}

// Complete implements Store
func (s *RedisStore) Complete(ctx context.Context, id string, state models.RequestState, result *models.WeatherResult) error {
	values := []interface{}{
		"status", string(state.Status),
		"message", state.Message,
		"reason", string(state.Reason),
		"loading_until", 0,
		"updated_at", s.now().UnixMilli(),
	}

	if result != nil {
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode session result: %w", err)
		}
		values = append(values, "result", data)
	}

	key := sessionKey(id)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		} else {
			pipe.Persist(ctx, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session in Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// ttlSeconds rounds the TTL up so a sub-second remainder never becomes 0 (no expiry)
func (s *RedisStore) ttlSeconds() int {
	return int(math.Ceil(s.ttl.Seconds()))
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func parseMillis(value string) time.Time {
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil || ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
