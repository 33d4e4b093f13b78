package session

import (
	"fmt"
	"strings"
	"time"
)

// StoreConfig holds configuration for creating a session store
type StoreConfig struct {
	Type string        // "memory", "redis", or "mysql"
	TTL  time.Duration // idle session lifetime

	// Redis-specific config
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// MySQL-specific config
	MySQLDSN string
}

// NewStore creates a session store based on the configuration (factory pattern)
func NewStore(cfg StoreConfig) (Store, error) {
	storeType := strings.ToLower(strings.TrimSpace(cfg.Type))

	switch storeType {
	case "memory", "":
		return NewMemoryStore(cfg.TTL), nil

	case "redis":
		store, err := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.TTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis session store: %w", err)
		}
		return store, nil

	case "mysql":
		store, err := NewMySQLStore(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create MySQL session store: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown session store type: %s (supported: 'memory', 'redis', 'mysql')", cfg.Type)
	}
}
