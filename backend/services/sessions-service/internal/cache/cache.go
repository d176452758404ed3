// Package cache defines the volatile key-value contract (per-key expiry) and the keys
// the engine stores in it.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Cache is a key-value store with per-key TTL.
type Cache interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Locker is a best-effort mutual exclusion primitive with lease expiry.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// AuthorizedTagKey holds the pending pre-authorization for a charger.
func AuthorizedTagKey(ocppID string) string {
	return fmt.Sprintf("charger:%s:authorized_tag", ocppID)
}

// ConnectorStatusKey holds the last reported status of a connector.
func ConnectorStatusKey(ocppID string, number int) string {
	return fmt.Sprintf("charger:%s:connector:%d:status", ocppID, number)
}

// HeartbeatKey holds the last contact time of a charger.
func HeartbeatKey(ocppID string) string {
	return fmt.Sprintf("charger:%s:online", ocppID)
}

// ReaperLockKey serializes periodic reaper passes across replicas.
const ReaperLockKey = "locks:sessions:reaper"
