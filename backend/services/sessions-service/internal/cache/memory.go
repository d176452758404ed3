package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Memory is a single-process Cache and Locker. Use it when no redis is configured.
type Memory struct {
	mu    sync.Mutex
	items *gocache.Cache
}

// NewMemory returns an empty cache that sweeps expired keys every cleanup.
func NewMemory(cleanup time.Duration) *Memory {
	return &Memory{items: gocache.New(gocache.NoExpiration, cleanup)}
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.items.Set(key, value, ttl)
	return nil
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.items.Get(key)
	if !ok {
		return "", ErrMiss
	}
	return v.(string), nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.items.Get(key)
	return ok, nil
}

func (m *Memory) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		return "", false, errors.New("lock ttl must be positive")
	}
	token := uuid.NewString()
	if err := m.items.Add(key, token, ttl); err != nil {
		return "", false, nil
	}
	return token, true, nil
}

func (m *Memory) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.items.Get(key); ok && v == token {
		m.items.Delete(key)
	}
	return nil
}
