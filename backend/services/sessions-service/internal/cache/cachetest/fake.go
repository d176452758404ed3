// Package cachetest provides a cache.Cache whose expiry follows a fake clock.
package cachetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chargeshare/backend/services/sessions-service/internal/cache"
	"chargeshare/backend/services/sessions-service/internal/clock"
)

type entry struct {
	value   string
	expires time.Time
	ttl     time.Duration
}

// Fake implements cache.Cache and cache.Locker.
type Fake struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]entry
	err     error
	tokens  int
}

// New returns an empty cache driven by c.
func New(c clock.Clock) *Fake {
	return &Fake{clock: c, entries: map[string]entry{}}
}

// SetError makes every subsequent call fail with err; nil restores normal operation.
func (f *Fake) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// TTL returns the ttl the key was last written with.
func (f *Fake) TTL(key string) (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.live(key)
	return e.ttl, ok
}

func (f *Fake) live(key string) (entry, bool) {
	e, ok := f.entries[key]
	if !ok {
		return entry{}, false
	}
	if !f.clock.Now().Before(e.expires) {
		delete(f.entries, key)
		return entry{}, false
	}
	return e, true
}

func (f *Fake) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries[key] = entry{value: value, expires: f.clock.Now().Add(ttl), ttl: ttl}
	return nil
}

func (f *Fake) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	e, ok := f.live(key)
	if !ok {
		return "", cache.ErrMiss
	}
	return e.value, nil
}

func (f *Fake) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.live(key)
	return ok, nil
}

func (f *Fake) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", false, f.err
	}
	if _, held := f.live(key); held {
		return "", false, nil
	}
	f.tokens++
	token := fmt.Sprintf("token-%d", f.tokens)
	f.entries[key] = entry{value: token, expires: f.clock.Now().Add(ttl), ttl: ttl}
	return token, true, nil
}

func (f *Fake) Unlock(_ context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if e, ok := f.live(key); ok && e.value == token {
		delete(f.entries, key)
	}
	return nil
}
