package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGetExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, AuthorizedTagKey("CZ-0001"), "TAG-1", 20*time.Millisecond))
	v, err := m.Get(ctx, "charger:CZ-0001:authorized_tag")
	require.NoError(t, err)
	assert.Equal(t, "TAG-1", v)

	time.Sleep(40 * time.Millisecond)
	ok, err := m.Exists(ctx, AuthorizedTagKey("CZ-0001"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryLockIsExclusiveAndTokenGuarded(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	token, ok, err := m.TryLock(ctx, ReaperLockKey, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = m.TryLock(ctx, ReaperLockKey, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Unlock(ctx, ReaperLockKey, "someone-else"))
	_, ok, _ = m.TryLock(ctx, ReaperLockKey, time.Minute)
	assert.False(t, ok)

	require.NoError(t, m.Unlock(ctx, ReaperLockKey, token))
	_, ok, _ = m.TryLock(ctx, ReaperLockKey, time.Minute)
	assert.True(t, ok)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "charger:CZ-0001:connector:2:status", ConnectorStatusKey("CZ-0001", 2))
	assert.Equal(t, "charger:CZ-0001:online", HeartbeatKey("CZ-0001"))
}
