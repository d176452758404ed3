package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SESSIONS_POSTGRES_DSN", "postgres://localhost/chargeshare")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8082", cfg.HTTPAddress())
	assert.Equal(t, CacheDriverRedis, cfg.Cache.Driver)
	assert.Equal(t, 60*time.Second, cfg.AuthorizationTTL())
	assert.Equal(t, 24*time.Hour, cfg.ConnectorStatusTTL())
	assert.Equal(t, 330*time.Second, cfg.HeartbeatTTL())
	assert.Zero(t, cfg.ReaperInterval())
	assert.Equal(t, 15*time.Minute, cfg.ReaperMaxAge())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  port: "9000"
database:
  dsn: postgres://file/db
cache:
  driver: memory
ttl:
  authorization: 90s
reaper:
  interval: 1m
  maxAgeMinutes: 30
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SESSIONS_HTTP_PORT", ":9100")
	t.Setenv("SESSIONS_REAPER_MAX_AGE_MINUTES", "20")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.HTTPAddress())
	assert.Equal(t, "postgres://file/db", cfg.Database.DSN)
	assert.Equal(t, CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, 90*time.Second, cfg.AuthorizationTTL())
	assert.Equal(t, time.Minute, cfg.ReaperInterval())
	assert.Equal(t, 20*time.Minute, cfg.ReaperMaxAge())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }},
		{"unknown driver", func(c *Config) { c.Cache.Driver = "memcached" }},
		{"redis without addr", func(c *Config) { c.Redis.Addr = " " }},
		{"zero ttl", func(c *Config) { c.TTL.Heartbeat = 0 }},
		{"negative interval", func(c *Config) { c.Reaper.Interval = -time.Second }},
		{"zero max age", func(c *Config) { c.Reaper.MaxAgeMinutes = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaults()
			cfg.Database.DSN = "postgres://localhost/db"
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := defaults()
	cfg.Database.DSN = "postgres://localhost/db"
	cfg.Cache.Driver = CacheDriverMemory
	cfg.Redis.Addr = ""
	assert.NoError(t, cfg.Validate())
}
