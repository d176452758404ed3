package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	Port string `yaml:"port" env:"TEST_HTTP_PORT"`
}

type sample struct {
	HTTP     nested        `yaml:"http"`
	Interval time.Duration `yaml:"interval" env:"TEST_INTERVAL"`
	Limit    int           `yaml:"limit"`
	Enabled  bool          `yaml:"enabled" env:"TEST_ENABLED"`
	Skipped  string        `yaml:"skipped" env:"-"`
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: \"9000\"\ninterval: 5m\nlimit: 3\nskipped: keep\n"), 0o600))

	t.Setenv(defaultConfigPathEnv, path)
	t.Setenv("TEST_HTTP_PORT", "9100")
	t.Setenv("TEST_ENABLED", "true")
	t.Setenv("LIMIT", "7")
	t.Setenv("SKIPPED", "ignored")

	var cfg sample
	require.NoError(t, LoadConfig(&cfg))

	assert.Equal(t, "9100", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Minute, cfg.Interval)
	assert.Equal(t, 7, cfg.Limit)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "keep", cfg.Skipped)
}

func TestLoadConfigParsesDurationFromEnv(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, "")
	t.Setenv("TEST_INTERVAL", "90s")

	var cfg sample
	require.NoError(t, LoadConfig(&cfg))
	assert.Equal(t, 90*time.Second, cfg.Interval)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Setenv(defaultConfigPathEnv, "")
	t.Setenv("TEST_ENABLED", "maybe")

	var cfg sample
	err := LoadConfig(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_ENABLED")
}

func TestLoadConfigRequiresStructPointer(t *testing.T) {
	require.Error(t, LoadConfig(nil))
	require.Error(t, LoadConfig(sample{}))
}
