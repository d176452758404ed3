package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "chargeshare/backend/libs/config"
)

// Cache drivers.
const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

type HTTPConfig struct {
	Port string `yaml:"port" env:"SESSIONS_HTTP_PORT"`
}

type DatabaseConfig struct {
	DSN          string `yaml:"dsn" env:"SESSIONS_POSTGRES_DSN"`
	MaxOpenConns int    `yaml:"maxOpenConns" env:"SESSIONS_DB_MAX_OPEN_CONNS"`
	AutoMigrate  bool   `yaml:"autoMigrate" env:"SESSIONS_POSTGRES_AUTO_MIGRATE"`
}

type CacheConfig struct {
	Driver string `yaml:"driver" env:"SESSIONS_CACHE_DRIVER"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"SESSIONS_REDIS_ADDR"`
	Password string `yaml:"password" env:"SESSIONS_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"SESSIONS_REDIS_DB"`
}

// AuthConfig holds the credentials the gateway authenticates with.
type AuthConfig struct {
	APIKeyHash string `yaml:"apiKeyHash" env:"SESSIONS_AUTH_API_KEY_HASH"`
	JWTSecret  string `yaml:"jwtSecret" env:"SESSIONS_AUTH_JWT_SECRET"`
}

type TTLConfig struct {
	Authorization   time.Duration `yaml:"authorization" env:"SESSIONS_AUTHORIZATION_TTL"`
	ConnectorStatus time.Duration `yaml:"connectorStatus" env:"SESSIONS_CONNECTOR_STATUS_TTL"`
	Heartbeat       time.Duration `yaml:"heartbeat" env:"SESSIONS_HEARTBEAT_TTL"`
}

// ReaperConfig drives the in-process reaper. A zero interval disables it.
type ReaperConfig struct {
	Interval      time.Duration `yaml:"interval" env:"SESSIONS_REAPER_INTERVAL"`
	MaxAgeMinutes int           `yaml:"maxAgeMinutes" env:"SESSIONS_REAPER_MAX_AGE_MINUTES"`
}

// Config defines sessions service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	TTL      TTLConfig      `yaml:"ttl"`
	Reaper   ReaperConfig   `yaml:"reaper"`
}

func defaults() *Config {
	return &Config{
		HTTP:  HTTPConfig{Port: "8082"},
		Cache: CacheConfig{Driver: CacheDriverRedis},
		Redis: RedisConfig{Addr: "localhost:6379"},
		TTL: TTLConfig{
			Authorization:   60 * time.Second,
			ConnectorStatus: 24 * time.Hour,
			Heartbeat:       330 * time.Second,
		},
		Reaper: ReaperConfig{MaxAgeMinutes: 15},
	}
}

// Load reads configuration via shared helper.
func Load() (*Config, error) {
	cfg := defaults()
	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("config: database dsn required")
	}
	switch c.Cache.Driver {
	case CacheDriverRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("config: redis addr required")
		}
	case CacheDriverMemory:
	default:
		return fmt.Errorf("config: unknown cache driver %q", c.Cache.Driver)
	}
	if c.TTL.Authorization <= 0 || c.TTL.ConnectorStatus <= 0 || c.TTL.Heartbeat <= 0 {
		return errors.New("config: ttls must be positive")
	}
	if c.Reaper.Interval < 0 {
		return errors.New("config: reaper interval must not be negative")
	}
	if c.Reaper.MaxAgeMinutes <= 0 {
		return errors.New("config: reaper max age must be positive")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8082"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

func (c *Config) AuthorizationTTL() time.Duration   { return c.TTL.Authorization }
func (c *Config) ConnectorStatusTTL() time.Duration { return c.TTL.ConnectorStatus }
func (c *Config) HeartbeatTTL() time.Duration       { return c.TTL.Heartbeat }
func (c *Config) ReaperInterval() time.Duration     { return c.Reaper.Interval }

// ReaperMaxAge is the staleness threshold used by the in-process reaper.
func (c *Config) ReaperMaxAge() time.Duration {
	return time.Duration(c.Reaper.MaxAgeMinutes) * time.Minute
}
