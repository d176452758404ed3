package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	libredis "chargeshare/backend/libs/redis"
	"chargeshare/backend/services/sessions-service/internal/cache"
	"chargeshare/backend/services/sessions-service/internal/clock"
	"chargeshare/backend/services/sessions-service/internal/config"
	"chargeshare/backend/services/sessions-service/internal/db"
	httpserver "chargeshare/backend/services/sessions-service/internal/http"
	"chargeshare/backend/services/sessions-service/internal/http/handlers"
	"chargeshare/backend/services/sessions-service/internal/http/middleware"
	"chargeshare/backend/services/sessions-service/internal/metrics"
	redisstore "chargeshare/backend/services/sessions-service/internal/redis"
	"chargeshare/backend/services/sessions-service/internal/repository"
	"chargeshare/backend/services/sessions-service/internal/scheduler"
	"chargeshare/backend/services/sessions-service/internal/service"
)

const memoryCacheCleanup = time.Minute

// volatile is what the engine needs from the cache backend.
type volatile interface {
	cache.Cache
	cache.Locker
}

// App wires sessions-service dependencies.
type App struct {
	server      *httpserver.Server
	reaperJob   *scheduler.ReaperJob
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.EnsureSchema(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, err
		}
	}

	var (
		redisClient *redis.Client
		kv          volatile
	)
	switch cfg.Cache.Driver {
	case config.CacheDriverMemory:
		kv = cache.NewMemory(memoryCacheCleanup)
	case config.CacheDriverRedis:
		redisClient, err = libredis.NewRedisClient(libredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			sqlDB.Close()
			return nil, err
		}
		kv = redisstore.NewCache(redisClient)
	default:
		sqlDB.Close()
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
	logger.Info("cache selected", zap.String("driver", cfg.Cache.Driver))

	st := repository.NewStore(sqlDB)
	clk := clock.System()
	m := metrics.New()

	authorizations := service.NewAuthorizationService(st, kv, cfg.AuthorizationTTL(), m, logger)
	connectors := service.NewConnectorService(st, kv, cfg.ConnectorStatusTTL(), m, logger)
	chargers := service.NewChargerService(st, kv, clk, cfg.HeartbeatTTL(), logger)
	sessions := service.NewSessionService(st, clk, m, logger)
	reaper := service.NewReaper(st, clk, m, logger)

	routes := httpserver.Routes{
		Authorization: handlers.NewAuthorizationHandler(authorizations, logger),
		Connectors:    handlers.NewConnectorHandler(connectors, logger),
		Transactions:  handlers.NewTransactionHandler(sessions, reaper, logger),
		Chargers:      handlers.NewChargerHandler(chargers, logger),
		Health:        handlers.NewHealthHandler(),
		Metrics:       m.Handler(),
	}

	auth := middleware.NewServiceAuth(cfg.Auth.APIKeyHash, cfg.Auth.JWTSecret)
	router := httpserver.NewRouter(routes, auth.Middleware, m, logger)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	a := &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}
	if interval := cfg.ReaperInterval(); interval > 0 {
		a.reaperJob = scheduler.NewReaperJob(reaper, kv, interval, cfg.ReaperMaxAge(), logger)
	}
	return a, nil
}

// Run starts the reaper (when enabled) and the HTTP server.
func (a *App) Run(ctx context.Context) error {
	if a.reaperJob != nil {
		go a.reaperJob.RunForever(ctx)
	}
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
