// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/light618/linkbot-ai/internal/admin"
	"github.com/light618/linkbot-ai/internal/auth"
	"github.com/light618/linkbot-ai/internal/config"
	"github.com/light618/linkbot-ai/internal/core"
	"github.com/light618/linkbot-ai/internal/health"
	"github.com/light618/linkbot-ai/internal/intent"
	"github.com/light618/linkbot-ai/internal/middleware"
	"github.com/light618/linkbot-ai/internal/reply"
	"github.com/light618/linkbot-ai/internal/seed"
	"github.com/light618/linkbot-ai/internal/server"
	"github.com/light618/linkbot-ai/internal/tenant"
	"github.com/light618/linkbot-ai/internal/user"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

type stores struct {
	tenants tenant.Repository
	users   user.Repository
	intents intent.Repository
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Driver,
	)

	telemetry, err := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
	} else if telemetry.Exporting() {
		logger.Info("OpenTelemetry tracer initialized",
			"endpoint", cfg.Otel.Endpoint,
		)
	}

	var (
		db    *core.Database
		repos stores
	)

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err = core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		logger.Info("database connected",
			"max_open_conns", cfg.Database.MaxOpenConns,
			"max_idle_conns", cfg.Database.MaxIdleConns,
		)
		repos = stores{
			tenants: tenant.NewRepository(db.DB),
			users:   user.NewRepository(db.DB),
			intents: intent.NewRepository(db.DB),
		}
	default:
		repos = stores{
			tenants: tenant.NewMemoryRepository(),
			users:   user.NewMemoryRepository(),
			intents: intent.NewMemoryRepository(),
		}
	}

	if cfg.Storage.Seed {
		if err := seed.Demo(ctx, seed.Stores{
			Tenants: repos.tenants,
			Users:   repos.users,
			Intents: repos.intents,
		}, time.Now()); err != nil {
			return err
		}
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	switch {
	case errors.Is(err, core.ErrNotConfigured):
		logger.Info("redis not configured, using in-process rate limiting")
	case err != nil:
		return err
	default:
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	tokens, err := auth.NewTokenService(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token service initialized",
		"algorithm", "HS256",
		"ttl", tokens.TTL().String(),
	)

	userSvc := user.NewService(repos.users)
	tenantSvc := tenant.NewService(repos.tenants)
	authSvc := auth.NewService(tokens, userSvc, tenantSvc)
	intentSvc := intent.NewService(repos.intents)

	var provider reply.Provider
	if cfg.Provider.Enabled {
		provider = reply.NewCozeClient(cfg.Provider)
		logger.Info("external model provider enabled",
			"model", cfg.Provider.Model,
			"timeout", cfg.Provider.Timeout.String(),
		)
	}

	resolver := reply.NewResolver(reply.ResolverConfig{
		Intents:  intentSvc,
		Provider: provider,
		Timeout:  cfg.Provider.Timeout,
		Logger:   logger,
	})

	authHandler := auth.NewHandler(authSvc)
	tenantHandler := tenant.NewHandler(tenantSvc)
	intentHandler := intent.NewHandler(intentSvc)
	replyHandler := reply.NewHandler(resolver, intentSvc, cfg.Provider)

	var deps []health.Dependency
	adminCfg := admin.HandlerConfig{
		Driver:     cfg.Storage.Driver,
		ReplyStats: resolver.Stats,
		Users:      userSvc,
		Tenants:    tenantSvc,
		Accounts:   userSvc,
	}
	if db != nil {
		deps = append(deps, health.Dependency{Name: "database", Checker: db})
		adminCfg.DBStats = db.Stats
		adminCfg.DBPing = db.Ping
	}
	if redis.Available() {
		deps = append(deps, health.Dependency{Name: "redis", Checker: redis})
		adminCfg.RedisStats = redis.PoolStats
		adminCfg.RedisPing = redis.Ping
	}

	healthHandler := health.NewHandler(cfg.App.Version, deps...)
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.RawClient(), middleware.RateLimitConfig{
			Name: "global",
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.App.Environment == "production"))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	authenticator := middleware.Authenticator(tokens)
	adminOnly := middleware.RequireAdmin
	editors := middleware.RequireRole(user.RoleAdmin, user.RoleOperator)

	credentialLimiter := middleware.NewRateLimiter(
		redis.RawClient(),
		middleware.RateLimitConfig{
			Name: "login",
			Limit: middleware.PerWindow(
				cfg.RateLimit.LoginRequests,
				cfg.RateLimit.LoginRequests,
				cfg.RateLimit.LoginWindow,
			),
			FailOpen: true,
		},
	).Handler

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator, credentialLimiter)
		tenantHandler.RegisterRoutes(r, authenticator)

		r.Route("/ai", func(r chi.Router) {
			r.Use(authenticator)
			intentHandler.RegisterRoutes(r, editors)
			replyHandler.RegisterRoutes(r)
		})

		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.Error("telemetry shutdown error", "error", err)
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
