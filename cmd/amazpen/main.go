package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Amazpen/amazpen-app-sub007/internal/app"
	"github.com/Amazpen/amazpen-app-sub007/internal/metrics"
	metricshttp "github.com/Amazpen/amazpen-app-sub007/internal/metrics/http"
	"github.com/Amazpen/amazpen-app-sub007/internal/observability"
	platformcache "github.com/Amazpen/amazpen-app-sub007/internal/platform/cache"
	"github.com/Amazpen/amazpen-app-sub007/internal/platform/db"
	"github.com/Amazpen/amazpen-app-sub007/internal/rbac"
	"github.com/Amazpen/amazpen-app-sub007/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := platformcache.New(ctx, platformcache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("redis unavailable, serving reads uncached", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	obs := observability.NewMetrics()

	metricsRepo := metrics.NewRepository(dbpool)
	metricsCache := metrics.NewCache(redisClient, cfg.MetricsCacheTTL, obs.Registerer())
	metricsService := metrics.NewService(metricsRepo, metricsRepo, metricsCache, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Checker: rbacService, Logger: logger, Header: cfg.UserHeader}

	metricsHandler := metricshttp.NewHandler(logger, metricsService, jobClient, metricshttp.Config{
		RefreshTimeout: cfg.MetricsRefreshTimeout,
		RefreshLimit:   cfg.MetricsRefreshLimit,
		MaxRetry:       cfg.MetricsRefreshRetry,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		RBACMiddleware: rbacMiddleware,
		MetricsHandler: metricsHandler,
		JobHandler:     jobHandler,
		Metrics:        obs,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
