package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Amazpen/amazpen-app-sub007/internal/app"
	jobmetrics "github.com/Amazpen/amazpen-app-sub007/internal/jobs"
	"github.com/Amazpen/amazpen-app-sub007/internal/metrics"
	"github.com/Amazpen/amazpen-app-sub007/internal/observability"
	platformcache "github.com/Amazpen/amazpen-app-sub007/internal/platform/cache"
	"github.com/Amazpen/amazpen-app-sub007/internal/platform/db"
	"github.com/Amazpen/amazpen-app-sub007/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := platformcache.New(ctx, platformcache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	obs := observability.NewMetrics()

	metricsRepo := metrics.NewRepository(pool)
	metricsCache := metrics.NewCache(redisClient, cfg.MetricsCacheTTL, obs.Registerer())
	metricsService := metrics.NewService(metricsRepo, metricsRepo, metricsCache, logger)

	refreshJob := jobs.NewMetricsRefreshJob(metricsService, logger, jobmetrics.NewMetrics(obs.Registerer()))

	metricsServer := observability.NewServer(cfg.WorkerMetricsAddr, obs)
	go func() {
		logger.Info("starting worker metrics listener", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker metrics listener", slog.Any("error", err))
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("worker metrics shutdown", slog.Any("error", err))
		}
	}()

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskMetricsRefresh, Handler: refreshJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
