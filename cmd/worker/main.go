package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/widya-sms/widya-sms/internal/access"
	"github.com/widya-sms/widya-sms/internal/app"
	jobmetrics "github.com/widya-sms/widya-sms/internal/jobs"
	"github.com/widya-sms/widya-sms/internal/platform/cache"
	"github.com/widya-sms/widya-sms/internal/platform/db"
	"github.com/widya-sms/widya-sms/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	accessStore := access.NewStore(pool)
	ruleCache := access.NewRuleCache(redisClient, cfg.AccessCacheTTL)
	metrics := jobmetrics.NewMetrics(nil)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAssignmentIntegrity, Handler: jobs.NewAssignmentIntegrityHandler(pool, logger, metrics)},
			{Type: jobs.TaskAccessCacheWarmup, Handler: jobs.NewAccessCacheWarmupHandler(pool, accessStore, ruleCache, logger, metrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 2 * * *", Task: jobs.NewAssignmentIntegrityTask()},
			{Spec: "*/30 * * * *", Task: jobs.NewAccessCacheWarmupTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
