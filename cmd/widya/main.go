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

	"github.com/widya-sms/widya-sms/internal/access"
	"github.com/widya-sms/widya-sms/internal/app"
	"github.com/widya-sms/widya-sms/internal/assignment"
	"github.com/widya-sms/widya-sms/internal/auth"
	"github.com/widya-sms/widya-sms/internal/catalog"
	"github.com/widya-sms/widya-sms/internal/observability"
	"github.com/widya-sms/widya-sms/internal/platform/cache"
	"github.com/widya-sms/widya-sms/internal/platform/db"
	"github.com/widya-sms/widya-sms/internal/shared"
	"github.com/widya-sms/widya-sms/jobs"
	"github.com/widya-sms/widya-sms/report"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessionManager := shared.NewSessionManager(redisClient, "widya_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(dbpool)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	metrics := observability.NewMetrics()

	accessStore := access.NewStore(dbpool)
	ruleCache := access.NewRuleCache(redisClient, cfg.AccessCacheTTL)
	evaluator := access.NewEvaluator(accessStore, ruleCache)
	accessService := access.NewService(accessStore, ruleCache, auditLogger)
	accessHandler := access.NewHandler(logger, accessService, evaluator)
	accessMiddleware := access.Middleware{
		Evaluator: evaluator,
		Logger:    logger,
		OnDenied:  metrics.RecordAccessDenied,
	}

	assignmentRepo := assignment.NewRepository(dbpool)
	assignmentService := assignment.NewService(assignmentRepo, auditLogger)
	assignmentHandler := assignment.NewHandler(logger, assignmentService)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogHandler := catalog.NewHandler(logger, catalogRepo)

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, dbpool, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobsClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(jobsClient, asynq.NewInspector(redisOpts), logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		AuthHandler:       authHandler,
		AccessHandler:     accessHandler,
		AssignmentHandler: assignmentHandler,
		CatalogHandler:    catalogHandler,
		ReportHandler:     reportHandler,
		JobsHandler:       jobsHandler,
		AccessMiddleware:  accessMiddleware,
		Metrics:           metrics,
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
