package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"habittracker/internal/cache"
	"habittracker/internal/calendar"
	"habittracker/internal/config"
	"habittracker/internal/handler"
	"habittracker/internal/httpserver"
	"habittracker/internal/repository"
	"habittracker/internal/service"
	"habittracker/migrations"
	"habittracker/pkg/db"
	"habittracker/pkg/logger"
	"habittracker/pkg/mq"
	"habittracker/pkg/otel"
	"habittracker/pkg/outbox"
	redisclient "habittracker/pkg/redis"
	"habittracker/pkg/util"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr := logger.NewLogger(cfg.Log)
	defer logr.Sync()

	loc, err := cfg.Tracker.Location()
	if err != nil {
		logr.Fatal("Invalid tracker timezone", zap.Error(err))
	}
	logr.Info("Starting habittracker server...",
		zap.String("version", version),
		zap.String("db_host", cfg.DB.Host),
		zap.String("timezone", loc.String()),
		zap.Bool("allow_past_edits", cfg.Tracker.AllowPastEdits),
	)

	shutdownTracing, err := otel.Init(cfg.Otel, version, logr)
	if err != nil {
		logr.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer shutdownTracing()

	// DB
	dbConn, err := db.NewConnection(cfg.DB, logr)
	if err != nil {
		logr.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	applied, err := db.NewMigrator(dbConn, migrations.FS, logr).Up(migrateCtx)
	migrateCancel()
	if err != nil {
		logr.Fatal("Failed to apply migrations", zap.Error(err))
	}
	logr.Info("Database ready", zap.Int("migrations_applied", applied))

	// Redis 可选；不可用时缓存与幂等检查关闭
	rdb, err := redisclient.NewRedisClient(cfg.Redis, logr)
	if err != nil {
		logr.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// MQ publisher is only needed for admin replays; the worker owns dispatch.
	var publisher *mq.Publisher
	if cfg.MQ.URL != "" {
		publisher, err = mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			logr.Warn("MQ unavailable, outbox replay disabled", zap.Error(err))
			publisher = nil
		}
	}
	defer publisher.Close()

	tracker := service.Tracker{
		Clock:          calendar.SystemClock,
		Location:       loc,
		AllowPastEdits: cfg.Tracker.AllowPastEdits,
	}

	habitRepo := repository.NewHabitRepository(dbConn, loc, logr)
	dayRepo := repository.NewDayRepository(dbConn, loc, logr)
	taskRepo := repository.NewTaskRepository(dbConn, loc, logr)
	summaryRepo := repository.NewSummaryRepository(dbConn, loc, logr)
	outboxRepo := outbox.NewRepository(dbConn)

	summaryCache := cache.NewSummaryCache(rdb, cfg.Tracker.SummaryCacheTTL, logr)
	deduper := util.NewDeduper(rdb, cfg.Tracker.IdempotencyTTL, logr)

	habitService := service.NewHabitService(dbConn, habitRepo, dayRepo, outboxRepo, summaryCache, tracker, logr)
	dayService := service.NewDayService(habitRepo, dayRepo, taskRepo, tracker, logr)
	taskService := service.NewTaskService(dbConn, dayRepo, taskRepo, outboxRepo, summaryCache, tracker, logr)
	summaryService := service.NewSummaryService(summaryRepo, summaryCache, tracker, logr)
	authService := service.NewAuthService(cfg.Auth.PasswordHash, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	replayService := outbox.NewReplayService(outboxRepo, publisher, logr)

	if !authService.Enabled() {
		logr.Warn("auth.jwt_secret is empty, API is unauthenticated")
	}

	readyChecks := map[string]httpserver.ReadyCheck{
		"db_not_ready": dbConn.Ping,
	}
	if rdb != nil {
		readyChecks["redis_not_ready"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}

	router := httpserver.NewRouter(httpserver.Handlers{
		Habit: handler.NewHabitHandler(habitService, deduper, loc, logr),
		Task:  handler.NewTaskHandler(taskService, deduper, loc, logr),
		Day:   handler.NewDayHandler(dayService, summaryService, loc, logr),
		Auth:  handler.NewAuthHandler(authService, logr),
		Admin: handler.NewAdminHandler(replayService, logr),
	}, httpserver.Options{
		Logger:      logr,
		Verifier:    authService,
		ReadyChecks: readyChecks,
		Tracing:     cfg.Otel.Enabled,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logr.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("Shutting down habittracker server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logr.Info("HTTP server stopped")
	}

	logr.Info("habittracker server shutdown complete")
}
