package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"habittracker/internal/cache"
	"habittracker/internal/config"
	"habittracker/internal/mqhandler"
	"habittracker/pkg/db"
	"habittracker/pkg/logger"
	"habittracker/pkg/mq"
	"habittracker/pkg/otel"
	"habittracker/pkg/outbox"
	redisclient "habittracker/pkg/redis"
)

var version = "dev"

const invalidationQueue = "habittracker.summary-invalidation.q"

// worker 轮询 outbox_events 并把事件发布到 RabbitMQ；
// 配置了 Redis 时同时消费事件以清理 summary 缓存
func main() {
	exitCode := 0
	defer func() {
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr := logger.NewLogger(cfg.Log)
	defer logr.Sync()

	if cfg.MQ.URL == "" {
		logr.Fatal("mq.url is required for the outbox worker")
	}

	cfg.Otel.ServiceName += "-worker"
	shutdownTracing, err := otel.Init(cfg.Otel, version, logr)
	if err != nil {
		logr.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer shutdownTracing()

	dbConn, err := db.NewConnection(cfg.DB, logr)
	if err != nil {
		logr.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logr.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()
	logr.Info("MQ publisher connected", zap.String("exchange", mq.ExchangeName))

	dispatcher := outbox.NewDispatcher(outbox.NewRepository(dbConn), publisher, logr).
		WithInterval(cfg.Outbox.Interval).
		WithBatchSize(cfg.Outbox.BatchSize).
		WithMaxRetries(cfg.Outbox.MaxRetries)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runners := []runner{runnerFunc(func(ctx context.Context) error {
		dispatcher.Start(ctx)
		return nil
	})}

	rdb, err := redisclient.NewRedisClient(cfg.Redis, logr)
	if err != nil {
		logr.Warn("Redis unavailable, summary invalidation consumer disabled", zap.Error(err))
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()

		router := mqhandler.NewRouter(logr)
		summaryCache := cache.NewSummaryCache(rdb, cfg.Tracker.SummaryCacheTTL, logr)
		mqhandler.NewSummaryInvalidationHandler(summaryCache, logr).Register(router)

		consumer, err := mq.NewConsumer(cfg.MQ.URL, invalidationQueue, router.Keys(), logr)
		if err != nil {
			logr.Fatal("Failed to init MQ consumer", zap.Error(err))
		}
		defer consumer.Close()
		consumer.SetHandler(router.Handle)

		runners = append(runners, consumer)
	}

	if err := runAll(ctx, runners...); err != nil {
		// consumer 断开时整体退出，交给进程管理器重启
		logr.Error("Worker stopped", zap.Error(err))
		exitCode = 1
		return
	}
	logr.Info("Worker shutdown complete")
}
