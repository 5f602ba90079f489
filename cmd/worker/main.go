package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/adapters/event"
	"github.com/khoahotran/screenvault/adapters/media_storage"
	videoUC "github.com/khoahotran/screenvault/internal/application/usecase/video"
	"github.com/khoahotran/screenvault/internal/config"
	"github.com/khoahotran/screenvault/internal/metrics"
	"github.com/khoahotran/screenvault/pkg/logger"
	"github.com/khoahotran/screenvault/pkg/tracing"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer func() { _ = appLogger.Sync() }()
	appLogger.Info("Starting ScreenVault cleanup worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("cannot start worker", errors.New("config Kafka brokers not found"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "screenvault-worker")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	storage, err := media_storage.NewFileStorage(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init file storage", err)
	}

	cleanupUC := videoUC.NewCleanupStorageUseCase(storage, metrics.NewDefault(), appLogger)

	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicVideoEvents,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicVideoEvents), zap.String("group", cfg.Kafka.GroupID))

	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		evt, err := event.DecodeVideoEvent(msg)
		if err != nil {
			appLogger.Error("Skipping malformed video event", err, zap.String("key", string(msg.Key)))
			commitMessage(consumer, appLogger, msg)
			continue
		}

		appLogger.Debug("Processing video event",
			zap.String("event_type", string(evt.EventType)),
			zap.String("video_id", evt.VideoID))

		if err := cleanupUC.Execute(ctx, evt); err != nil {
			appLogger.Error("Failed to process video event", err, zap.String("video_id", evt.VideoID))
			continue
		}

		commitMessage(consumer, appLogger, msg)
	}
}

func commitMessage(consumer *kafka.Reader, log logger.Logger, msg kafka.Message) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
