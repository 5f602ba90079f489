package video

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/application/service"
	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/internal/metrics"
	"github.com/khoahotran/screenvault/pkg/logger"
)

// CleanupStorageUseCase consumes video events and removes the stored files of
// deleted videos. Storage failures are logged and counted, never returned, so a
// broken object never blocks the queue.
type CleanupStorageUseCase struct {
	storage service.FileStorage
	metrics *metrics.Metrics
	logger  logger.Logger
}

func NewCleanupStorageUseCase(storage service.FileStorage, m *metrics.Metrics, log logger.Logger) *CleanupStorageUseCase {
	return &CleanupStorageUseCase{
		storage: storage,
		metrics: m,
		logger:  log,
	}
}

func (uc *CleanupStorageUseCase) Execute(ctx context.Context, evt video.Event) error {
	ctx, span := tracer.Start(ctx, "CleanupStorageUseCase.Execute",
		trace.WithAttributes(
			attribute.String("video.id", evt.VideoID),
			attribute.String("event.type", string(evt.EventType)),
		))
	defer span.End()

	log := uc.logger.With(zap.String("video_id", evt.VideoID), zap.String("event_type", string(evt.EventType)))

	if evt.EventType != video.EventTypeDeleted {
		log.Warn("Ignoring unsupported video event")
		return nil
	}

	for _, fileURL := range evt.StoredFiles() {
		err := uc.storage.Delete(ctx, fileURL)
		uc.metrics.ObserveCleanup(err)
		if err != nil {
			span.RecordError(err)
			log.Error("Failed to delete stored file", err, zap.String("file_url", fileURL))
			continue
		}
		log.Info("Deleted stored file", zap.String("file_url", fileURL))
	}
	return nil
}
