package video

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/application/service"
	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/internal/metrics"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
)

// DeleteVideoUseCase removes the row first and then hands the stored files to the
// cleanup queue. A failed submission is logged; the delete still succeeds.
type DeleteVideoUseCase struct {
	videoRepo video.Repository
	publisher service.VideoEventPublisher
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

func NewDeleteVideoUseCase(vRepo video.Repository, publisher service.VideoEventPublisher, m *metrics.Metrics, log logger.Logger) *DeleteVideoUseCase {
	return &DeleteVideoUseCase{
		videoRepo: vRepo,
		publisher: publisher,
		metrics:   m,
		logger:    log,
		now:       time.Now,
	}
}

type DeleteVideoInput struct {
	VideoID  string
	CallerID string
}

type DeleteVideoOutput struct {
	Video *video.Video
}

func (uc *DeleteVideoUseCase) Execute(ctx context.Context, input DeleteVideoInput) (*DeleteVideoOutput, error) {
	ctx, span := tracer.Start(ctx, "DeleteVideoUseCase.Execute",
		trace.WithAttributes(attribute.String("video.id", input.VideoID)))
	defer span.End()

	if input.CallerID == "" {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}

	deleted, err := uc.videoRepo.Delete(ctx, input.VideoID, input.CallerID)
	if err != nil {
		return nil, mapOwnedMutationError(uc.logger, span, "delete", input.VideoID, input.CallerID, err)
	}
	uc.logger.Info("Video deleted", zap.String("video_id", deleted.ID), zap.String("owner_id", deleted.UserID))

	evt := video.NewDeletedEvent(deleted, uc.now().UTC())
	if uc.publisher == nil {
		uc.logger.Warn("No cleanup queue configured, stored files are kept",
			zap.String("video_id", deleted.ID), zap.Strings("files", evt.StoredFiles()))
		return &DeleteVideoOutput{Video: deleted}, nil
	}

	pubErr := uc.publisher.PublishVideoEvent(ctx, evt)
	uc.metrics.ObservePublish(string(evt.EventType), pubErr)
	if pubErr != nil {
		span.RecordError(pubErr)
		uc.logger.Error("Failed to submit storage cleanup", pubErr,
			zap.String("video_id", deleted.ID),
			zap.Strings("files", evt.StoredFiles()))
	}

	return &DeleteVideoOutput{Video: deleted}, nil
}
