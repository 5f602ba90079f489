package video

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type CreateVideoUseCase struct {
	videoRepo video.Repository
	logger    logger.Logger
	now       func() time.Time
	newID     func() string
}

func NewCreateVideoUseCase(vRepo video.Repository, log logger.Logger) *CreateVideoUseCase {
	return &CreateVideoUseCase{
		videoRepo: vRepo,
		logger:    log,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

type CreateVideoInput struct {
	OwnerID string

	Title        string
	Description  string
	VideoURL     string
	ThumbnailURL string
	Visibility   video.Visibility
	Duration     *int
}

type CreateVideoOutput struct {
	Video *video.Video
}

func (uc *CreateVideoUseCase) Execute(ctx context.Context, input CreateVideoInput) (*CreateVideoOutput, error) {
	ctx, span := tracer.Start(ctx, "CreateVideoUseCase.Execute",
		trace.WithAttributes(attribute.String("video.owner_id", input.OwnerID)))
	defer span.End()

	if input.OwnerID == "" {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}
	if input.Visibility == "" {
		input.Visibility = video.VisibilityPublic
	}

	verr := apperror.NewValidation()
	checkTitle(verr, input.Title)
	checkDescription(verr, input.Description)
	checkURL(verr, "videoUrl", "video URL", input.VideoURL)
	checkURL(verr, "thumbnailUrl", "thumbnail URL", input.ThumbnailURL)
	checkVisibility(verr, input.Visibility)
	checkDuration(verr, input.Duration)
	if err := validationResult(verr); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	v := &video.Video{
		ID:           uc.newID(),
		UserID:       input.OwnerID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		VideoURL:     input.VideoURL,
		ThumbnailURL: input.ThumbnailURL,
		Visibility:   input.Visibility,
		Views:        0,
		Duration:     input.Duration,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := v.Validate(); err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := uc.videoRepo.Save(ctx, v); err != nil {
		span.RecordError(err)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		uc.logger.Error("Failed to create video", err, zap.String("owner_id", input.OwnerID))
		return nil, apperror.NewInternal("failed to create video", err)
	}

	uc.logger.Info("Video created", zap.String("video_id", v.ID), zap.String("owner_id", v.UserID))
	return &CreateVideoOutput{Video: v}, nil
}
