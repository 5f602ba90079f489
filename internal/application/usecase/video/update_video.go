package video

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type UpdateVideoOutput struct {
	Video *video.Video
}

func mapOwnedMutationError(log logger.Logger, span trace.Span, op, id, callerID string, err error) error {
	if errors.Is(err, video.ErrVideoNotFound) {
		return apperror.NewNotFoundOrDenied("video", id)
	}
	span.RecordError(err)
	log.Error("Failed to "+op+" video", err, zap.String("video_id", id), zap.String("caller_id", callerID))
	return apperror.NewInternal("failed to "+op+" video", err)
}

type UpdateVisibilityUseCase struct {
	videoRepo video.Repository
	logger    logger.Logger
}

func NewUpdateVisibilityUseCase(vRepo video.Repository, log logger.Logger) *UpdateVisibilityUseCase {
	return &UpdateVisibilityUseCase{
		videoRepo: vRepo,
		logger:    log,
	}
}

type UpdateVisibilityInput struct {
	VideoID    string
	CallerID   string
	Visibility video.Visibility
}

func (uc *UpdateVisibilityUseCase) Execute(ctx context.Context, input UpdateVisibilityInput) (*UpdateVideoOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateVisibilityUseCase.Execute",
		trace.WithAttributes(
			attribute.String("video.id", input.VideoID),
			attribute.String("video.visibility", string(input.Visibility)),
		))
	defer span.End()

	if input.CallerID == "" {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}
	verr := apperror.NewValidation()
	checkVisibility(verr, input.Visibility)
	if err := validationResult(verr); err != nil {
		return nil, err
	}

	v, err := uc.videoRepo.UpdateVisibility(ctx, input.VideoID, input.CallerID, input.Visibility)
	if err != nil {
		return nil, mapOwnedMutationError(uc.logger, span, "update", input.VideoID, input.CallerID, err)
	}

	uc.logger.Info("Video visibility updated",
		zap.String("video_id", v.ID), zap.String("visibility", string(v.Visibility)))
	return &UpdateVideoOutput{Video: v}, nil
}

type UpdateDetailsUseCase struct {
	videoRepo video.Repository
	logger    logger.Logger
}

func NewUpdateDetailsUseCase(vRepo video.Repository, log logger.Logger) *UpdateDetailsUseCase {
	return &UpdateDetailsUseCase{
		videoRepo: vRepo,
		logger:    log,
	}
}

type UpdateDetailsInput struct {
	VideoID  string
	CallerID string
	Patch    video.DetailsPatch
}

func (uc *UpdateDetailsUseCase) Execute(ctx context.Context, input UpdateDetailsInput) (*UpdateVideoOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateDetailsUseCase.Execute",
		trace.WithAttributes(attribute.String("video.id", input.VideoID)))
	defer span.End()

	if input.CallerID == "" {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}

	patch := input.Patch
	if patch.Empty() {
		return nil, apperror.NewValidation(apperror.FieldError{
			Field:   "body",
			Message: "At least one of title, description or visibility is required",
		})
	}

	verr := apperror.NewValidation()
	if patch.Title != nil {
		checkTitle(verr, *patch.Title)
		trimmed := strings.TrimSpace(*patch.Title)
		patch.Title = &trimmed
	}
	if patch.Description != nil {
		checkDescription(verr, *patch.Description)
		trimmed := strings.TrimSpace(*patch.Description)
		patch.Description = &trimmed
	}
	if patch.Visibility != nil {
		checkVisibility(verr, *patch.Visibility)
	}
	if err := validationResult(verr); err != nil {
		return nil, err
	}

	v, err := uc.videoRepo.UpdateDetails(ctx, input.VideoID, input.CallerID, patch)
	if err != nil {
		return nil, mapOwnedMutationError(uc.logger, span, "update", input.VideoID, input.CallerID, err)
	}

	uc.logger.Info("Video details updated", zap.String("video_id", v.ID))
	return &UpdateVideoOutput{Video: v}, nil
}
