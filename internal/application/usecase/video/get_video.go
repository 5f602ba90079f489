package video

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
)

type GetVideoOutput struct {
	Video *video.VideoWithUser
}

// GetAuthorizedVideoUseCase returns a video that is public or owned by the viewer.
// Private videos of other users are reported exactly like missing ones.
type GetAuthorizedVideoUseCase struct {
	videoRepo video.Repository
	logger    logger.Logger
}

func NewGetAuthorizedVideoUseCase(vRepo video.Repository, log logger.Logger) *GetAuthorizedVideoUseCase {
	return &GetAuthorizedVideoUseCase{
		videoRepo: vRepo,
		logger:    log,
	}
}

type GetAuthorizedVideoInput struct {
	VideoID  string
	ViewerID string
}

func (uc *GetAuthorizedVideoUseCase) Execute(ctx context.Context, input GetAuthorizedVideoInput) (*GetVideoOutput, error) {
	ctx, span := tracer.Start(ctx, "GetAuthorizedVideoUseCase.Execute",
		trace.WithAttributes(attribute.String("video.id", input.VideoID)))
	defer span.End()

	v, err := uc.videoRepo.FindAuthorized(ctx, input.VideoID, input.ViewerID)
	if err != nil {
		return nil, uc.mapFindError(span, input.VideoID, err)
	}
	return &GetVideoOutput{Video: v}, nil
}

func (uc *GetAuthorizedVideoUseCase) mapFindError(span trace.Span, id string, err error) error {
	if errors.Is(err, video.ErrVideoNotFound) {
		return apperror.NewNotFound("video", id)
	}
	span.RecordError(err)
	uc.logger.Error("Failed to fetch video", err, zap.String("video_id", id))
	return apperror.NewInternal("failed to fetch video", err)
}

// GetPublicVideoUseCase backs unauthenticated surfaces such as link previews.
type GetPublicVideoUseCase struct {
	videoRepo video.Repository
	logger    logger.Logger
}

func NewGetPublicVideoUseCase(vRepo video.Repository, log logger.Logger) *GetPublicVideoUseCase {
	return &GetPublicVideoUseCase{
		videoRepo: vRepo,
		logger:    log,
	}
}

type GetPublicVideoInput struct {
	VideoID string
}

func (uc *GetPublicVideoUseCase) Execute(ctx context.Context, input GetPublicVideoInput) (*GetVideoOutput, error) {
	ctx, span := tracer.Start(ctx, "GetPublicVideoUseCase.Execute",
		trace.WithAttributes(attribute.String("video.id", input.VideoID)))
	defer span.End()

	v, err := uc.videoRepo.FindPublicByID(ctx, input.VideoID)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			return nil, apperror.NewNotFound("video", input.VideoID)
		}
		span.RecordError(err)
		uc.logger.Error("Failed to fetch public video", err, zap.String("video_id", input.VideoID))
		return nil, apperror.NewInternal("failed to fetch video", err)
	}
	return &GetVideoOutput{Video: v}, nil
}
