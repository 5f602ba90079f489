package video

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
)

var tracer = otel.Tracer("video_usecase")

// ListQuery is the shared listing vocabulary. Search is the raw free text; blank
// text means a plain listing.
type ListQuery struct {
	Search  string
	Filters video.Filters
	SortBy  video.SortBy
	Limit   int
	Offset  int
}

func (q ListQuery) params(now time.Time) (video.ListParams, int) {
	limit := video.NormalizeLimit(q.Limit)
	return video.ListParams{
		Filters: q.Filters,
		SortBy:  video.ParseSortBy(string(q.SortBy)),
		Limit:   video.FetchLimit(limit),
		Offset:  video.NormalizeOffset(q.Offset),
		Now:     now,
	}, limit
}

func (q ListQuery) spanAttributes() trace.SpanStartEventOption {
	return trace.WithAttributes(
		attribute.String("video.sort_by", string(q.SortBy)),
		attribute.Int("video.limit", q.Limit),
		attribute.Int("video.offset", q.Offset),
		attribute.Bool("video.search", video.NormalizeSearch(q.Search) != ""),
	)
}

type ListPublicVideosUseCase struct {
	videoRepo video.Repository
	logger    logger.Logger
	now       func() time.Time
}

func NewListPublicVideosUseCase(vRepo video.Repository, log logger.Logger) *ListPublicVideosUseCase {
	return &ListPublicVideosUseCase{
		videoRepo: vRepo,
		logger:    log,
		now:       time.Now,
	}
}

type ListVideosOutput struct {
	Page video.Page
}

func (uc *ListPublicVideosUseCase) Execute(ctx context.Context, input ListQuery) (*ListVideosOutput, error) {
	ctx, span := tracer.Start(ctx, "ListPublicVideosUseCase.Execute", input.spanAttributes())
	defer span.End()

	params, limit := input.params(uc.now())

	var (
		rows []*video.VideoWithUser
		err  error
	)
	if text := video.NormalizeSearch(input.Search); text != "" {
		rows, err = uc.videoRepo.SearchPublic(ctx, text, params)
	} else {
		rows, err = uc.videoRepo.ListPublic(ctx, params)
	}
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to list public videos", err)
		return nil, apperror.NewInternal("failed to fetch videos", err)
	}

	return &ListVideosOutput{Page: video.NewPage(rows, limit)}, nil
}

type ListOwnedVideosUseCase struct {
	videoRepo video.Repository
	logger    logger.Logger
	now       func() time.Time
}

func NewListOwnedVideosUseCase(vRepo video.Repository, log logger.Logger) *ListOwnedVideosUseCase {
	return &ListOwnedVideosUseCase{
		videoRepo: vRepo,
		logger:    log,
		now:       time.Now,
	}
}

type ListOwnedVideosInput struct {
	OwnerID string
	Query   ListQuery
}

func (uc *ListOwnedVideosUseCase) Execute(ctx context.Context, input ListOwnedVideosInput) (*ListVideosOutput, error) {
	ctx, span := tracer.Start(ctx, "ListOwnedVideosUseCase.Execute", input.Query.spanAttributes())
	defer span.End()

	if input.OwnerID == "" {
		return nil, apperror.NewUnauthorized("authentication required", nil)
	}

	params, limit := input.Query.params(uc.now())

	var (
		rows []*video.VideoWithUser
		err  error
	)
	if text := video.NormalizeSearch(input.Query.Search); text != "" {
		rows, err = uc.videoRepo.SearchByOwner(ctx, input.OwnerID, text, params)
	} else {
		rows, err = uc.videoRepo.ListByOwner(ctx, input.OwnerID, params)
	}
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to list owned videos", err, zap.String("owner_id", input.OwnerID))
		return nil, apperror.NewInternal("failed to fetch videos", err)
	}

	return &ListVideosOutput{Page: video.NewPage(rows, limit)}, nil
}
