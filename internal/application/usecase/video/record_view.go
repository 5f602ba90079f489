package video

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/internal/metrics"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
	"github.com/khoahotran/screenvault/pkg/viewcount"
)

type IncrementViewsUseCase struct {
	videoRepo video.Repository
	logger    logger.Logger
}

func NewIncrementViewsUseCase(vRepo video.Repository, log logger.Logger) *IncrementViewsUseCase {
	return &IncrementViewsUseCase{
		videoRepo: vRepo,
		logger:    log,
	}
}

// IncrementViews satisfies viewcount.Counter.
func (uc *IncrementViewsUseCase) IncrementViews(ctx context.Context, videoID string) (int, error) {
	ctx, span := tracer.Start(ctx, "IncrementViewsUseCase.IncrementViews",
		trace.WithAttributes(attribute.String("video.id", videoID)))
	defer span.End()

	views, err := uc.videoRepo.IncrementViews(ctx, videoID)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			return 0, apperror.NewNotFound("video", videoID)
		}
		span.RecordError(err)
		uc.logger.Error("Failed to increment views", err, zap.String("video_id", videoID))
		return 0, apperror.NewInternal("failed to increment views", err)
	}
	return views, nil
}

// SessionSets resolves the set of already counted videos for one browsing session.
type SessionSets interface {
	Session(sessionID string) viewcount.SessionSet
}

// RecordViewUseCase runs the view debouncer for a watch progress report. Each
// request replays play plus observe against the session set, so a reload inside
// the same session never counts twice.
type RecordViewUseCase struct {
	videoRepo video.Repository
	sessions  SessionSets
	counter   viewcount.Counter
	metrics   *metrics.Metrics
	logger    logger.Logger
}

func NewRecordViewUseCase(vRepo video.Repository, sessions SessionSets, counter viewcount.Counter, m *metrics.Metrics, log logger.Logger) *RecordViewUseCase {
	return &RecordViewUseCase{
		videoRepo: vRepo,
		sessions:  sessions,
		counter:   counter,
		metrics:   m,
		logger:    log,
	}
}

type RecordViewInput struct {
	VideoID   string
	SessionID string
	ViewerID  string
	// WatchedSeconds is the furthest playback position reached in this session.
	WatchedSeconds float64
	// DurationSeconds overrides the stored duration when the player knows better.
	DurationSeconds float64
}

type RecordViewOutput struct {
	Counted bool   `json:"counted"`
	Views   int    `json:"views"`
	State   string `json:"state"`
}

const (
	viewResultCounted   = "counted"
	viewResultDuplicate = "duplicate"
	viewResultOwner     = "owner"
	viewResultPending   = "pending"
)

func (uc *RecordViewUseCase) Execute(ctx context.Context, input RecordViewInput) (*RecordViewOutput, error) {
	ctx, span := tracer.Start(ctx, "RecordViewUseCase.Execute",
		trace.WithAttributes(attribute.String("video.id", input.VideoID)))
	defer span.End()

	verr := apperror.NewValidation()
	if strings.TrimSpace(input.SessionID) == "" {
		verr.Add("sessionId", "Session id is required")
	}
	if input.WatchedSeconds < 0 {
		verr.Add("watchedSeconds", "Watched seconds must not be negative")
	}
	if input.DurationSeconds < 0 {
		verr.Add("duration", "Duration must be a positive number")
	}
	if err := validationResult(verr); err != nil {
		return nil, err
	}

	v, err := uc.videoRepo.FindAuthorized(ctx, input.VideoID, input.ViewerID)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			return nil, apperror.NewNotFound("video", input.VideoID)
		}
		span.RecordError(err)
		uc.logger.Error("Failed to fetch video for view", err, zap.String("video_id", input.VideoID))
		return nil, apperror.NewInternal("failed to record view", err)
	}

	tracker := viewcount.NewTracker(viewcount.Options{
		VideoID:  v.ID,
		OwnerID:  v.UserID,
		ViewerID: input.ViewerID,
		Views:    v.Views,
	}, uc.sessions.Session(input.SessionID), uc.counter)

	if err := tracker.Play(ctx); err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to start view tracking", err, zap.String("video_id", v.ID))
		return nil, apperror.NewInternal("failed to record view", err)
	}

	if tracker.State() == viewcount.StateUnwatched {
		uc.metrics.ObserveView(viewResultOwner)
		return uc.output(tracker, false), nil
	}
	if tracker.State() == viewcount.StateCounted {
		uc.metrics.ObserveView(viewResultDuplicate)
		return uc.output(tracker, false), nil
	}

	counted, err := tracker.Observe(ctx, seconds(input.WatchedSeconds), uc.duration(v, input.DurationSeconds))
	if err != nil {
		span.RecordError(err)
		uc.logger.Error("Failed to record view", err, zap.String("video_id", v.ID))
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal("failed to record view", err)
	}

	switch {
	case counted:
		uc.metrics.ObserveView(viewResultCounted)
	case tracker.State() == viewcount.StateCounted:
		uc.metrics.ObserveView(viewResultDuplicate)
	default:
		uc.metrics.ObserveView(viewResultPending)
	}
	return uc.output(tracker, counted), nil
}

func (uc *RecordViewUseCase) duration(v *video.VideoWithUser, reported float64) time.Duration {
	if reported > 0 {
		return seconds(reported)
	}
	if v.Duration != nil {
		return time.Duration(*v.Duration) * time.Second
	}
	return 0
}

func (uc *RecordViewUseCase) output(t *viewcount.Tracker, counted bool) *RecordViewOutput {
	return &RecordViewOutput{
		Counted: counted,
		Views:   t.Views(),
		State:   t.State().String(),
	}
}

// seconds converts a reported position to the millisecond grid view
// thresholds are computed on.
func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}
