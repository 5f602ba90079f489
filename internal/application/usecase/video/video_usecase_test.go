package video

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/screenvault/adapters/persistence"
	"github.com/khoahotran/screenvault/internal/domain/user"
	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/internal/metrics"
	"github.com/khoahotran/screenvault/pkg/apperror"
	"github.com/khoahotran/screenvault/pkg/logger"
	"github.com/khoahotran/screenvault/pkg/viewcount"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

type capturePublisher struct {
	mu     sync.Mutex
	events []video.Event
	err    error
}

func (p *capturePublisher) PublishVideoEvent(_ context.Context, evt video.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

type captureStorage struct {
	mu      sync.Mutex
	deleted []string
	failOn  string
}

func (s *captureStorage) Delete(_ context.Context, fileURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, fileURL)
	if fileURL == s.failOn {
		return errors.New("storage unavailable")
	}
	return nil
}

type VideoUseCaseTestSuite struct {
	suite.Suite

	ctx     context.Context
	store   *persistence.MemoryStore
	repo    video.Repository
	log     logger.Logger
	metrics *metrics.Metrics
}

func (s *VideoUseCaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = persistence.NewMemoryStore().WithClock(func() time.Time { return testNow })
	s.store.PutUser(&user.User{ID: "alice", Name: "Alice", Email: "alice@example.com"})
	s.store.PutUser(&user.User{ID: "bob", Name: "Bob", Email: "bob@example.com"})
	s.repo = s.store.Videos()
	s.log = logger.NewNopLogger()
	reg := prometheus.NewRegistry()
	s.metrics = metrics.New(reg, reg)
}

func (s *VideoUseCaseTestSuite) seed(id, owner string, vis video.Visibility, duration *int, createdAt time.Time) *video.Video {
	v := &video.Video{
		ID:           id,
		UserID:       owner,
		Title:        "Clip " + id,
		Description:  "Description for " + id,
		VideoURL:     "https://res.cloudinary.com/demo/video/upload/v1/" + id + ".mp4",
		ThumbnailURL: "https://res.cloudinary.com/demo/image/upload/v1/" + id + ".png",
		Visibility:   vis,
		Duration:     duration,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	s.Require().NoError(s.repo.Save(s.ctx, v))
	return v
}

func (s *VideoUseCaseTestSuite) listPublic(q ListQuery) video.Page {
	uc := NewListPublicVideosUseCase(s.repo, s.log)
	uc.now = func() time.Time { return testNow }
	out, err := uc.Execute(s.ctx, q)
	s.Require().NoError(err)
	return out.Page
}

func ids(page video.Page) []string {
	out := make([]string, 0, len(page.Videos))
	for _, v := range page.Videos {
		out = append(out, v.ID)
	}
	return out
}

func (s *VideoUseCaseTestSuite) TestEndToEndExample() {
	s.seed("A", "alice", video.VisibilityPublic, intPtr(600), testNow)
	s.seed("B", "alice", video.VisibilityPrivate, intPtr(100), testNow.AddDate(0, 0, -40))

	page := s.listPublic(ListQuery{Filters: video.ParseFilters("", "medium", ""), SortBy: video.SortLatest})
	s.Equal([]string{"A"}, ids(page))

	page = s.listPublic(ListQuery{Search: "xyz", SortBy: video.SortLatest})
	s.Empty(page.Videos)
	s.NotNil(page.Videos)
	s.False(page.HasMore)
}

func (s *VideoUseCaseTestSuite) TestPagination_ExactlyOnceAcrossPages() {
	for _, tc := range []struct {
		total int
		limit int
	}{
		{total: 0, limit: 3},
		{total: 3, limit: 3},
		{total: 4, limit: 3},
		{total: 6, limit: 3},
		{total: 7, limit: 3},
	} {
		s.Run(fmt.Sprintf("%d_by_%d", tc.total, tc.limit), func() {
			s.SetupTest()
			for i := 0; i < tc.total; i++ {
				s.seed(fmt.Sprintf("v%02d", i), "alice", video.VisibilityPublic, nil, testNow.Add(-time.Duration(i)*time.Minute))
			}

			var (
				seen   []string
				offset int
				pages  int
			)
			for {
				page := s.listPublic(ListQuery{Limit: tc.limit, Offset: offset})
				pages++
				s.LessOrEqual(len(page.Videos), tc.limit)
				seen = append(seen, ids(page)...)
				offset += len(page.Videos)
				if !page.HasMore {
					break
				}
				s.Require().Less(pages, 10)
			}

			s.Len(seen, tc.total)
			s.ElementsMatch(uniq(seen), seen)
		})
	}
}

func uniq(in []string) []string {
	set := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := set[v]; !ok {
			set[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func (s *VideoUseCaseTestSuite) TestPagination_HasMoreAtExactMultiple() {
	for i := 0; i < 4; i++ {
		s.seed(fmt.Sprintf("v%d", i), "alice", video.VisibilityPublic, nil, testNow.Add(-time.Duration(i)*time.Minute))
	}

	first := s.listPublic(ListQuery{Limit: 2})
	s.True(first.HasMore)
	second := s.listPublic(ListQuery{Limit: 2, Offset: 2})
	s.False(second.HasMore)
	s.Equal([]string{"v2", "v3"}, ids(second))
}

func (s *VideoUseCaseTestSuite) TestListPublic_DateRangesAreOred() {
	s.seed("today", "alice", video.VisibilityPublic, nil, testNow.Add(-time.Hour))
	s.seed("lastMonth", "alice", video.VisibilityPublic, nil, testNow.AddDate(0, 0, -20))
	s.seed("old", "alice", video.VisibilityPublic, nil, testNow.AddDate(-2, 0, 0))

	page := s.listPublic(ListQuery{Filters: video.ParseFilters("today,month", "", "")})
	s.ElementsMatch([]string{"today", "lastMonth"}, ids(page))

	unfiltered := s.listPublic(ListQuery{})
	emptyFilters := s.listPublic(ListQuery{Filters: video.ParseFilters("", "", "")})
	s.Equal(ids(unfiltered), ids(emptyFilters))
}

func (s *VideoUseCaseTestSuite) TestListPublic_DurationBoundaries() {
	s.seed("d300", "alice", video.VisibilityPublic, intPtr(300), testNow)
	s.seed("d1200", "alice", video.VisibilityPublic, intPtr(1200), testNow)
	s.seed("dnil", "alice", video.VisibilityPublic, nil, testNow)

	s.ElementsMatch([]string{"d300"}, ids(s.listPublic(ListQuery{Filters: video.ParseFilters("", "short", "")})))
	s.ElementsMatch([]string{"d300", "d1200"}, ids(s.listPublic(ListQuery{Filters: video.ParseFilters("", "medium", "")})))
	s.ElementsMatch([]string{"d1200"}, ids(s.listPublic(ListQuery{Filters: video.ParseFilters("", "long", "")})))
}

func (s *VideoUseCaseTestSuite) TestListPublic_NeverLeaksPrivate() {
	s.seed("pub", "alice", video.VisibilityPublic, nil, testNow)
	s.seed("priv", "alice", video.VisibilityPrivate, nil, testNow)

	page := s.listPublic(ListQuery{Filters: video.ParseFilters("", "", "private")})
	s.Equal([]string{"pub"}, ids(page))

	page = s.listPublic(ListQuery{Search: "priv"})
	s.Empty(page.Videos)
}

func (s *VideoUseCaseTestSuite) TestSearchPublic_MatchesAuthorName() {
	s.seed("v1", "bob", video.VisibilityPublic, nil, testNow)
	s.seed("v2", "alice", video.VisibilityPublic, nil, testNow)

	page := s.listPublic(ListQuery{Search: "  BOB "})
	s.Equal([]string{"v1"}, ids(page))
}

func (s *VideoUseCaseTestSuite) TestListOwned_ScopesAndFiltersVisibility() {
	s.seed("a1", "alice", video.VisibilityPublic, nil, testNow)
	s.seed("a2", "alice", video.VisibilityPrivate, nil, testNow.Add(-time.Minute))
	s.seed("b1", "bob", video.VisibilityPublic, nil, testNow)

	uc := NewListOwnedVideosUseCase(s.repo, s.log)
	uc.now = func() time.Time { return testNow }

	out, err := uc.Execute(s.ctx, ListOwnedVideosInput{OwnerID: "alice"})
	s.Require().NoError(err)
	s.Equal([]string{"a1", "a2"}, ids(out.Page))

	out, err = uc.Execute(s.ctx, ListOwnedVideosInput{OwnerID: "alice", Query: ListQuery{Filters: video.ParseFilters("", "", "private")}})
	s.Require().NoError(err)
	s.Equal([]string{"a2"}, ids(out.Page))

	out, err = uc.Execute(s.ctx, ListOwnedVideosInput{OwnerID: "alice", Query: ListQuery{Search: "a2"}})
	s.Require().NoError(err)
	s.Equal([]string{"a2"}, ids(out.Page))

	_, err = uc.Execute(s.ctx, ListOwnedVideosInput{})
	s.ErrorIs(err, apperror.ErrUnauthorized)
}

func (s *VideoUseCaseTestSuite) TestGetAuthorized_PrivateLooksMissing() {
	s.seed("priv", "alice", video.VisibilityPrivate, nil, testNow)
	uc := NewGetAuthorizedVideoUseCase(s.repo, s.log)

	out, err := uc.Execute(s.ctx, GetAuthorizedVideoInput{VideoID: "priv", ViewerID: "alice"})
	s.Require().NoError(err)
	s.Equal("Alice", out.Video.User.Name)

	_, errOther := uc.Execute(s.ctx, GetAuthorizedVideoInput{VideoID: "priv", ViewerID: "bob"})
	_, errAnon := uc.Execute(s.ctx, GetAuthorizedVideoInput{VideoID: "priv"})
	_, errMissing := uc.Execute(s.ctx, GetAuthorizedVideoInput{VideoID: "nope", ViewerID: "bob"})

	for _, err := range []error{errOther, errAnon, errMissing} {
		s.ErrorIs(err, apperror.ErrNotFound)
		var appErr *apperror.AppError
		s.Require().ErrorAs(err, &appErr)
		s.Equal("video not found", appErr.Message)
	}

	_, err = NewGetPublicVideoUseCase(s.repo, s.log).Execute(s.ctx, GetPublicVideoInput{VideoID: "priv"})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *VideoUseCaseTestSuite) TestCreate_ValidatesFields() {
	uc := NewCreateVideoUseCase(s.repo, s.log)

	_, err := uc.Execute(s.ctx, CreateVideoInput{
		OwnerID:      "alice",
		Title:        "ab",
		Description:  "short",
		VideoURL:     "not a url",
		ThumbnailURL: "",
		Visibility:   "friends",
		Duration:     intPtr(-1),
	})
	var verr *apperror.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.ErrorIs(err, apperror.ErrInvalidInput)

	messages := map[string]string{}
	for _, f := range verr.Fields {
		messages[f.Field] = f.Message
	}
	s.Equal(map[string]string{
		"title":        "Title must be at least 3 characters",
		"description":  "Description must be at least 10 characters",
		"videoUrl":     "Invalid video URL",
		"thumbnailUrl": "Thumbnail URL is required",
		"visibility":   "Visibility must be either 'public' or 'private'",
		"duration":     "Duration must be a positive number",
	}, messages)

	out, err := uc.Execute(s.ctx, CreateVideoInput{
		OwnerID:      "alice",
		Title:        "Zero length",
		Description:  "A clip whose duration is zero",
		VideoURL:     "https://cdn.example.com/zero.mp4",
		ThumbnailURL: "https://cdn.example.com/zero.png",
		Duration:     intPtr(0),
	})
	s.Require().NoError(err)
	s.Require().NotNil(out.Video.Duration)
	s.Equal(0, *out.Video.Duration)
}

func (s *VideoUseCaseTestSuite) TestCreate_AssignsServerFields() {
	uc := NewCreateVideoUseCase(s.repo, s.log)
	uc.now = func() time.Time { return testNow }
	uc.newID = func() string { return "fixed-id" }

	out, err := uc.Execute(s.ctx, CreateVideoInput{
		OwnerID:      "alice",
		Title:        "  My first clip ",
		Description:  "A long enough description",
		VideoURL:     "https://cdn.example.com/v.mp4",
		ThumbnailURL: "https://cdn.example.com/v.png",
	})
	s.Require().NoError(err)
	s.Equal("fixed-id", out.Video.ID)
	s.Equal("My first clip", out.Video.Title)
	s.Equal(video.VisibilityPublic, out.Video.Visibility)
	s.Equal(0, out.Video.Views)
	s.Equal(testNow, out.Video.CreatedAt)

	stored, err := s.repo.FindByID(s.ctx, "fixed-id")
	s.Require().NoError(err)
	s.Equal("alice", stored.UserID)

	_, err = uc.Execute(s.ctx, CreateVideoInput{Title: "whatever"})
	s.ErrorIs(err, apperror.ErrUnauthorized)
}

func (s *VideoUseCaseTestSuite) TestOwnershipEnforcement_LeavesRowUntouched() {
	original := s.seed("v1", "alice", video.VisibilityPublic, nil, testNow.Add(-time.Hour))

	_, err := NewUpdateVisibilityUseCase(s.repo, s.log).Execute(s.ctx, UpdateVisibilityInput{
		VideoID: "v1", CallerID: "bob", Visibility: video.VisibilityPrivate,
	})
	s.ErrorIs(err, apperror.ErrNotFound)
	var appErr *apperror.AppError
	s.Require().ErrorAs(err, &appErr)
	s.Equal("video not found or access denied", appErr.Message)

	title := "Hijacked title"
	_, err = NewUpdateDetailsUseCase(s.repo, s.log).Execute(s.ctx, UpdateDetailsInput{
		VideoID: "v1", CallerID: "bob", Patch: video.DetailsPatch{Title: &title},
	})
	s.ErrorIs(err, apperror.ErrNotFound)

	_, err = NewDeleteVideoUseCase(s.repo, &capturePublisher{}, s.metrics, s.log).Execute(s.ctx, DeleteVideoInput{
		VideoID: "v1", CallerID: "bob",
	})
	s.ErrorIs(err, apperror.ErrNotFound)

	stored, err := s.repo.FindByID(s.ctx, "v1")
	s.Require().NoError(err)
	s.Equal(video.VisibilityPublic, stored.Visibility)
	s.Equal(original.Title, stored.Title)
	s.Equal(original.UpdatedAt, stored.UpdatedAt)
}

func (s *VideoUseCaseTestSuite) TestUpdateVisibility_Owner() {
	s.seed("v1", "alice", video.VisibilityPublic, nil, testNow.Add(-time.Hour))

	out, err := NewUpdateVisibilityUseCase(s.repo, s.log).Execute(s.ctx, UpdateVisibilityInput{
		VideoID: "v1", CallerID: "alice", Visibility: video.VisibilityPrivate,
	})
	s.Require().NoError(err)
	s.Equal(video.VisibilityPrivate, out.Video.Visibility)
	s.Equal(testNow, out.Video.UpdatedAt)

	_, err = NewUpdateVisibilityUseCase(s.repo, s.log).Execute(s.ctx, UpdateVisibilityInput{
		VideoID: "v1", CallerID: "alice", Visibility: "unlisted",
	})
	var verr *apperror.ValidationError
	s.ErrorAs(err, &verr)
}

func (s *VideoUseCaseTestSuite) TestUpdateDetails_PartialPatch() {
	s.seed("v1", "alice", video.VisibilityPublic, nil, testNow.Add(-time.Hour))
	uc := NewUpdateDetailsUseCase(s.repo, s.log)

	desc := "  A brand new description  "
	out, err := uc.Execute(s.ctx, UpdateDetailsInput{
		VideoID: "v1", CallerID: "alice", Patch: video.DetailsPatch{Description: &desc},
	})
	s.Require().NoError(err)
	s.Equal("A brand new description", out.Video.Description)
	s.Equal("Clip v1", out.Video.Title)

	_, err = uc.Execute(s.ctx, UpdateDetailsInput{VideoID: "v1", CallerID: "alice"})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	tooShort := "no"
	_, err = uc.Execute(s.ctx, UpdateDetailsInput{
		VideoID: "v1", CallerID: "alice", Patch: video.DetailsPatch{Title: &tooShort},
	})
	var verr *apperror.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Equal("title", verr.Fields[0].Field)
}

func (s *VideoUseCaseTestSuite) TestDelete_SubmitsCleanupAndSurvivesQueueFailure() {
	v := s.seed("v1", "alice", video.VisibilityPublic, nil, testNow)
	s.seed("v2", "alice", video.VisibilityPublic, nil, testNow)

	pub := &capturePublisher{}
	uc := NewDeleteVideoUseCase(s.repo, pub, s.metrics, s.log)
	uc.now = func() time.Time { return testNow }

	out, err := uc.Execute(s.ctx, DeleteVideoInput{VideoID: "v1", CallerID: "alice"})
	s.Require().NoError(err)
	s.Equal("v1", out.Video.ID)
	s.Require().Len(pub.events, 1)
	s.Equal(video.EventTypeDeleted, pub.events[0].EventType)
	s.Equal([]string{v.VideoURL, v.ThumbnailURL}, pub.events[0].StoredFiles())

	_, err = s.repo.FindByID(s.ctx, "v1")
	s.ErrorIs(err, video.ErrVideoNotFound)

	pub.err = errors.New("broker down")
	_, err = uc.Execute(s.ctx, DeleteVideoInput{VideoID: "v2", CallerID: "alice"})
	s.Require().NoError(err)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.EventPublishTotal.WithLabelValues(string(video.EventTypeDeleted), "error")))

	_, err = uc.Execute(s.ctx, DeleteVideoInput{VideoID: "v1", CallerID: "alice"})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *VideoUseCaseTestSuite) TestCleanupStorage_BestEffort() {
	storage := &captureStorage{failOn: "https://cdn.example.com/v.mp4"}
	uc := NewCleanupStorageUseCase(storage, s.metrics, s.log)

	err := uc.Execute(s.ctx, video.Event{
		EventType:    video.EventTypeDeleted,
		VideoID:      "v1",
		VideoURL:     "https://cdn.example.com/v.mp4",
		ThumbnailURL: "https://cdn.example.com/v.png",
	})
	s.NoError(err)
	s.Equal([]string{"https://cdn.example.com/v.mp4", "https://cdn.example.com/v.png"}, storage.deleted)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StorageCleanupTotal.WithLabelValues("error")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.StorageCleanupTotal.WithLabelValues("ok")))

	s.NoError(uc.Execute(s.ctx, video.Event{EventType: "video.unknown", VideoID: "v1"}))
	s.Len(storage.deleted, 2)
}

func (s *VideoUseCaseTestSuite) TestIncrementViews() {
	s.seed("v1", "alice", video.VisibilityPrivate, nil, testNow)
	uc := NewIncrementViewsUseCase(s.repo, s.log)

	views, err := uc.IncrementViews(s.ctx, "v1")
	s.Require().NoError(err)
	s.Equal(1, views)

	_, err = uc.IncrementViews(s.ctx, "missing")
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *VideoUseCaseTestSuite) recordView() *RecordViewUseCase {
	return NewRecordViewUseCase(s.repo, persistence.NewMemoryViewSessions(time.Hour), NewIncrementViewsUseCase(s.repo, s.log), s.metrics, s.log)
}

func (s *VideoUseCaseTestSuite) TestRecordView_CountsOncePerSession() {
	s.seed("v1", "alice", video.VisibilityPublic, intPtr(600), testNow)
	uc := s.recordView()

	out, err := uc.Execute(s.ctx, RecordViewInput{VideoID: "v1", SessionID: "s1", ViewerID: "bob", WatchedSeconds: 10})
	s.Require().NoError(err)
	s.False(out.Counted)
	s.Equal("watching", out.State)

	out, err = uc.Execute(s.ctx, RecordViewInput{VideoID: "v1", SessionID: "s1", ViewerID: "bob", WatchedSeconds: 31})
	s.Require().NoError(err)
	s.True(out.Counted)
	s.Equal(1, out.Views)

	// A reload in the same session.
	out, err = uc.Execute(s.ctx, RecordViewInput{VideoID: "v1", SessionID: "s1", ViewerID: "bob", WatchedSeconds: 120})
	s.Require().NoError(err)
	s.False(out.Counted)
	s.Equal("counted", out.State)

	out, err = uc.Execute(s.ctx, RecordViewInput{VideoID: "v1", SessionID: "s2", WatchedSeconds: 45})
	s.Require().NoError(err)
	s.True(out.Counted)

	stored, err := s.repo.FindByID(s.ctx, "v1")
	s.Require().NoError(err)
	s.Equal(2, stored.Views)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.ViewsTotal.WithLabelValues(viewResultCounted)))
}

func (s *VideoUseCaseTestSuite) TestRecordView_OwnerNeverCounts() {
	s.seed("v1", "alice", video.VisibilityPrivate, intPtr(60), testNow)
	uc := s.recordView()

	out, err := uc.Execute(s.ctx, RecordViewInput{VideoID: "v1", SessionID: "s1", ViewerID: "alice", WatchedSeconds: 60})
	s.Require().NoError(err)
	s.False(out.Counted)
	s.Equal("unwatched", out.State)

	stored, err := s.repo.FindByID(s.ctx, "v1")
	s.Require().NoError(err)
	s.Equal(0, stored.Views)
}

func (s *VideoUseCaseTestSuite) TestRecordView_ShortVideoAndUnknownDuration() {
	s.seed("short", "alice", video.VisibilityPublic, intPtr(20), testNow)
	s.seed("unknown", "alice", video.VisibilityPublic, nil, testNow)
	uc := s.recordView()

	out, err := uc.Execute(s.ctx, RecordViewInput{VideoID: "short", SessionID: "s1", WatchedSeconds: 6})
	s.Require().NoError(err)
	s.True(out.Counted)

	out, err = uc.Execute(s.ctx, RecordViewInput{VideoID: "unknown", SessionID: "s1", WatchedSeconds: 300})
	s.Require().NoError(err)
	s.False(out.Counted)

	out, err = uc.Execute(s.ctx, RecordViewInput{VideoID: "unknown", SessionID: "s1", WatchedSeconds: 3, DurationSeconds: 10})
	s.Require().NoError(err)
	s.True(out.Counted)
}

func (s *VideoUseCaseTestSuite) TestRecordView_FractionalDurationAtThreshold() {
	s.seed("v1", "alice", video.VisibilityPublic, nil, testNow)
	uc := s.recordView()

	for i, d := range []float64{12.4, 19.8, 22.3, 27.6} {
		dur := time.Duration(d * float64(time.Second)).Round(time.Millisecond)
		threshold, ok := viewcount.Threshold(dur)
		s.Require().True(ok)

		out, err := uc.Execute(s.ctx, RecordViewInput{
			VideoID:         "v1",
			SessionID:       fmt.Sprintf("frac-%d", i),
			WatchedSeconds:  threshold.Seconds(),
			DurationSeconds: dur.Seconds(),
		})
		s.Require().NoError(err)
		s.True(out.Counted, "duration %v", d)
	}
}

func (s *VideoUseCaseTestSuite) TestRecordView_FailedIncrementReleasesSession() {
	s.seed("v1", "alice", video.VisibilityPublic, intPtr(60), testNow)
	sessions := persistence.NewMemoryViewSessions(time.Hour)
	failing := viewcount.CounterFunc(func(context.Context, string) (int, error) {
		return 0, errors.New("db down")
	})
	broken := NewRecordViewUseCase(s.repo, sessions, failing, s.metrics, s.log)
	working := NewRecordViewUseCase(s.repo, sessions, NewIncrementViewsUseCase(s.repo, s.log), s.metrics, s.log)

	_, err := broken.Execute(s.ctx, RecordViewInput{VideoID: "v1", SessionID: "s1", WatchedSeconds: 30})
	s.ErrorIs(err, apperror.ErrInternal)

	out, err := working.Execute(s.ctx, RecordViewInput{VideoID: "v1", SessionID: "s1", WatchedSeconds: 30})
	s.Require().NoError(err)
	s.True(out.Counted)
	s.Equal(1, out.Views)
}

func (s *VideoUseCaseTestSuite) TestRecordView_RejectsBadInput() {
	s.seed("priv", "alice", video.VisibilityPrivate, intPtr(60), testNow)
	uc := s.recordView()

	_, err := uc.Execute(s.ctx, RecordViewInput{VideoID: "priv", WatchedSeconds: 10})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	_, err = uc.Execute(s.ctx, RecordViewInput{VideoID: "priv", SessionID: "s1", ViewerID: "bob", WatchedSeconds: 60})
	s.ErrorIs(err, apperror.ErrNotFound)
}

func TestVideoUseCaseTestSuite(t *testing.T) {
	suite.Run(t, new(VideoUseCaseTestSuite))
}
