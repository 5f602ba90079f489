package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/viewcount"
)

// ErrViewNotCounted means the server neither counted the view nor had it
// counted already. The tracker releases its claim and may retry.
var ErrViewNotCounted = errors.New("client: view not counted by server")

// ViewSession is one browsing session on the player side. It remembers counted
// videos locally and reports a view to the server once the watch threshold is met.
type ViewSession struct {
	client    *Client
	sessionID string
	seen      *viewcount.MemorySet
}

func (c *Client) NewViewSession(sessionID string) *ViewSession {
	return &ViewSession{
		client:    c,
		sessionID: sessionID,
		seen:      viewcount.NewMemorySet(),
	}
}

// ViewTracker is a viewcount.Tracker whose report carries the position and
// duration of the Observe call that crossed the threshold.
type ViewTracker struct {
	*viewcount.Tracker

	duration time.Duration

	mu       sync.Mutex
	watched  time.Duration
	observed time.Duration
}

// Observe reports watch progress. A zero duration falls back to the one known
// when tracking started. Durations are taken on the millisecond grid the
// server uses.
func (t *ViewTracker) Observe(ctx context.Context, watched, duration time.Duration) (bool, error) {
	if duration <= 0 {
		duration = t.duration
	}
	duration = duration.Round(time.Millisecond)

	t.mu.Lock()
	t.watched, t.observed = watched, duration
	t.mu.Unlock()

	return t.Tracker.Observe(ctx, watched, duration)
}

func (t *ViewTracker) progress() (watched, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watched, t.observed
}

// Track returns a tracker for one playback of v by viewerID (empty when signed out).
// duration is what the player reports; zero falls back to the stored duration.
// The tracker's displayed count is v.Views plus an optimistic increment.
func (s *ViewSession) Track(v *video.VideoWithUser, viewerID string, duration time.Duration) *ViewTracker {
	if duration <= 0 && v.Duration != nil {
		duration = time.Duration(*v.Duration) * time.Second
	}
	vt := &ViewTracker{duration: duration}

	report := viewcount.CounterFunc(func(ctx context.Context, videoID string) (int, error) {
		watched, dur := vt.progress()
		res, err := s.client.RecordView(ctx, videoID, ViewReport{
			SessionID:      s.sessionID,
			WatchedSeconds: watched.Seconds(),
			Duration:       dur.Seconds(),
		})
		if err != nil {
			return 0, err
		}
		if !res.Counted && res.State != viewcount.StateCounted.String() {
			return 0, fmt.Errorf("%w: state %s", ErrViewNotCounted, res.State)
		}
		return res.Views, nil
	})

	vt.Tracker = viewcount.NewTracker(viewcount.Options{
		VideoID:  v.ID,
		OwnerID:  v.UserID,
		ViewerID: viewerID,
		Views:    v.Views,
	}, s.seen, report)
	return vt
}
