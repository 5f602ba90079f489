// Package viewcount decides when a playback counts as a view.
//
// A Tracker follows one video in one browsing session through
// unwatched, watching and counted. It counts once the viewer has watched
// min(30s, 30% of the duration), rounded up to a whole millisecond so that
// reports carried as fractional seconds compare the same on both ends. The
// session set makes reloads within the same browsing session idempotent, and
// the owner of a video never enters watching.
//
// This is a heuristic for a displayed number, not an anti-abuse control.
package viewcount

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// MaxThreshold caps the required watch time for long videos.
const MaxThreshold = 30 * time.Second

// A short video counts after thresholdNum/thresholdDen of its duration.
const (
	thresholdNum = 3
	thresholdDen = 10
)

type State int

const (
	StateUnwatched State = iota
	StateWatching
	StateCounted
)

func (s State) String() string {
	switch s {
	case StateUnwatched:
		return "unwatched"
	case StateWatching:
		return "watching"
	case StateCounted:
		return "counted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// SessionSet remembers which videos were already counted in a browsing session.
type SessionSet interface {
	Contains(ctx context.Context, videoID string) (bool, error)
	// Add records the id and reports whether it was newly added.
	Add(ctx context.Context, videoID string) (bool, error)
	// Remove releases a claim whose increment failed.
	Remove(ctx context.Context, videoID string) error
}

// Counter performs the atomic server-side increment and returns the new total.
type Counter interface {
	IncrementViews(ctx context.Context, videoID string) (int, error)
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(ctx context.Context, videoID string) (int, error)

func (f CounterFunc) IncrementViews(ctx context.Context, videoID string) (int, error) {
	return f(ctx, videoID)
}

// Threshold is the watch time after which a playback counts.
// ok is false while the duration is unknown or not positive.
func Threshold(duration time.Duration) (threshold time.Duration, ok bool) {
	if duration <= 0 {
		return 0, false
	}
	t := duration * thresholdNum / thresholdDen
	if t > MaxThreshold {
		t = MaxThreshold
	}
	if r := t % time.Millisecond; r != 0 {
		t += time.Millisecond - r
	}
	return t, true
}

var ErrNotWatching = errors.New("viewcount: playback has not started")

type Options struct {
	VideoID  string
	OwnerID  string
	ViewerID string
	// Views is the count shown before this session's increment.
	Views int
}

type Tracker struct {
	mu      sync.Mutex
	opts    Options
	state   State
	views   int
	session SessionSet
	counter Counter
}

func NewTracker(opts Options, session SessionSet, counter Counter) *Tracker {
	return &Tracker{
		opts:    opts,
		state:   StateUnwatched,
		views:   opts.Views,
		session: session,
		counter: counter,
	}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Views is the locally displayed count, including an optimistic +1 once counted.
func (t *Tracker) Views() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.views
}

func (t *Tracker) isOwner() bool {
	return t.opts.ViewerID != "" && t.opts.ViewerID == t.opts.OwnerID
}

// Play moves unwatched to watching. If the session already counted the video the
// tracker goes straight to counted. Owners stay unwatched.
func (t *Tracker) Play(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateUnwatched || t.isOwner() {
		return nil
	}
	seen, err := t.session.Contains(ctx, t.opts.VideoID)
	if err != nil {
		return fmt.Errorf("viewcount: read session set: %w", err)
	}
	if seen {
		t.state = StateCounted
		return nil
	}
	t.state = StateWatching
	return nil
}

// Observe reports watch progress. It returns true only for the call that counted
// the view. A zero duration is treated as unknown and defers the decision.
// When the counter fails the session claim is released and the tracker stays
// watching, so a later Observe retries.
func (t *Tracker) Observe(ctx context.Context, watched, duration time.Duration) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case StateCounted:
		return false, nil
	case StateUnwatched:
		if t.isOwner() {
			return false, nil
		}
		return false, ErrNotWatching
	}

	threshold, ok := Threshold(duration)
	if !ok || watched < threshold {
		return false, nil
	}

	// Another tab of the same session may have counted the video meanwhile.
	added, err := t.session.Add(ctx, t.opts.VideoID)
	if err != nil {
		return false, fmt.Errorf("viewcount: write session set: %w", err)
	}
	t.state = StateCounted
	if !added {
		return false, nil
	}
	t.views++

	total, err := t.counter.IncrementViews(ctx, t.opts.VideoID)
	if err != nil {
		t.state = StateWatching
		t.views--
		if rerr := t.session.Remove(ctx, t.opts.VideoID); rerr != nil {
			return false, fmt.Errorf("viewcount: increment views: %w", errors.Join(err, rerr))
		}
		return false, fmt.Errorf("viewcount: increment views: %w", err)
	}
	if total > t.views {
		t.views = total
	}
	return true, nil
}

// MemorySet is an in-process SessionSet.
type MemorySet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func NewMemorySet() *MemorySet {
	return &MemorySet{ids: make(map[string]struct{})}
}

func (s *MemorySet) Contains(_ context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[videoID]
	return ok, nil
}

func (s *MemorySet) Add(_ context.Context, videoID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[videoID]; ok {
		return false, nil
	}
	s.ids[videoID] = struct{}{}
	return true, nil
}

func (s *MemorySet) Remove(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, videoID)
	return nil
}
