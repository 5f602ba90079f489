package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/screenvault/pkg/viewcount"
)

const viewSessionKeyPrefix = "viewcount:session:"

// ViewSessionStore hands out per-browsing-session sets of counted video ids.
type ViewSessionStore interface {
	Session(sessionID string) viewcount.SessionSet
}

type redisViewSessions struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisViewSessions keeps each session's set for ttl after its last write.
func NewRedisViewSessions(rdb *redis.Client, ttl time.Duration) ViewSessionStore {
	return &redisViewSessions{rdb: rdb, ttl: ttl}
}

func (s *redisViewSessions) Session(sessionID string) viewcount.SessionSet {
	return &redisSessionSet{rdb: s.rdb, key: viewSessionKeyPrefix + sessionID, ttl: s.ttl}
}

type redisSessionSet struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func (s *redisSessionSet) Contains(ctx context.Context, videoID string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, s.key, videoID).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember %s: %w", s.key, err)
	}
	return ok, nil
}

func (s *redisSessionSet) Add(ctx context.Context, videoID string) (bool, error) {
	var added *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, s.key, videoID)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("redis sadd %s: %w", s.key, err)
	}
	return added.Val() == 1, nil
}

func (s *redisSessionSet) Remove(ctx context.Context, videoID string) error {
	if err := s.rdb.SRem(ctx, s.key, videoID).Err(); err != nil {
		return fmt.Errorf("redis srem %s: %w", s.key, err)
	}
	return nil
}

type memorySession struct {
	set      *viewcount.MemorySet
	lastSeen time.Time
}

type memoryViewSessions struct {
	mu       sync.Mutex
	sessions map[string]*memorySession
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryViewSessions is the in-process fallback when Redis is not configured.
// A session idle for longer than ttl is forgotten.
func NewMemoryViewSessions(ttl time.Duration) ViewSessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &memoryViewSessions{
		sessions: make(map[string]*memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *memoryViewSessions) Session(sessionID string) viewcount.SessionSet {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, other := range s.sessions {
		if now.Sub(other.lastSeen) > s.ttl {
			delete(s.sessions, id)
		}
	}
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &memorySession{set: viewcount.NewMemorySet()}
		s.sessions[sessionID] = sess
	}
	sess.lastSeen = now
	return sess.set
}
