package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisViewSessions_AddIsTestAndSet(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	store := NewRedisViewSessions(client, time.Hour)

	set := store.Session("sess-1")

	seen, err := set.Contains(ctx, "video-1")
	require.NoError(t, err)
	assert.False(t, seen)

	added, err := set.Add(ctx, "video-1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = set.Add(ctx, "video-1")
	require.NoError(t, err)
	assert.False(t, added)

	seen, err = set.Contains(ctx, "video-1")
	require.NoError(t, err)
	assert.True(t, seen)

	assert.Equal(t, time.Hour, mr.TTL(viewSessionKeyPrefix+"sess-1"))
}

func TestRedisViewSessions_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	_, client := setupMiniRedis(t)
	store := NewRedisViewSessions(client, time.Hour)

	_, err := store.Session("a").Add(ctx, "video-1")
	require.NoError(t, err)

	seen, err := store.Session("b").Contains(ctx, "video-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRedisViewSessions_ExpiryForgetsSession(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	store := NewRedisViewSessions(client, time.Minute)

	_, err := store.Session("a").Add(ctx, "video-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	seen, err := store.Session("a").Contains(ctx, "video-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryViewSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryViewSessions(time.Hour)

	added, err := store.Session("a").Add(ctx, "video-1")
	require.NoError(t, err)
	assert.True(t, added)

	seen, _ := store.Session("a").Contains(ctx, "video-1")
	assert.True(t, seen)
	seen, _ = store.Session("b").Contains(ctx, "video-1")
	assert.False(t, seen)
}

func TestMemoryViewSessions_ForgetsIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryViewSessions(time.Minute).(*memoryViewSessions)
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	_, err := store.Session("idle").Add(ctx, "video-1")
	require.NoError(t, err)
	_, err = store.Session("busy").Add(ctx, "video-1")
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	seen, _ := store.Session("busy").Contains(ctx, "video-1")
	assert.True(t, seen)

	now = now.Add(45 * time.Second)
	store.Session("other")
	assert.Len(t, store.sessions, 2)
	assert.NotContains(t, store.sessions, "idle")

	seen, _ = store.Session("idle").Contains(ctx, "video-1")
	assert.False(t, seen)
	seen, _ = store.Session("busy").Contains(ctx, "video-1")
	assert.True(t, seen)
}

func TestRedisViewSessions_RemoveReleasesClaim(t *testing.T) {
	ctx := context.Background()
	_, client := setupMiniRedis(t)
	set := NewRedisViewSessions(client, time.Hour).Session("a")

	_, err := set.Add(ctx, "video-1")
	require.NoError(t, err)
	require.NoError(t, set.Remove(ctx, "video-1"))

	added, err := set.Add(ctx, "video-1")
	require.NoError(t, err)
	assert.True(t, added)
}
