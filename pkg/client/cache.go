package client

import (
	"context"
	"sync"

	"github.com/khoahotran/screenvault/internal/domain/video"
)

// VideoCache holds locally displayed listings by key. Mutations are applied
// optimistically: snapshot, patch, commit on success, restore on failure.
// Concurrent mutations on the same key are last-write-wins.
type VideoCache struct {
	mu    sync.RWMutex
	lists map[string][]video.VideoWithUser
}

func NewVideoCache() *VideoCache {
	return &VideoCache{lists: make(map[string][]video.VideoWithUser)}
}

func (c *VideoCache) Set(key string, items []*video.VideoWithUser) {
	list := make([]video.VideoWithUser, len(items))
	for i, v := range items {
		list[i] = *v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[key] = list
}

func (c *VideoCache) Get(key string) ([]video.VideoWithUser, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list, ok := c.lists[key]
	if !ok {
		return nil, false
	}
	return append([]video.VideoWithUser(nil), list...), true
}

func (c *VideoCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.lists, key)
}

// Patch rewrites a cached list.
type Patch func(list []video.VideoWithUser) []video.VideoWithUser

// Mutate applies patch to key immediately and runs commit. If commit fails the
// list is restored to its snapshot and the commit error is returned.
func (c *VideoCache) Mutate(ctx context.Context, key string, patch Patch, commit func(ctx context.Context) error) error {
	c.mu.Lock()
	snapshot, had := c.lists[key]
	if had {
		c.lists[key] = patch(append([]video.VideoWithUser(nil), snapshot...))
	}
	c.mu.Unlock()

	if err := commit(ctx); err != nil {
		c.mu.Lock()
		if had {
			c.lists[key] = snapshot
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

func SetVisibilityPatch(id string, visibility video.Visibility) Patch {
	return func(list []video.VideoWithUser) []video.VideoWithUser {
		for i := range list {
			if list[i].ID == id {
				list[i].Visibility = visibility
			}
		}
		return list
	}
}

func RemovePatch(id string) Patch {
	return func(list []video.VideoWithUser) []video.VideoWithUser {
		out := list[:0]
		for _, v := range list {
			if v.ID != id {
				out = append(out, v)
			}
		}
		return out
	}
}

// SetVisibility toggles a video's visibility with an optimistic cache update.
func (c *Client) SetVisibility(ctx context.Context, cache *VideoCache, key, id string, visibility video.Visibility) error {
	return cache.Mutate(ctx, key, SetVisibilityPatch(id, visibility), func(ctx context.Context) error {
		_, err := c.UpdateVisibility(ctx, id, visibility)
		return err
	})
}

// Remove deletes a video and drops it from the cached list right away.
func (c *Client) Remove(ctx context.Context, cache *VideoCache, key, id string) error {
	return cache.Mutate(ctx, key, RemovePatch(id), func(ctx context.Context) error {
		return c.Delete(ctx, id)
	})
}
