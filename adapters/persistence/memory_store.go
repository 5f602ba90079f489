package persistence

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/khoahotran/screenvault/internal/domain/user"
	"github.com/khoahotran/screenvault/internal/domain/video"
	"github.com/khoahotran/screenvault/pkg/apperror"
)

// MemoryStore keeps users and videos in process. It applies the same filter,
// sort and scope rules as the Postgres repositories and backs local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]*user.User
	videos map[string]*video.Video
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*user.User),
		videos: make(map[string]*video.Video),
		now:    time.Now,
	}
}

// WithClock replaces the clock used for updatedAt on mutations.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Videos() video.Repository { return (*memoryVideoRepo)(s) }
func (s *MemoryStore) Users() user.Repository   { return (*memoryUserRepo)(s) }

func (s *MemoryStore) PutUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

type memoryVideoRepo MemoryStore

func (r *memoryVideoRepo) withUser(v *video.Video) *video.VideoWithUser {
	vw := &video.VideoWithUser{Video: *v}
	if u, ok := r.users[v.UserID]; ok {
		vw.User = &video.Author{ID: u.ID, Name: u.Name, Image: u.Image}
	}
	return vw
}

func (r *memoryVideoRepo) Save(_ context.Context, v *video.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.videos[v.ID]; exists {
		return apperror.NewConflict("video", "id", v.ID)
	}
	if _, ok := r.users[v.UserID]; !ok {
		return apperror.NewInvalidInput("video owner does not exist", nil)
	}
	cp := *v
	r.videos[v.ID] = &cp
	return nil
}

func (r *memoryVideoRepo) find(id string, admit func(*video.Video) bool) (*video.VideoWithUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.videos[id]
	if !ok || !admit(v) {
		return nil, video.ErrVideoNotFound
	}
	return r.withUser(v), nil
}

func (r *memoryVideoRepo) FindByID(_ context.Context, id string) (*video.VideoWithUser, error) {
	return r.find(id, func(*video.Video) bool { return true })
}

func (r *memoryVideoRepo) FindAuthorized(_ context.Context, id string, viewerID string) (*video.VideoWithUser, error) {
	return r.find(id, func(v *video.Video) bool { return v.VisibleTo(viewerID) })
}

func (r *memoryVideoRepo) FindPublicByID(_ context.Context, id string) (*video.VideoWithUser, error) {
	return r.find(id, func(v *video.Video) bool { return v.Visibility == video.VisibilityPublic })
}

func (r *memoryVideoRepo) ListPublic(_ context.Context, params video.ListParams) ([]*video.VideoWithUser, error) {
	return r.list(memoryQuery{}, params), nil
}

func (r *memoryVideoRepo) SearchPublic(_ context.Context, text string, params video.ListParams) ([]*video.VideoWithUser, error) {
	return r.list(memoryQuery{text: text, matchAuthor: true}, params), nil
}

func (r *memoryVideoRepo) ListByOwner(_ context.Context, ownerID string, params video.ListParams) ([]*video.VideoWithUser, error) {
	return r.list(memoryQuery{ownerID: ownerID}, params), nil
}

func (r *memoryVideoRepo) SearchByOwner(_ context.Context, ownerID string, text string, params video.ListParams) ([]*video.VideoWithUser, error) {
	return r.list(memoryQuery{ownerID: ownerID, text: text}, params), nil
}

type memoryQuery struct {
	ownerID     string
	text        string
	matchAuthor bool
}

func (r *memoryVideoRepo) list(q memoryQuery, params video.ListParams) []*video.VideoWithUser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := params.Now
	if now.IsZero() {
		now = r.now()
	}
	filters := params.Filters
	if q.ownerID == "" {
		filters.Visibilities = nil
	}
	needle := strings.ToLower(video.NormalizeSearch(q.text))

	matched := make([]*video.Video, 0)
	for _, v := range r.videos {
		if q.ownerID == "" && v.Visibility != video.VisibilityPublic {
			continue
		}
		if q.ownerID != "" && v.UserID != q.ownerID {
			continue
		}
		if !filters.Match(v, now) {
			continue
		}
		if needle != "" && !r.matchesText(v, needle, q.matchAuthor) {
			continue
		}
		matched = append(matched, v)
	}

	slices.SortFunc(matched, func(a, b *video.Video) int {
		return video.Compare(a, b, params.SortBy)
	})

	offset := params.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	end := len(matched)
	if params.Limit > 0 && offset+params.Limit < end {
		end = offset + params.Limit
	}

	out := make([]*video.VideoWithUser, 0, end-offset)
	for _, v := range matched[offset:end] {
		out = append(out, r.withUser(v))
	}
	return out
}

func (r *memoryVideoRepo) matchesText(v *video.Video, needle string, matchAuthor bool) bool {
	if strings.Contains(strings.ToLower(v.Title), needle) || strings.Contains(strings.ToLower(v.Description), needle) {
		return true
	}
	if matchAuthor {
		if u, ok := r.users[v.UserID]; ok && strings.Contains(strings.ToLower(u.Name), needle) {
			return true
		}
	}
	return false
}

func (r *memoryVideoRepo) mutateOwned(id, ownerID string, apply func(v *video.Video)) (*video.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok || v.UserID != ownerID {
		return nil, video.ErrVideoNotFound
	}
	apply(v)
	v.UpdatedAt = r.now()
	cp := *v
	return &cp, nil
}

func (r *memoryVideoRepo) UpdateVisibility(_ context.Context, id string, ownerID string, visibility video.Visibility) (*video.Video, error) {
	return r.mutateOwned(id, ownerID, func(v *video.Video) {
		v.Visibility = visibility
	})
}

func (r *memoryVideoRepo) UpdateDetails(_ context.Context, id string, ownerID string, patch video.DetailsPatch) (*video.Video, error) {
	return r.mutateOwned(id, ownerID, func(v *video.Video) {
		if patch.Title != nil {
			v.Title = *patch.Title
		}
		if patch.Description != nil {
			v.Description = *patch.Description
		}
		if patch.Visibility != nil {
			v.Visibility = *patch.Visibility
		}
	})
}

func (r *memoryVideoRepo) Delete(_ context.Context, id string, ownerID string) (*video.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok || v.UserID != ownerID {
		return nil, video.ErrVideoNotFound
	}
	delete(r.videos, id)
	return v, nil
}

func (r *memoryVideoRepo) IncrementViews(_ context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.videos[id]
	if !ok {
		return 0, video.ErrVideoNotFound
	}
	v.Views++
	return v.Views, nil
}

type memoryUserRepo MemoryStore

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
