package client

import (
	"context"
	"errors"
	"sync"

	"github.com/khoahotran/screenvault/internal/domain/video"
)

// ErrLoading is returned by LoadMore while another load is outstanding.
var ErrLoading = errors.New("client: a page load is already in progress")

// FetchFunc loads one page at offset.
type FetchFunc func(ctx context.Context, offset, limit int) (*video.Page, error)

// Pager accumulates offset pages for an infinite-scroll list. Loads never
// overlap; the next offset is the number of items received so far.
type Pager struct {
	fetch FetchFunc
	limit int

	mu      sync.Mutex
	loading bool
	items   []*video.VideoWithUser
	hasMore bool
	err     error
}

func NewPager(fetch FetchFunc, limit int, initial []*video.VideoWithUser) *Pager {
	return &Pager{
		fetch:   fetch,
		limit:   video.NormalizeLimit(limit),
		items:   append([]*video.VideoWithUser(nil), initial...),
		hasMore: true,
	}
}

// LoadMore fetches the next page. It returns the number of items appended. A
// failed load stops further loading until Reset.
func (p *Pager) LoadMore(ctx context.Context) (int, error) {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return 0, ErrLoading
	}
	if !p.hasMore {
		p.mu.Unlock()
		return 0, nil
	}
	p.loading = true
	offset := len(p.items)
	p.mu.Unlock()

	page, err := p.fetch(ctx, offset, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		p.err = err
		p.hasMore = false
		return 0, err
	}
	p.items = append(p.items, page.Videos...)
	p.hasMore = page.HasMore
	return len(page.Videos), nil
}

func (p *Pager) Items() []*video.VideoWithUser {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*video.VideoWithUser(nil), p.items...)
}

func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Pager) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Reset drops everything loaded so far, e.g. after the query changed.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
	p.hasMore = true
	p.err = nil
}

// PublicFetcher pages through the public listing with fixed options.
func (c *Client) PublicFetcher(opts ListOptions) FetchFunc {
	return func(ctx context.Context, offset, limit int) (*video.Page, error) {
		opts.Offset, opts.Limit = offset, limit
		return c.ListPublic(ctx, opts)
	}
}

// MineFetcher pages through the caller's own videos with fixed options.
func (c *Client) MineFetcher(opts ListOptions) FetchFunc {
	return func(ctx context.Context, offset, limit int) (*video.Page, error) {
		opts.Offset, opts.Limit = offset, limit
		return c.ListMine(ctx, opts)
	}
}
