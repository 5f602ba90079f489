package video

import (
	"cmp"
	"strings"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 50
)

// Page is one offset page of a listing. HasMore is true only when at least one
// more row exists after the page.
type Page struct {
	Videos  []*VideoWithUser `json:"videos"`
	HasMore bool             `json:"hasMore"`
}

func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

func NormalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

// FetchLimit is the row count to request so that hasMore can be decided from one query.
func FetchLimit(limit int) int {
	return limit + 1
}

// NewPage trims a fetched result of up to limit+1 rows down to limit.
func NewPage(rows []*VideoWithUser, limit int) Page {
	if rows == nil {
		rows = []*VideoWithUser{}
	}
	if len(rows) > limit {
		return Page{Videos: rows[:limit], HasMore: true}
	}
	return Page{Videos: rows, HasMore: false}
}

// Compare orders two videos the way the sort token orders rows in the database,
// including the id tie-breaker and NULL durations placed last.
func Compare(a, b *Video, sortBy SortBy) int {
	var c int
	switch sortBy {
	case SortOldest:
		c = a.CreatedAt.Compare(b.CreatedAt)
	case SortMostViewed:
		c = cmp.Compare(b.Views, a.Views)
	case SortLeastViewed:
		c = cmp.Compare(a.Views, b.Views)
	case SortLongest:
		c = compareDuration(a.Duration, b.Duration, true)
	case SortShortest:
		c = compareDuration(a.Duration, b.Duration, false)
	case SortTitleAsc:
		c = strings.Compare(a.Title, b.Title)
	case SortTitleDesc:
		c = strings.Compare(b.Title, a.Title)
	default:
		c = b.CreatedAt.Compare(a.CreatedAt)
	}
	if c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func compareDuration(a, b *int, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if desc {
		return cmp.Compare(*b, *a)
	}
	return cmp.Compare(*a, *b)
}
