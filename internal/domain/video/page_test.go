package video

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func rows(n int) []*VideoWithUser {
	out := make([]*VideoWithUser, n)
	for i := range out {
		out[i] = &VideoWithUser{Video: Video{ID: fmt.Sprintf("v%02d", i)}}
	}
	return out
}

func TestNewPage(t *testing.T) {
	p := NewPage(rows(11), 10)
	assert.Len(t, p.Videos, 10)
	assert.True(t, p.HasMore)

	p = NewPage(rows(10), 10)
	assert.Len(t, p.Videos, 10)
	assert.False(t, p.HasMore)

	p = NewPage(nil, 10)
	assert.NotNil(t, p.Videos)
	assert.Empty(t, p.Videos)
	assert.False(t, p.HasMore)
}

func TestNormalizeLimitAndOffset(t *testing.T) {
	assert.Equal(t, DefaultPageLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultPageLimit, NormalizeLimit(-3))
	assert.Equal(t, 7, NormalizeLimit(7))
	assert.Equal(t, MaxPageLimit, NormalizeLimit(500))
	assert.Equal(t, 0, NormalizeOffset(-5))
	assert.Equal(t, 40, NormalizeOffset(40))
	assert.Equal(t, 21, FetchLimit(20))
}

func TestCompare(t *testing.T) {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	a := &Video{ID: "a", Title: "Beta", Views: 5, Duration: intPtr(100), CreatedAt: base}
	b := &Video{ID: "b", Title: "Alpha", Views: 9, Duration: nil, CreatedAt: base.Add(time.Hour)}
	c := &Video{ID: "c", Title: "Gamma", Views: 5, Duration: intPtr(900), CreatedAt: base}

	order := func(s SortBy) []string {
		vs := []*Video{c, b, a}
		slices.SortFunc(vs, func(x, y *Video) int { return Compare(x, y, s) })
		ids := make([]string, len(vs))
		for i, v := range vs {
			ids[i] = v.ID
		}
		return ids
	}

	assert.Equal(t, []string{"b", "a", "c"}, order(SortLatest))
	assert.Equal(t, []string{"a", "c", "b"}, order(SortOldest))
	assert.Equal(t, []string{"b", "a", "c"}, order(SortMostViewed))
	assert.Equal(t, []string{"a", "c", "b"}, order(SortLeastViewed))
	assert.Equal(t, []string{"c", "a", "b"}, order(SortLongest), "unknown duration sorts last")
	assert.Equal(t, []string{"a", "c", "b"}, order(SortShortest), "unknown duration sorts last")
	assert.Equal(t, []string{"b", "a", "c"}, order(SortTitleAsc))
	assert.Equal(t, []string{"c", "a", "b"}, order(SortTitleDesc))
}

func TestVideo_Validate(t *testing.T) {
	v := &Video{
		UserID:       "u1",
		Title:        "Quarterly demo",
		Description:  "A walkthrough of the release",
		VideoURL:     "https://cdn.example.com/v/abc.mp4",
		ThumbnailURL: "https://cdn.example.com/t/abc.png",
		Visibility:   VisibilityPublic,
	}
	assert.NoError(t, v.Validate())

	v.Title = "ab"
	assert.ErrorIs(t, v.Validate(), ErrInvalidTitle)
	v.Title = "Quarterly demo"

	v.Duration = intPtr(-1)
	assert.ErrorIs(t, v.Validate(), ErrInvalidDuration)
	v.Duration = nil

	v.VideoURL = "not a url"
	assert.ErrorIs(t, v.Validate(), ErrInvalidVideoURL)
}

func TestVideo_VisibleTo(t *testing.T) {
	v := &Video{UserID: "owner", Visibility: VisibilityPrivate}
	assert.True(t, v.VisibleTo("owner"))
	assert.False(t, v.VisibleTo("someone-else"))
	assert.False(t, v.VisibleTo(""))

	v.Visibility = VisibilityPublic
	assert.True(t, v.VisibleTo(""))
}
