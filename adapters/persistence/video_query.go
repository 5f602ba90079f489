package persistence

import (
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/khoahotran/screenvault/internal/domain/video"
)

// listQuery describes which rows a listing may see before user filters apply.
type listQuery struct {
	scope       sq.Sqlizer
	ownerScoped bool
	text        string
	matchAuthor bool
}

// buildListQuery AND-folds the scope with every present filter dimension.
func buildListQuery(lq listQuery, params video.ListParams) sq.SelectBuilder {
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	preds := []sq.Sqlizer{
		lq.scope,
		dateRangePredicate(params.Filters.DateRanges, now),
		durationPredicate(params.Filters.Durations),
		textPredicate(lq.text, lq.matchAuthor),
	}
	if lq.ownerScoped {
		preds = append(preds, visibilityPredicate(params.Filters.Visibilities))
	}

	builder := selectVideosWithUser()
	for _, p := range preds {
		if p != nil {
			builder = builder.Where(p)
		}
	}

	builder = builder.OrderBy(orderBy(params.SortBy)...)
	if params.Limit > 0 {
		builder = builder.Limit(uint64(params.Limit))
	}
	if params.Offset > 0 {
		builder = builder.Offset(uint64(params.Offset))
	}
	return builder
}

func publicScope() sq.Sqlizer {
	return sq.Eq{"v.visibility": string(video.VisibilityPublic)}
}

func ownerScope(ownerID string) sq.Sqlizer {
	return sq.Eq{"v.user_id": ownerID}
}

// accessPredicate admits public rows, plus the viewer's own rows when a viewer is known.
func accessPredicate(viewerID string) sq.Sqlizer {
	if viewerID == "" {
		return publicScope()
	}
	return sq.Or{publicScope(), sq.Eq{"v.user_id": viewerID}}
}

func dateRangePredicate(ranges []video.DateRange, now time.Time) sq.Sqlizer {
	or := sq.Or{}
	for _, r := range ranges {
		if lb, ok := r.LowerBound(now); ok {
			or = append(or, sq.GtOrEq{"v.created_at": lb})
		}
	}
	if len(or) == 0 {
		return nil
	}
	return or
}

func durationPredicate(buckets []video.DurationBucket) sq.Sqlizer {
	or := sq.Or{}
	for _, b := range buckets {
		bounds, ok := b.Bounds()
		if !ok {
			continue
		}
		and := sq.And{}
		if bounds.HasMin {
			and = append(and, sq.GtOrEq{"v.duration": bounds.Min})
		}
		if bounds.HasMax {
			and = append(and, sq.LtOrEq{"v.duration": bounds.Max})
		}
		or = append(or, and)
	}
	if len(or) == 0 {
		return nil
	}
	return or
}

func visibilityPredicate(visibilities []video.Visibility) sq.Sqlizer {
	values := make([]string, 0, len(visibilities))
	for _, v := range visibilities {
		if v.Valid() {
			values = append(values, string(v))
		}
	}
	if len(values) == 0 {
		return nil
	}
	return sq.Eq{"v.visibility": values}
}

func textPredicate(text string, matchAuthor bool) sq.Sqlizer {
	text = video.NormalizeSearch(text)
	if text == "" {
		return nil
	}
	pattern := "%" + escapeLike(text) + "%"
	or := sq.Or{
		sq.ILike{"v.title": pattern},
		sq.ILike{"v.description": pattern},
	}
	if matchAuthor {
		or = append(or, sq.ILike{"u.name": pattern})
	}
	return or
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var sortClauses = map[video.SortBy]string{
	video.SortLatest:      "v.created_at DESC",
	video.SortOldest:      "v.created_at ASC",
	video.SortMostViewed:  "v.views DESC",
	video.SortLeastViewed: "v.views ASC",
	video.SortLongest:     "v.duration DESC NULLS LAST",
	video.SortShortest:    "v.duration ASC NULLS LAST",
	video.SortTitleAsc:    "v.title ASC",
	video.SortTitleDesc:   "v.title DESC",
}

// orderBy always ends with the id so equal sort keys keep a stable page order.
func orderBy(sortBy video.SortBy) []string {
	clause, ok := sortClauses[sortBy]
	if !ok {
		clause = sortClauses[video.SortLatest]
	}
	return []string{clause, "v.id ASC"}
}
