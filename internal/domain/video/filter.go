package video

import (
	"strings"
	"time"
)

type DateRange string

const (
	DateRangeToday DateRange = "today"
	DateRangeWeek  DateRange = "week"
	DateRangeMonth DateRange = "month"
	DateRangeYear  DateRange = "year"
)

// LowerBound returns the earliest createdAt the token admits, relative to now.
// today is the start of the calendar day in now's location.
func (d DateRange) LowerBound(now time.Time) (time.Time, bool) {
	switch d {
	case DateRangeToday:
		y, m, day := now.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, now.Location()), true
	case DateRangeWeek:
		return now.AddDate(0, 0, -7), true
	case DateRangeMonth:
		return now.AddDate(0, -1, 0), true
	case DateRangeYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

type DurationBucket string

const (
	DurationShort  DurationBucket = "short"
	DurationMedium DurationBucket = "medium"
	DurationLong   DurationBucket = "long"
)

const (
	ShortMaxSeconds = 300
	LongMinSeconds  = 1200
)

// Bounds are closed on both ends. A missing bound is unconstrained.
type Bounds struct {
	Min    int
	Max    int
	HasMin bool
	HasMax bool
}

func (d DurationBucket) Bounds() (Bounds, bool) {
	switch d {
	case DurationShort:
		return Bounds{Max: ShortMaxSeconds, HasMax: true}, true
	case DurationMedium:
		return Bounds{Min: ShortMaxSeconds, Max: LongMinSeconds, HasMin: true, HasMax: true}, true
	case DurationLong:
		return Bounds{Min: LongMinSeconds, HasMin: true}, true
	}
	return Bounds{}, false
}

// Contains reports whether a duration in seconds falls in the bounds. Unknown durations never match.
func (b Bounds) Contains(seconds *int) bool {
	if seconds == nil {
		return false
	}
	if b.HasMin && *seconds < b.Min {
		return false
	}
	if b.HasMax && *seconds > b.Max {
		return false
	}
	return true
}

// Filters is the user's filter selection. Values inside one dimension are OR'd,
// dimensions are AND'd, and an empty dimension places no constraint.
type Filters struct {
	DateRanges   []DateRange
	Durations    []DurationBucket
	Visibilities []Visibility
}

func (f Filters) Empty() bool {
	return len(f.DateRanges) == 0 && len(f.Durations) == 0 && len(f.Visibilities) == 0
}

// ParseFilters reads comma-joined token lists. Unknown and repeated tokens are dropped.
func ParseFilters(dateRange, duration, visibility string) Filters {
	var f Filters
	for _, tok := range splitTokens(dateRange) {
		d := DateRange(tok)
		if _, ok := d.LowerBound(time.Time{}); ok && !containsToken(f.DateRanges, d) {
			f.DateRanges = append(f.DateRanges, d)
		}
	}
	for _, tok := range splitTokens(duration) {
		d := DurationBucket(tok)
		if _, ok := d.Bounds(); ok && !containsToken(f.Durations, d) {
			f.Durations = append(f.Durations, d)
		}
	}
	for _, tok := range splitTokens(visibility) {
		v := Visibility(tok)
		if v.Valid() && !containsToken(f.Visibilities, v) {
			f.Visibilities = append(f.Visibilities, v)
		}
	}
	return f
}

// Match applies the same predicate the repositories build in SQL.
func (f Filters) Match(v *Video, now time.Time) bool {
	if len(f.DateRanges) > 0 {
		ok := false
		for _, d := range f.DateRanges {
			if lb, valid := d.LowerBound(now); valid && !v.CreatedAt.Before(lb) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Durations) > 0 {
		ok := false
		for _, d := range f.Durations {
			if b, valid := d.Bounds(); valid && b.Contains(v.Duration) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Visibilities) > 0 && !containsToken(f.Visibilities, v.Visibility) {
		return false
	}
	return true
}

type SortBy string

const (
	SortLatest      SortBy = "latest"
	SortOldest      SortBy = "oldest"
	SortMostViewed  SortBy = "most-viewed"
	SortLeastViewed SortBy = "least-viewed"
	SortLongest     SortBy = "longest"
	SortShortest    SortBy = "shortest"
	SortTitleAsc    SortBy = "title-asc"
	SortTitleDesc   SortBy = "title-desc"
)

var sortTokens = map[SortBy]struct{}{
	SortLatest: {}, SortOldest: {}, SortMostViewed: {}, SortLeastViewed: {},
	SortLongest: {}, SortShortest: {}, SortTitleAsc: {}, SortTitleDesc: {},
}

// ParseSortBy falls back to latest for empty or unknown tokens.
func ParseSortBy(raw string) SortBy {
	s := SortBy(strings.TrimSpace(raw))
	if _, ok := sortTokens[s]; ok {
		return s
	}
	return SortLatest
}

// NormalizeSearch trims the free-text query. An empty result means "no search".
func NormalizeSearch(q string) string {
	return strings.TrimSpace(q)
}

func splitTokens(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsToken[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
