package grid

import (
	"maps"
	"strconv"
	"strings"
	"time"
)

// DateRange bounds a date column. A nil bound is unbounded on that side;
// present bounds are exclusive.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Unbounded reports whether neither side is set.
func (r DateRange) Unbounded() bool {
	return r.From == nil && r.To == nil
}

// contains reports whether epoch milliseconds ms lies strictly inside r.
func (r DateRange) contains(ms float64) bool {
	if r.From != nil && !(float64(r.From.UnixMilli()) < ms) {
		return false
	}
	if r.To != nil && !(ms < float64(r.To.UnixMilli())) {
		return false
	}
	return true
}

// FilterState is the current search and date-range selection.
type FilterState struct {
	SearchText  string
	SearchField string
	DateRanges  map[string]DateRange
}

// clone returns a copy whose DateRanges map is not shared.
func (f FilterState) clone() FilterState {
	f.DateRanges = maps.Clone(f.DateRanges)
	return f
}

// Apply keeps, in order, the rows that pass both the search predicate and
// every date-range predicate.
func Apply(rows []Row, state FilterState) []Row {
	needle := strings.ToLower(strings.TrimSpace(state.SearchText))

	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if !matchesSearch(row.Record, state.SearchField, needle) {
			continue
		}
		if !matchesDateRanges(row.Record, state.DateRanges) {
			continue
		}
		out = append(out, row)
	}
	return out
}

// matchesSearch is a case-insensitive substring test on one field.
// An empty needle or no selected field matches everything.
func matchesSearch(rec Record, field, needle string) bool {
	if field == "" || needle == "" {
		return true
	}
	v := rec.Get(field)
	if v.IsAbsent() {
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(v.String())), needle)
}

func matchesDateRanges(rec Record, ranges map[string]DateRange) bool {
	for key, r := range ranges {
		if r.Unbounded() {
			continue
		}
		ms, ok := epochMillis(rec.Get(key))
		if !ok || !r.contains(ms) {
			return false
		}
	}
	return true
}

var boundLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseBound parses a date-range bound as sent by a date picker. Bare
// integers are epoch seconds. Dates without a zone are UTC. Empty or
// unparseable input yields nil, i.e. unbounded.
func ParseBound(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.Unix(secs, 0).UTC()
		return &t
	}
	for _, layout := range boundLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
