package grid

import (
	"math"
	"slices"
	"strings"
)

// Order is the direction a column is sorted in.
type Order int

const (
	OrderNone Order = iota
	OrderAsc
	OrderDesc
)

// String returns "none", "asc" or "desc".
func (o Order) String() string {
	switch o {
	case OrderAsc:
		return "asc"
	case OrderDesc:
		return "desc"
	default:
		return "none"
	}
}

// next advances the tri-state cycle asc -> desc -> none -> asc.
func (o Order) next() Order {
	switch o {
	case OrderAsc:
		return OrderDesc
	case OrderDesc:
		return OrderNone
	default:
		return OrderAsc
	}
}

// SortState is the single active sort column and its order.
type SortState struct {
	Key   string
	Order Order
}

// Active reports whether a column is currently ordering the rows.
func (s SortState) Active() bool {
	return s.Key != "" && s.Order != OrderNone
}

// OrderOf returns the order shown on key's header.
func (s SortState) OrderOf(key string) Order {
	if s.Key != key {
		return OrderNone
	}
	return s.Order
}

// IsSortable reports whether key can be sorted under columns.
func IsSortable(columns ColumnMap, key string) bool {
	return columns.TypeOf(key) != ColumnNone
}

// ChangeSort returns the state after a header click on key.
// A different key starts at ascending; the same key cycles.
// Unsortable keys leave the state unchanged.
func ChangeSort(columns ColumnMap, state SortState, key string) SortState {
	if !IsSortable(columns, key) {
		return state
	}
	if state.Key != key {
		return SortState{Key: key, Order: OrderAsc}
	}
	return SortState{Key: key, Order: state.Order.next()}
}

// SortedView returns rows ordered by state. With no active order, or an
// active key that is not sortable, the input order is returned. The input
// slice is never reordered.
func SortedView(columns ColumnMap, rows []Row, state SortState) []Row {
	out := slices.Clone(rows)
	if !state.Active() {
		return out
	}

	var cmp func(a, b Value) int
	switch columns.TypeOf(state.Key) {
	case ColumnText:
		cmp = compareText
	case ColumnNumber:
		cmp = compareNumber
	case ColumnDate:
		cmp = compareDate
	default:
		return out
	}

	key := state.Key
	desc := state.Order == OrderDesc
	slices.SortStableFunc(out, func(a, b Row) int {
		c := cmp(a.Record.Get(key), b.Record.Get(key))
		if desc {
			return -c
		}
		return c
	})
	return out
}

// compareText orders absent values first, then raw strings byte-wise.
// Case-sensitive; no locale collation.
func compareText(a, b Value) int {
	if a.IsAbsent() || b.IsAbsent() {
		return compareAbsent(a.IsAbsent(), b.IsAbsent())
	}
	return strings.Compare(a.String(), b.String())
}

// compareNumber orders absent and non-numeric values first (lowest rank),
// then by numeric value.
func compareNumber(a, b Value) int {
	fa, okA := a.Float()
	fb, okB := b.Float()
	if !okA || !okB {
		return compareAbsent(!okA, !okB)
	}
	return compareFloat(fa, fb)
}

// compareDate compares epoch-second values on the millisecond scale the
// date-range filter uses.
func compareDate(a, b Value) int {
	ma, okA := epochMillis(a)
	mb, okB := epochMillis(b)
	if !okA || !okB {
		return compareAbsent(!okA, !okB)
	}
	return compareFloat(ma, mb)
}

func compareAbsent(aAbsent, bAbsent bool) int {
	switch {
	case aAbsent && bAbsent:
		return 0
	case aAbsent:
		return -1
	default:
		return 1
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// epochMillis converts an epoch-seconds value to epoch milliseconds.
func epochMillis(v Value) (float64, bool) {
	secs, ok := v.Float()
	if !ok || math.IsInf(secs, 0) {
		return 0, false
	}
	return secs * 1000, true
}
