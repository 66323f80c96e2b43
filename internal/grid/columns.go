package grid

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the display layout for date cells.
const DateLayout = "2006-01-02 15:04 MST"

// maxDisplayMillis bounds the epoch milliseconds that fit an int64.
const maxDisplayMillis = 1 << 63

// ColumnType declares how a field is ordered and filtered.
type ColumnType int

const (
	// ColumnText compares raw strings byte-wise.
	ColumnText ColumnType = iota
	// ColumnNumber compares values numerically.
	ColumnNumber
	// ColumnDate holds epoch seconds; compared as epoch milliseconds.
	ColumnDate
	// ColumnNone marks display-only columns (e.g. actions).
	ColumnNone
)

// String returns the lower-case name used in layout files.
func (t ColumnType) String() string {
	switch t {
	case ColumnText:
		return "text"
	case ColumnNumber:
		return "number"
	case ColumnDate:
		return "date"
	case ColumnNone:
		return "none"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// ParseColumnType converts a layout file type name. The empty string is text.
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "string":
		return ColumnText, nil
	case "number", "numeric":
		return ColumnNumber, nil
	case "date", "datetime", "timestamp":
		return ColumnDate, nil
	case "none":
		return ColumnNone, nil
	default:
		return ColumnNone, fmt.Errorf("unknown column type %q", s)
	}
}

// Column is one entry of the column map.
type Column struct {
	Key   string
	Label string
	Type  ColumnType
}

// Display formats v for a cell of this column. Date values are shown in
// UTC; values that are not valid epoch seconds are shown as-is.
func (c Column) Display(v Value) string {
	if c.Type != ColumnDate || v.IsAbsent() {
		return v.String()
	}
	ms, ok := epochMillis(v)
	if !ok || math.IsNaN(ms) || math.Abs(ms) >= maxDisplayMillis {
		return v.String()
	}
	return time.UnixMilli(int64(ms)).UTC().Format(DateLayout)
}

// ColumnMap is the ordered list of displayable columns.
// Slice order is the default left-to-right order.
type ColumnMap []Column

// Keys returns all field keys in display order.
func (m ColumnMap) Keys() []string {
	keys := make([]string, len(m))
	for i, c := range m {
		keys[i] = c.Key
	}
	return keys
}

// Labels returns all display labels in display order.
func (m ColumnMap) Labels() []string {
	labels := make([]string, len(m))
	for i, c := range m {
		labels[i] = c.Label
	}
	return labels
}

// Lookup returns the column for key.
func (m ColumnMap) Lookup(key string) (Column, bool) {
	for _, c := range m {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

// Label returns the display label for key, or "" if unknown.
func (m ColumnMap) Label(key string) string {
	c, _ := m.Lookup(key)
	return c.Label
}

// HasLabel reports whether some column is displayed as label.
func (m ColumnMap) HasLabel(label string) bool {
	for _, c := range m {
		if c.Label == label {
			return true
		}
	}
	return false
}

// TypeOf returns the declared type of key. Keys outside the map are
// ColumnNone, so every operation that references them is a no-op.
func (m ColumnMap) TypeOf(key string) ColumnType {
	c, ok := m.Lookup(key)
	if !ok {
		return ColumnNone
	}
	return c.Type
}
