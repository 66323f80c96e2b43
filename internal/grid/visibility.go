package grid

import (
	"fmt"
	"maps"
)

// VisibleColumns is the set of labels currently shown.
type VisibleColumns map[string]struct{}

// AllVisible seeds a set with every label of columns.
func AllVisible(columns ColumnMap) VisibleColumns {
	v := make(VisibleColumns, len(columns))
	for _, c := range columns {
		v[c.Label] = struct{}{}
	}
	return v
}

// Has reports whether label is shown.
func (v VisibleColumns) Has(label string) bool {
	_, ok := v[label]
	return ok
}

// Toggle removes label if shown, otherwise adds it.
func (v VisibleColumns) Toggle(label string) {
	if v.Has(label) {
		delete(v, label)
		return
	}
	v[label] = struct{}{}
}

func (v VisibleColumns) clone() VisibleColumns {
	return maps.Clone(v)
}

// ActiveKeys returns the keys of columns whose label is visible, in column
// map order regardless of the order labels were toggled in.
func ActiveKeys(columns ColumnMap, visible VisibleColumns) []string {
	keys := make([]string, 0, len(visible))
	for _, c := range columns {
		if visible.Has(c.Label) {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Geometry describes the grid tracks for the visible columns: every column
// but the last is a flexible share, the last sizes to its content.
type Geometry struct {
	Flexible int
	Auto     int
}

// GeometryFor derives the tracks for n visible columns.
func GeometryFor(n int) Geometry {
	if n <= 0 {
		return Geometry{}
	}
	return Geometry{Flexible: n - 1, Auto: 1}
}

// Columns returns the total track count.
func (g Geometry) Columns() int {
	return g.Flexible + g.Auto
}

// Template renders the geometry as a CSS grid-template-columns value.
func (g Geometry) Template() string {
	switch {
	case g.Auto == 0:
		return "none"
	case g.Flexible == 0:
		return "auto"
	default:
		return fmt.Sprintf("repeat(%d, 1fr) auto", g.Flexible)
	}
}
