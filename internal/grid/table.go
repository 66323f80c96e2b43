package grid

import (
	"slices"
	"time"
)

// Table owns the sort, filter and column visibility state of one rendered
// grid and derives its view from the current records. A Table is not safe
// for concurrent use; callers that share one must serialize access.
type Table struct {
	cfg     Config
	rows    []Row
	gen     uint64
	sort    SortState
	filter  FilterState
	visible VisibleColumns
}

// NewTable validates cfg and mounts a table over records with default state.
func NewTable(cfg Config, records []Record) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Table{cfg: cfg}
	t.SetRecords(records)
	t.Reset()
	return t, nil
}

// Config returns the configuration the table was mounted with.
func (t *Table) Config() Config { return t.cfg }

// SetRecords replaces the input records and advances the generation.
// State is kept; the next View reflects the new data.
func (t *Table) SetRecords(records []Record) {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{Index: i, Record: rec}
	}
	t.rows = rows
	t.gen++
}

// Generation identifies the current record set. Row indexes taken from a
// View are only meaningful while the generation is unchanged.
func (t *Table) Generation() uint64 { return t.gen }

// Len returns the number of input records.
func (t *Table) Len() int { return len(t.rows) }

// Record returns the input record at position i.
func (t *Table) Record(i int) (Record, bool) {
	if i < 0 || i >= len(t.rows) {
		return nil, false
	}
	return t.rows[i].Record, true
}

// Sort returns the current sort state.
func (t *Table) Sort() SortState { return t.sort }

// Filter returns a copy of the current filter state.
func (t *Table) Filter() FilterState { return t.filter.clone() }

// Visible returns a copy of the visible label set.
func (t *Table) Visible() VisibleColumns { return t.visible.clone() }

// IsSortable reports whether key's header responds to clicks.
func (t *Table) IsSortable(key string) bool {
	return IsSortable(t.cfg.Columns, key)
}

// ChangeSort applies a header click on key.
func (t *Table) ChangeSort(key string) {
	t.sort = ChangeSort(t.cfg.Columns, t.sort, key)
}

// SetSearch sets the search text.
func (t *Table) SetSearch(text string) {
	f := t.filter.clone()
	f.SearchText = text
	t.filter = f
}

// SetSearchField scopes the search to key. The empty key clears the scope;
// keys that are not searchable are ignored.
func (t *Table) SetSearchField(key string) {
	if key != "" && !t.cfg.searchable(key) {
		return
	}
	f := t.filter.clone()
	f.SearchField = key
	t.filter = f
}

// SetDateRange sets the bounds for key. Keys without a date-range control
// are ignored.
func (t *Table) SetDateRange(key string, from, to *time.Time) {
	if !t.cfg.dateFilterable(key) {
		return
	}
	f := t.filter.clone()
	if f.DateRanges == nil {
		f.DateRanges = make(map[string]DateRange)
	}
	f.DateRanges[key] = DateRange{From: from, To: to}
	t.filter = f
}

// ClearDateRange drops the bounds for key.
func (t *Table) ClearDateRange(key string) {
	if _, ok := t.filter.DateRanges[key]; !ok {
		return
	}
	f := t.filter.clone()
	delete(f.DateRanges, key)
	t.filter = f
}

// ToggleColumn shows or hides the column displayed as label. Unlabeled
// columns have no toggle control and are always shown.
func (t *Table) ToggleColumn(label string) {
	if label == "" || !t.cfg.Columns.HasLabel(label) {
		return
	}
	v := t.visible.clone()
	v.Toggle(label)
	t.visible = v
}

// Reset restores the mount-time state. Records are kept.
func (t *Table) Reset() {
	t.sort = SortState{}
	t.filter = FilterState{SearchField: t.cfg.Filters.DefaultSearchField}
	t.visible = AllVisible(t.cfg.Columns)
}

// View is the projection handed to a presenter.
type View struct {
	Columns    []Column
	Rows       []Row
	Geometry   Geometry
	Total      int
	Generation uint64
}

// Keys returns the projected field keys in display order.
func (v View) Keys() []string {
	keys := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		keys[i] = c.Key
	}
	return keys
}

// View recomputes the projection: sorted, then filtered, then narrowed to
// the visible columns.
func (t *Table) View() View {
	rows := Apply(SortedView(t.cfg.Columns, t.rows, t.sort), t.filter)

	keys := ActiveKeys(t.cfg.Columns, t.visible)
	cols := make([]Column, 0, len(keys))
	for _, key := range keys {
		c, _ := t.cfg.Columns.Lookup(key)
		cols = append(cols, c)
	}

	return View{
		Columns:    cols,
		Rows:       rows,
		Geometry:   GeometryFor(len(cols)),
		Total:      len(t.rows),
		Generation: t.gen,
	}
}

// Header describes one column header.
type Header struct {
	Key      string
	Label    string
	Sortable bool
	Order    Order
}

// Headers returns a descriptor per visible column.
func (t *Table) Headers() []Header {
	keys := ActiveKeys(t.cfg.Columns, t.visible)
	headers := make([]Header, len(keys))
	for i, key := range keys {
		headers[i] = Header{
			Key:      key,
			Label:    t.cfg.Columns.Label(key),
			Sortable: t.IsSortable(key),
			Order:    t.sort.OrderOf(key),
		}
	}
	return headers
}

// RenderFunc turns one cell into a presenter-specific value.
type RenderFunc[T any] func(key string, row Row) T

// RenderRows calls fn for every row and projected column of v.
func RenderRows[T any](v View, fn RenderFunc[T]) [][]T {
	keys := v.Keys()
	out := make([][]T, len(v.Rows))
	for i, row := range v.Rows {
		cells := make([]T, len(keys))
		for j, key := range keys {
			cells[j] = fn(key, row)
		}
		out[i] = cells
	}
	return out
}

// SearchItem is one entry of the search-by dropdown.
type SearchItem struct {
	Key   string
	Label string
}

// DateRangeItem is one date-range control with its current bounds.
type DateRangeItem struct {
	Key   string
	Label string
	Range DateRange
}

// ToggleItem is one entry of the column toggler.
type ToggleItem struct {
	Label   string
	Checked bool
}

// Controls carries everything a filter bar needs to render.
type Controls struct {
	SearchText    string
	SearchField   string
	SearchBy      []SearchItem
	DateRanges    []DateRangeItem
	ColumnToggler bool
	Toggles       []ToggleItem
}

// Controls describes the filter bar for the current state.
func (t *Table) Controls() Controls {
	c := Controls{
		SearchText:    t.filter.SearchText,
		SearchField:   t.filter.SearchField,
		ColumnToggler: t.cfg.Filters.ColumnToggler,
	}

	for _, key := range t.cfg.Filters.SearchBy {
		c.SearchBy = append(c.SearchBy, SearchItem{Key: key, Label: t.cfg.Columns.Label(key)})
	}
	for _, key := range t.cfg.Filters.DateRange {
		c.DateRanges = append(c.DateRanges, DateRangeItem{
			Key:   key,
			Label: t.cfg.Columns.Label(key),
			Range: t.filter.DateRanges[key],
		})
	}
	if c.ColumnToggler {
		for _, label := range t.cfg.Columns.Labels() {
			if label == "" {
				continue
			}
			c.Toggles = append(c.Toggles, ToggleItem{Label: label, Checked: t.visible.Has(label)})
		}
	}
	return c
}

// Equal reports whether two views project the same columns and rows.
func (v View) Equal(o View) bool {
	if v.Geometry != o.Geometry || v.Total != o.Total {
		return false
	}
	if !slices.Equal(v.Columns, o.Columns) {
		return false
	}
	return slices.EqualFunc(v.Rows, o.Rows, func(a, b Row) bool { return a.Index == b.Index })
}
