package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// skeletonRows is the number of placeholder rows shown while loading.
const skeletonRows = 4

// cellRenderer turns grid rows into terminal strings. Dates are shown in
// UTC; the unlabeled NONE column marks rows that carry a secret.
func cellRenderer(columns grid.ColumnMap, secretField string) grid.RenderFunc[string] {
	return func(key string, row grid.Row) string {
		col, _ := columns.Lookup(key)
		if col.Type == grid.ColumnNone && key == "" {
			if row.Record.Get(secretField).IsAbsent() {
				return ""
			}
			return iconToken
		}
		return col.Display(row.Record.Get(key))
	}
}

// renderTable draws headers and rows. focus highlights a header column and
// cursor a data row; pass -1 for neither. Odd display rows are striped.
func renderTable(headers []grid.Header, rows [][]string, focus, cursor int) string {
	names := make([]string, len(headers))
	for i, h := range headers {
		names[i] = h.Label + sortIcon(h.Order)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(names...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				if col == focus {
					return styleHeaderFocused
				}
				return styleHeader
			case row == cursor:
				return styleCellCursor
			case row%2 == 1:
				return styleCellStriped
			default:
				return styleCell
			}
		})

	return t.Render()
}

// renderSkeleton draws placeholder cells for every configured column.
func renderSkeleton(columns grid.ColumnMap) string {
	rows := make([][]string, skeletonRows)
	for i := range rows {
		cells := make([]string, len(columns))
		for j := range cells {
			cells[j] = skeletonCell
		}
		rows[i] = cells
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(columns.Labels()...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return styleSkeleton
		})
	return t.Render()
}

// summary describes the active sort and filters in one line.
func summary(t *grid.Table, shown int) string {
	parts := []string{fmt.Sprintf("%d of %d tokens", shown, t.Len())}

	if st := t.Sort(); st.Active() {
		parts = append(parts, fmt.Sprintf("sort %s %s", st.Key, st.Order))
	}

	f := t.Filter()
	if strings.TrimSpace(f.SearchText) != "" {
		field := f.SearchField
		if field == "" {
			field = "-"
		}
		parts = append(parts, fmt.Sprintf("search %s~%q", field, f.SearchText))
	}
	for _, key := range t.Config().Filters.DateRange {
		rg, ok := f.DateRanges[key]
		if !ok || rg.Unbounded() {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s..%s", key, boundString(rg.From), boundString(rg.To)))
	}
	return strings.Join(parts, " · ")
}

func boundString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(grid.DateLayout)
}
