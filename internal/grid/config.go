package grid

import (
	"fmt"
	"slices"
	"strings"
)

// FiltersConfig selects which filter controls a table offers.
type FiltersConfig struct {
	// SearchBy lists the keys the search dropdown may scope to.
	// Empty allows any filterable column.
	SearchBy []string
	// DateRange lists the keys that get a date-range control.
	// Empty allows any filterable column.
	DateRange []string
	// ColumnToggler enables the column visibility control.
	ColumnToggler bool
	// DefaultSearchField is selected at mount and on reset. Empty means none.
	DefaultSearchField string
}

// Config is the static configuration a table is mounted with.
type Config struct {
	Columns ColumnMap
	Filters FiltersConfig
}

// ValidationError collects every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid table config:\n  - %s", strings.Join(e.Problems, "\n  - "))
}

// Validate reports every problem that would leave a control unusable.
func (c Config) Validate() error {
	var problems []string

	if len(c.Columns) == 0 {
		problems = append(problems, "at least one column is required")
	}

	keys := make(map[string]bool, len(c.Columns))
	labels := make(map[string]bool, len(c.Columns))
	for _, col := range c.Columns {
		if keys[col.Key] {
			problems = append(problems, fmt.Sprintf("duplicate column key %q", col.Key))
		}
		keys[col.Key] = true

		if labels[col.Label] {
			problems = append(problems, fmt.Sprintf("duplicate column label %q", col.Label))
		}
		labels[col.Label] = true

		if col.Type < ColumnText || col.Type > ColumnNone {
			problems = append(problems, fmt.Sprintf("column %q has unknown type %d", col.Key, int(col.Type)))
		}
	}

	check := func(kind, key string) {
		col, ok := c.Columns.Lookup(key)
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("%s field %q is not in the column map", kind, key))
		case col.Type == ColumnNone:
			problems = append(problems, fmt.Sprintf("%s field %q is not filterable", kind, key))
		}
	}
	for _, key := range c.Filters.SearchBy {
		check("search", key)
	}
	for _, key := range c.Filters.DateRange {
		check("date range", key)
	}

	if def := c.Filters.DefaultSearchField; def != "" {
		check("default search", def)
		if len(c.Filters.SearchBy) > 0 && !slices.Contains(c.Filters.SearchBy, def) {
			problems = append(problems, fmt.Sprintf("default search field %q is not in search_by", def))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// searchable reports whether key may be used as the search field.
func (c Config) searchable(key string) bool {
	if c.Columns.TypeOf(key) == ColumnNone {
		return false
	}
	return len(c.Filters.SearchBy) == 0 || slices.Contains(c.Filters.SearchBy, key)
}

// dateFilterable reports whether key may carry a date range.
func (c Config) dateFilterable(key string) bool {
	if c.Columns.TypeOf(key) == ColumnNone {
		return false
	}
	return len(c.Filters.DateRange) == 0 || slices.Contains(c.Filters.DateRange, key)
}

// TokenLayout is the layout of the issued-token table: name, issuer,
// subject, issue time and a trailing actions column.
func TokenLayout() Config {
	return Config{
		Columns: ColumnMap{
			{Key: "name", Label: "Name", Type: ColumnText},
			{Key: "iss", Label: "Issuer ID", Type: ColumnText},
			{Key: "sub", Label: "Subject", Type: ColumnText},
			{Key: "iat", Label: "Issued", Type: ColumnDate},
			{Key: "", Label: "", Type: ColumnNone},
		},
		Filters: FiltersConfig{
			SearchBy:           []string{"name", "sub", "iss"},
			DateRange:          []string{"iat"},
			ColumnToggler:      true,
			DefaultSearchField: "name",
		},
	}
}
