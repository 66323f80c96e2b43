package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// layoutFile mirrors the TOML layout format:
//
//	[[columns]]
//	key   = "iat"
//	label = "Issued"
//	type  = "date"
//
//	[filters]
//	search_by            = ["name", "sub"]
//	date_range           = ["iat"]
//	column_toggler       = true
//	default_search_field = "name"
//
// Column order in the file is display order.
type layoutFile struct {
	Columns []layoutColumn `toml:"columns"`
	Filters layoutFilters  `toml:"filters"`
}

type layoutColumn struct {
	Key   string `toml:"key"`
	Label string `toml:"label"`
	Type  string `toml:"type"`
}

type layoutFilters struct {
	SearchBy           []string `toml:"search_by"`
	DateRange          []string `toml:"date_range"`
	ColumnToggler      *bool    `toml:"column_toggler"`
	DefaultSearchField string   `toml:"default_search_field"`
}

// LoadLayout resolves the table layout: the TOML file at path, or the
// built-in token layout when path is empty. The result is validated.
func LoadLayout(path string) (grid.Config, error) {
	if path == "" {
		return grid.TokenLayout(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return grid.Config{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	return parseLayout(path, string(data))
}

// parseLayout decodes one layout document. Keys the format does not know
// are rejected.
func parseLayout(name, doc string) (grid.Config, error) {
	var lf layoutFile
	md, err := toml.Decode(doc, &lf)
	if err != nil {
		return grid.Config{}, fmt.Errorf("parse layout %s: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return grid.Config{}, fmt.Errorf("layout %s: unknown keys: %s", name, strings.Join(keys, ", "))
	}

	return lf.toGridConfig()
}

func (lf layoutFile) toGridConfig() (grid.Config, error) {
	cfg := grid.Config{
		Columns: make(grid.ColumnMap, 0, len(lf.Columns)),
		Filters: grid.FiltersConfig{
			SearchBy:           lf.Filters.SearchBy,
			DateRange:          lf.Filters.DateRange,
			ColumnToggler:      true,
			DefaultSearchField: lf.Filters.DefaultSearchField,
		},
	}
	if lf.Filters.ColumnToggler != nil {
		cfg.Filters.ColumnToggler = *lf.Filters.ColumnToggler
	}

	for _, c := range lf.Columns {
		typ, err := grid.ParseColumnType(c.Type)
		if err != nil {
			return grid.Config{}, fmt.Errorf("column %q: %w", c.Key, err)
		}
		cfg.Columns = append(cfg.Columns, grid.Column{Key: c.Key, Label: c.Label, Type: typ})
	}

	if err := cfg.Validate(); err != nil {
		return grid.Config{}, err
	}
	return cfg, nil
}
