// Package source loads token records for the grid.
//
// The grid never fetches data itself; a Source materializes the full
// collection in memory and the caller hands it to grid.Table.SetRecords.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// ErrUnknownKind is returned by Open for an unsupported source kind.
var ErrUnknownKind = errors.New("unknown source kind")

// Source produces the complete record collection.
type Source interface {
	Records(ctx context.Context) ([]grid.Record, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) ([]grid.Record, error)

// Records calls f.
func (f Func) Records(ctx context.Context) ([]grid.Record, error) { return f(ctx) }

// Static returns a Source that always yields records.
func Static(records []grid.Record) Source {
	return Func(func(context.Context) ([]grid.Record, error) {
		return records, nil
	})
}

// FetchError wraps a failure to load records from a named source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch records from %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// selectColumns returns the layout's data keys followed by extra fields,
// without duplicates.
func selectColumns(layout grid.Config, extra []string) []string {
	seen := make(map[string]bool)
	var cols []string
	add := func(key string) {
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		cols = append(cols, key)
	}
	for _, c := range layout.Columns {
		if c.Type != grid.ColumnNone {
			add(c.Key)
		}
	}
	for _, key := range extra {
		add(key)
	}
	return cols
}
