package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// Querier is the subset of *pgxpool.Pool the postgres source needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads every row of a table. Columns lists the fields to select;
// the secret field is selected alongside the displayed ones.
type Postgres struct {
	DB      Querier
	Table   string
	Columns []string
}

// NewPostgres builds a source selecting the layout's data columns plus any
// extra fields (e.g. the token shown in the secret modal).
func NewPostgres(db Querier, table string, layout grid.Config, extra ...string) *Postgres {
	return &Postgres{DB: db, Table: table, Columns: selectColumns(layout, extra)}
}

// Query returns the SELECT statement the source runs. Rows come back in
// physical order; the grid owns ordering.
func (p *Postgres) Query() string {
	return fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(quoteColumns(p.Columns), ", "),
		quoteIdentifier(p.Table),
	)
}

// Records runs the query and converts every row.
func (p *Postgres) Records(ctx context.Context) ([]grid.Record, error) {
	if len(p.Columns) == 0 {
		return nil, &FetchError{Source: p.Table, Err: fmt.Errorf("no columns to select")}
	}

	rows, err := p.DB.Query(ctx, p.Query())
	if err != nil {
		return nil, &FetchError{Source: p.Table, Err: fmt.Errorf("query rows: %w", err)}
	}
	defer rows.Close()

	records := []grid.Record{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, &FetchError{Source: p.Table, Err: fmt.Errorf("read row values: %w", err)}
		}
		records = append(records, recordFromValues(fieldNames(rows.FieldDescriptions(), p.Columns), values))
	}

	if err := rows.Err(); err != nil {
		return nil, &FetchError{Source: p.Table, Err: fmt.Errorf("rows error: %w", err)}
	}

	return records, nil
}

// fieldNames prefers the names reported by the server and falls back to the
// requested columns.
func fieldNames(fds []pgconn.FieldDescription, requested []string) []string {
	if len(fds) == 0 {
		return requested
	}
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}
	return names
}

func recordFromValues(names []string, values []any) grid.Record {
	rec := make(grid.Record, len(names))
	for i, name := range names {
		if i >= len(values) {
			break
		}
		rec[name] = toValue(values[i])
	}
	return rec
}

// toValue converts driver output into a grid value. Timestamps become
// epoch seconds so they sort and filter as date columns.
func toValue(v any) grid.Value {
	switch val := v.(type) {
	case pgtype.Numeric:
		if !val.Valid {
			return grid.Absent
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return grid.Absent
		}
		return grid.Number(f.Float64)

	case pgtype.Text:
		if !val.Valid {
			return grid.Absent
		}
		return grid.Text(val.String)

	case pgtype.Timestamptz:
		if !val.Valid {
			return grid.Absent
		}
		return grid.ValueOf(val.Time)

	case pgtype.Timestamp:
		if !val.Valid {
			return grid.Absent
		}
		return grid.ValueOf(val.Time)

	case pgtype.Date:
		if !val.Valid {
			return grid.Absent
		}
		return grid.ValueOf(val.Time)

	case [16]byte:
		return grid.Text(uuid.UUID(val).String())

	case time.Time:
		return grid.ValueOf(val)

	default:
		return grid.ValueOf(v)
	}
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteColumns quotes each column name in the slice.
func quoteColumns(cols []string) []string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdentifier(col)
	}
	return quoted
}
