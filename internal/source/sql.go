package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// Driver names registered with database/sql.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// OpenDB opens and pings a database/sql pool for driver.
//
// SQLite DSNs are file paths; WAL mode and a busy timeout are appended so a
// writer process does not block reads. MySQL DSNs use the
// user:pass@tcp(host:port)/db form and get parseTime=true unless set.
func OpenDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite:
		if !strings.Contains(dsn, "?") && dsn != ":memory:" {
			dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		}
	case DriverMySQL:
		if !strings.Contains(dsn, "parseTime=") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "parseTime=true"
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// SQL reads every row of a table through database/sql.
type SQL struct {
	DB      *sql.DB
	Driver  string
	Table   string
	Columns []string
}

// NewSQL builds a database/sql source selecting the layout's data columns
// plus any extra fields.
func NewSQL(db *sql.DB, driver, table string, layout grid.Config, extra ...string) *SQL {
	return &SQL{DB: db, Driver: driver, Table: table, Columns: selectColumns(layout, extra)}
}

// Query returns the SELECT statement for the source's dialect.
func (s *SQL) Query() string {
	quote := quoteIdentifier
	if s.Driver == DriverMySQL {
		quote = quoteBacktick
	}
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = quote(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), quote(s.Table))
}

// Records runs the query and converts every row.
func (s *SQL) Records(ctx context.Context) ([]grid.Record, error) {
	name := s.Driver + ":" + s.Table
	if len(s.Columns) == 0 {
		return nil, &FetchError{Source: name, Err: fmt.Errorf("no columns to select")}
	}

	rows, err := s.DB.QueryContext(ctx, s.Query())
	if err != nil {
		return nil, &FetchError{Source: name, Err: fmt.Errorf("query rows: %w", err)}
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, &FetchError{Source: name, Err: fmt.Errorf("columns: %w", err)}
	}

	records := []grid.Record{}
	values := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &FetchError{Source: name, Err: fmt.Errorf("scan row: %w", err)}
		}
		rec := make(grid.Record, len(names))
		for i, n := range names {
			rec[n] = grid.ValueOf(values[i])
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, &FetchError{Source: name, Err: fmt.Errorf("rows error: %w", err)}
	}
	return records, nil
}

func quoteBacktick(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
