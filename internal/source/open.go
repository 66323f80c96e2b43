package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JonMunkholm/tokengrid/internal/config"
	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// Conn carries the database handles a source kind may need. Fields unused
// by the configured kind are nil.
type Conn struct {
	PG  Querier
	SQL *sql.DB
}

// Dial connects whatever cfg.Kind needs. The returned func releases it.
func Dial(ctx context.Context, cfg config.SourceConfig, db config.DatabaseConfig) (Conn, func(), error) {
	switch cfg.Kind {
	case config.SourcePostgres:
		pool, err := Connect(ctx, db)
		if err != nil {
			return Conn{}, nil, err
		}
		return Conn{PG: pool}, pool.Close, nil
	case config.SourceSQLite, config.SourceMySQL:
		sqlDB, err := OpenDB(ctx, cfg.Kind, cfg.DSN)
		if err != nil {
			return Conn{}, nil, err
		}
		return Conn{SQL: sqlDB}, func() { sqlDB.Close() }, nil
	default:
		return Conn{}, func() {}, nil
	}
}

// Open selects the source named by cfg.Kind.
func Open(cfg config.SourceConfig, conn Conn, layout grid.Config, secretField string) (Source, error) {
	switch cfg.Kind {
	case config.SourceFile:
		return File{Path: cfg.File}, nil
	case config.SourcePostgres:
		if conn.PG == nil {
			return nil, fmt.Errorf("postgres source: no database connection")
		}
		return NewPostgres(conn.PG, cfg.Table, layout, secretField), nil
	case config.SourceSQLite, config.SourceMySQL:
		if conn.SQL == nil {
			return nil, fmt.Errorf("%s source: no database connection", cfg.Kind)
		}
		return NewSQL(conn.SQL, cfg.Kind, cfg.Table, layout, secretField), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
