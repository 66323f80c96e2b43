package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/JonMunkholm/tokengrid/internal/config"
	"github.com/JonMunkholm/tokengrid/internal/grid"
	"github.com/JonMunkholm/tokengrid/internal/source"
)

// sourceOptions are the flags shared by every command that loads records.
type sourceOptions struct {
	kind        string
	file        string
	databaseURL string
	dsn         string
	table       string
	layout      string
	secretField string
}

func (o *sourceOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.kind, "kind", "", "source kind: file, postgres, sqlite or mysql (default: postgres when --database-url is set, else file)")
	fs.StringVarP(&o.file, "file", "f", "tokens.json", "JSON records file")
	fs.StringVar(&o.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL URL")
	fs.StringVar(&o.dsn, "dsn", os.Getenv("SOURCE_DSN"), "sqlite file or mysql DSN")
	fs.StringVar(&o.table, "table", "tokens", "database table")
	fs.StringVar(&o.layout, "layout", os.Getenv("GRID_LAYOUT"), "TOML grid layout (default: built-in token layout)")
	fs.StringVar(&o.secretField, "secret-field", "token", "record field holding the token")
}

// sourceConfig maps the flags onto the server's source settings.
func (o *sourceOptions) sourceConfig() config.SourceConfig {
	cfg := config.SourceConfig{Kind: o.kind, File: o.file, DSN: o.dsn, Table: o.table}
	if cfg.Kind == "" {
		cfg.Kind = config.SourceFile
		if o.databaseURL != "" {
			cfg.Kind = config.SourcePostgres
		}
	}
	return cfg
}

// open resolves the layout and record source. The returned close func
// releases any database connection.
func (o *sourceOptions) open(ctx context.Context) (grid.Config, source.Source, func(), error) {
	layout, err := config.LoadLayout(o.layout)
	if err != nil {
		return grid.Config{}, nil, nil, err
	}

	cfg := o.sourceConfig()
	conn, closer, err := source.Dial(ctx, cfg, config.DatabaseConfig{URL: o.databaseURL})
	if err != nil {
		return grid.Config{}, nil, nil, err
	}

	src, err := source.Open(cfg, conn, layout, o.secretField)
	if err != nil {
		closer()
		return grid.Config{}, nil, nil, err
	}
	return layout, src, closer, nil
}

// describe names the source for log lines.
func (o *sourceOptions) describe() string {
	switch cfg := o.sourceConfig(); cfg.Kind {
	case config.SourceFile:
		return cfg.File
	default:
		return fmt.Sprintf("%s table %s", cfg.Kind, cfg.Table)
	}
}
