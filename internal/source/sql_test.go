package source

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/tokengrid/internal/config"
	"github.com/JonMunkholm/tokengrid/internal/grid"
)

func openSQLite(t *testing.T) *SQL {
	t.Helper()
	ctx := context.Background()

	db, err := OpenDB(ctx, DriverSQLite, filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	stmts := []string{
		`CREATE TABLE tokens (name TEXT, iss TEXT, sub TEXT, iat INTEGER, token TEXT, extra TEXT)`,
		`INSERT INTO tokens VALUES ('deploy', 'acct-1', 'ci', 1700000000, 'secret-1', 'x')`,
		`INSERT INTO tokens VALUES ('backup', 'acct-2', NULL, 1600000000, NULL, 'y')`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	return NewSQL(db, DriverSQLite, "tokens", grid.TokenLayout(), "token")
}

func TestSQL_Records(t *testing.T) {
	src := openSQLite(t)

	records, err := src.Records(context.Background())
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	first := records[0]
	if got := first.Get("name").String(); got != "deploy" {
		t.Errorf("name = %q", got)
	}
	if f, ok := first.Get("iat").Float(); !ok || f != 1700000000 {
		t.Errorf("iat = %v, %v", f, ok)
	}
	if got := first.Get("token").String(); got != "secret-1" {
		t.Errorf("token = %q", got)
	}
	if _, ok := first["extra"]; ok {
		t.Error("unselected column leaked into the record")
	}

	second := records[1]
	if !second.Get("sub").IsAbsent() || !second.Get("token").IsAbsent() {
		t.Errorf("NULLs should be absent: %+v", second)
	}
}

func TestSQL_MissingTable(t *testing.T) {
	src := openSQLite(t)
	src.Table = "nope"

	_, err := src.Records(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Source != "sqlite:nope" {
		t.Fatalf("expected FetchError for sqlite:nope, got %v", err)
	}
}

func TestSQL_Query(t *testing.T) {
	tests := []struct {
		driver string
		table  string
		want   string
	}{
		{DriverSQLite, "tokens", `SELECT "name", "token" FROM "tokens"`},
		{DriverMySQL, "tokens", "SELECT `name`, `token` FROM `tokens`"},
		{DriverMySQL, "to`kens", "SELECT `name`, `token` FROM `to``kens`"},
	}
	for _, tt := range tests {
		t.Run(tt.driver+"/"+tt.table, func(t *testing.T) {
			s := &SQL{Driver: tt.driver, Table: tt.table, Columns: []string{"name", "token"}}
			if got := s.Query(); got != tt.want {
				t.Errorf("Query() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	if _, err := OpenDB(context.Background(), "oracle", "x"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestDialAndOpen_SQLite(t *testing.T) {
	cfg := config.SourceConfig{
		Kind:  config.SourceSQLite,
		DSN:   filepath.Join(t.TempDir(), "dial.db"),
		Table: "tokens",
	}

	conn, closer, err := Dial(context.Background(), cfg, config.DatabaseConfig{})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer closer()

	src, err := Open(cfg, conn, grid.TokenLayout(), "token")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s, ok := src.(*SQL); !ok || s.Driver != DriverSQLite {
		t.Errorf("source = %#v", src)
	}
}
