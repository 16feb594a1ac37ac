package catalog

import (
	"errors"
	"strings"
	"testing"
)

func TestNewDialect(t *testing.T) {
	if _, ok := NewDialect(DialectSQLite).(*SQLiteDialect); !ok {
		t.Error("Expected *SQLiteDialect")
	}
	if _, ok := NewDialect(DialectPostgres).(*PostgresDialect); !ok {
		t.Error("Expected *PostgresDialect")
	}
	// Unknown dialect should default to SQLite
	if _, ok := NewDialect("unknown").(*SQLiteDialect); !ok {
		t.Error("Expected default *SQLiteDialect")
	}
}

func TestPlaceholders(t *testing.T) {
	s := &SQLiteDialect{}
	p := &PostgresDialect{}
	tests := []struct {
		position int
		sqlite   string
		postgres string
	}{
		{1, "?", "$1"},
		{2, "?", "$2"},
		{10, "?", "$10"},
	}
	for _, tt := range tests {
		if got := s.Placeholder(tt.position); got != tt.sqlite {
			t.Errorf("SQLite Placeholder(%d) = %q, want %q", tt.position, got, tt.sqlite)
		}
		if got := p.Placeholder(tt.position); got != tt.postgres {
			t.Errorf("Postgres Placeholder(%d) = %q, want %q", tt.position, got, tt.postgres)
		}
	}
}

func TestDuplicateKeyErrors(t *testing.T) {
	s := &SQLiteDialect{}
	p := &PostgresDialect{}
	tests := []struct {
		err      error
		sqlite   bool
		postgres bool
	}{
		{nil, false, false},
		{errors.New("UNIQUE constraint failed: runs.id"), true, false},
		{errors.New(`pq: duplicate key value violates unique constraint "runs_pkey"`), false, true},
		{errors.New("ERROR: 23505"), false, true},
		{errors.New("connection refused"), false, false},
	}
	for _, tt := range tests {
		if got := s.IsDuplicateKeyError(tt.err); got != tt.sqlite {
			t.Errorf("SQLite IsDuplicateKeyError(%v) = %v, want %v", tt.err, got, tt.sqlite)
		}
		if got := p.IsDuplicateKeyError(tt.err); got != tt.postgres {
			t.Errorf("Postgres IsDuplicateKeyError(%v) = %v, want %v", tt.err, got, tt.postgres)
		}
	}
}

func TestQueryBuilder(t *testing.T) {
	query := "SELECT id FROM runs WHERE seed = ? AND style = ? LIMIT ?"

	if got := NewQueryBuilder(&SQLiteDialect{}).Build(query); got != query {
		t.Errorf("SQLite Build changed the query: %q", got)
	}

	want := "SELECT id FROM runs WHERE seed = $1 AND style = $2 LIMIT $3"
	if got := NewQueryBuilder(&PostgresDialect{}).Build(query); got != want {
		t.Errorf("Postgres Build = %q, want %q", got, want)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.User = "landforge"
	cfg.Password = "secret"
	cfg.Database = "maps"
	dsn := cfg.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "user=landforge", "dbname=maps", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %q", dsn, part)
		}
	}
}
