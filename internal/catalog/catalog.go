// Package catalog records generated land masks in SQLite or PostgreSQL.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Catalog wraps the database connection and provides persistence operations.
type Catalog struct {
	db      *sql.DB
	dialect Dialect
	qb      *QueryBuilder
}

// Open opens or creates the SQLite catalog at the given path.
func Open(path string) (*Catalog, error) {
	return OpenWithConfig(DefaultConfig(path))
}

// OpenWithConfig opens the catalog described by cfg and runs migrations.
func OpenWithConfig(cfg Config) (*Catalog, error) {
	dialect := NewDialect(DialectType(cfg.Driver))

	var dsn string
	switch dialect.(type) {
	case *PostgresDialect:
		dsn = cfg.Postgres.DSN()
	default:
		dir := filepath.Dir(cfg.SQLitePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create catalog directory: %w", err)
		}
		dsn = cfg.SQLitePath
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if _, ok := dialect.(*PostgresDialect); ok {
		if cfg.Postgres.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		}
		if cfg.Postgres.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		}
		if cfg.Postgres.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)
		}
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	c := &Catalog{db: db, dialect: dialect, qb: NewQueryBuilder(dialect)}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (c *Catalog) migrate() error {
	ts := c.dialect.TimestampType()
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			size TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			seed BIGINT NOT NULL,
			style TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			land_ratio REAL NOT NULL,
			largest_ratio REAL NOT NULL,
			components INTEGER NOT NULL,
			islands INTEGER NOT NULL,
			lakes INTEGER NOT NULL,
			iterations INTEGER NOT NULL,
			enforced INTEGER NOT NULL DEFAULT 0,
			fallback INTEGER NOT NULL DEFAULT 0,
			tiles TEXT NOT NULL,
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_seed_style ON runs(seed, style)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_fingerprint ON runs(fingerprint)`,
	}

	for _, m := range migrations {
		if _, err := c.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// DB returns the underlying sql.DB for advanced operations.
func (c *Catalog) DB() *sql.DB {
	return c.db
}
