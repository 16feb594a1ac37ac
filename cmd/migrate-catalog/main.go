// migrate-catalog copies recorded runs from a SQLite catalog into a
// PostgreSQL catalog. Runs already present in the target are skipped, so
// the tool can be re-run safely.
//
// Usage:
//
//	go run ./cmd/migrate-catalog \
//	    -sqlite data/runs.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user landforge \
//	    -pg-password landforge \
//	    -pg-database landforge
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/lawnchairsociety/landforge/internal/catalog"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/runs.db", "Path to SQLite catalog")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "landforge", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "landforge", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "landforge", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("Run Catalog Migration Tool")
	log.Println("====================================")

	log.Printf("Opening SQLite catalog: %s", *sqlitePath)
	src, err := catalog.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite catalog: %v", err)
	}
	defer src.Close()

	pg := catalog.DefaultPostgresConfig()
	pg.Host = *pgHost
	pg.Port = *pgPort
	pg.User = *pgUser
	pg.Password = *pgPassword
	pg.Database = *pgDatabase
	pg.SSLMode = *pgSSLMode

	log.Printf("Opening PostgreSQL catalog: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	dst, err := catalog.OpenWithConfig(catalog.Config{Driver: string(catalog.DialectPostgres), Postgres: pg})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL catalog: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	stats, err := migrate(src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("====================================")
	log.Printf("Migration complete! Copied %d runs, skipped %d already present", stats.copied, stats.skipped)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}

type migrateStats struct {
	copied  int
	skipped int
}

// migrate copies every run in src that dst does not hold yet, keeping IDs
// and timestamps.
func migrate(src, dst *catalog.Catalog, dryRun bool) (migrateStats, error) {
	var stats migrateStats
	runs, err := src.ListRuns(catalog.RunFilter{})
	if err != nil {
		return stats, err
	}
	for _, r := range runs {
		if dryRun {
			if _, err := dst.GetRun(r.ID); err == nil {
				stats.skipped++
			} else if errors.Is(err, catalog.ErrNotFound) {
				stats.copied++
			} else {
				return stats, err
			}
			continue
		}
		switch err := dst.SaveRun(r); {
		case err == nil:
			stats.copied++
		case errors.Is(err, catalog.ErrDuplicateRun):
			stats.skipped++
		default:
			return stats, fmt.Errorf("run %s: %w", r.ID, err)
		}
	}
	return stats, nil
}
