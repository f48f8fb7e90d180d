package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"github.com/yourname/rehabtracker/internal"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies pending schema migrations for the dialect and returns the
// resulting schema version.
func Migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, logger internal.Logger) (int64, error) {
	var dir string
	switch dialect {
	case goose.DialectPostgres:
		dir = "migrations/postgres"
	case goose.DialectSQLite3:
		dir = "migrations/sqlite"
	default:
		return 0, fmt.Errorf("storage: no migrations for dialect %q", dialect)
	}
	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return 0, fmt.Errorf("storage: migrations sub-fs: %w", err)
	}
	provider, err := goose.NewProvider(dialect, db, sub)
	if err != nil {
		return 0, fmt.Errorf("storage: create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("storage: apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Infof("storage: applied migration %d (%s) in %s", r.Source.Version, r.Source.Path, r.Duration)
	}
	return provider.GetDBVersion(ctx)
}
