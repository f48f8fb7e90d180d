package storage

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/yourname/rehabtracker/internal"
	"github.com/yourname/rehabtracker/internal/config"
)

// Open returns the store selected by cfg.DBType.
func Open(ctx context.Context, cfg *config.Config, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "file":
		return NewFileStorage(cfg.FileDailyLogs, logger)
	case "sqlite":
		return NewSQLiteStorage(ctx, cfg.SQLitePath, logger)
	case "postgres":
		return NewPostgresStorage(ctx, cfg.DBDSN, logger)
	}
	return nil, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
}

// MigrateConfigured applies migrations for the configured SQL backend and
// returns the schema version. The file backend has no schema.
func MigrateConfigured(ctx context.Context, cfg *config.Config, logger internal.Logger) (int64, error) {
	switch cfg.DBType {
	case "postgres":
		return MigratePostgres(ctx, cfg.DBDSN, logger)
	case "sqlite":
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return 0, err
		}
		defer db.Close()
		return Migrate(ctx, db, goose.DialectSQLite3, logger)
	case "file":
		return 0, nil
	}
	return 0, fmt.Errorf("storage: unknown backend %q", cfg.DBType)
}
