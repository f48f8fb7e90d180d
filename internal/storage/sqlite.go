package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/yourname/rehabtracker/internal"
)

// SQLiteStorage keeps daily logs in a local SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	logger internal.Logger
}

// NewSQLiteStorage opens (creating if needed) the database at path and
// applies migrations.
func NewSQLiteStorage(ctx context.Context, path string, logger internal.Logger) (*SQLiteStorage, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		logger.Errorf("failed to open sqlite: %v", err)
		return nil, err
	}
	if _, err := Migrate(ctx, db, goose.DialectSQLite3, logger); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

// OpenSQLite opens the database file with WAL and a busy timeout. SQLite
// allows one writer, so the pool is limited to a single connection.
func OpenSQLite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// --- DailyLogRepository ---
func (s *SQLiteStorage) UpsertDailyLog(ctx context.Context, date string, patch *internal.DailyLogPatch) (*internal.DailyLog, error) {
	query, args, err := sqliteDialect.upsert(date, patch)
	if err != nil {
		return nil, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Errorf("failed to begin upsert of daily log %s: %v", date, err)
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		s.logger.Errorf("failed to upsert daily log %s: %v", date, err)
		return nil, err
	}
	row := tx.QueryRowContext(ctx, "SELECT "+sqliteDialect.selectColumns()+" FROM daily_logs WHERE date = ?", date)
	l, err := sqliteDialect.scan(row)
	if err != nil {
		s.logger.Errorf("failed to read back daily log %s: %v", date, err)
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Errorf("failed to commit daily log %s: %v", date, err)
		return nil, err
	}
	return l, nil
}

func (s *SQLiteStorage) GetDailyLog(ctx context.Context, date string) (*internal.DailyLog, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sqliteDialect.selectColumns()+" FROM daily_logs WHERE date = ?", date)
	l, err := sqliteDialect.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: daily log %s: %w", date, internal.ErrNotFound)
	}
	if err != nil {
		s.logger.Errorf("failed to get daily log %s: %v", date, err)
		return nil, err
	}
	return l, nil
}

func (s *SQLiteStorage) ListDailyLogs(ctx context.Context, from, to string) ([]internal.DailyLog, error) {
	query, args, err := sqliteDialect.listQuery(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Errorf("failed to query daily logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	logs := []internal.DailyLog{}
	for rows.Next() {
		l, err := sqliteDialect.scan(rows)
		if err != nil {
			s.logger.Errorf("failed to scan daily log: %v", err)
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (s *SQLiteStorage) LatestDailyLogBefore(ctx context.Context, date string) (*internal.DailyLog, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+sqliteDialect.selectColumns()+" FROM daily_logs WHERE date < ? ORDER BY date DESC LIMIT 1", date)
	l, err := sqliteDialect.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: no daily log before %s: %w", date, internal.ErrNotFound)
	}
	if err != nil {
		s.logger.Errorf("failed to query latest daily log before %s: %v", date, err)
		return nil, err
	}
	return l, nil
}

func (s *SQLiteStorage) DeleteDailyLog(ctx context.Context, date string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM daily_logs WHERE date = ?", date)
	if err != nil {
		s.logger.Errorf("failed to delete daily log %s: %v", date, err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("storage: daily log %s: %w", date, internal.ErrNotFound)
	}
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*SQLiteStorage)(nil)
