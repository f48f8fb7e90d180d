package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/yourname/rehabtracker/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

// NewPostgresStorage connects to dsn and applies migrations.
func NewPostgresStorage(ctx context.Context, dsn string, logger internal.Logger) (*PostgresStorage, error) {
	if _, err := MigratePostgres(ctx, dsn, logger); err != nil {
		logger.Errorf("failed to migrate postgres: %v", err)
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

// MigratePostgres runs migrations over a short-lived database/sql handle
// backed by the pgx stdlib driver.
func MigratePostgres(ctx context.Context, dsn string, logger internal.Logger) (int64, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("storage: open postgres: %w", err)
	}
	defer db.Close()
	return Migrate(ctx, db, goose.DialectPostgres, logger)
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- DailyLogRepository ---
func (p *PostgresStorage) UpsertDailyLog(ctx context.Context, date string, patch *internal.DailyLogPatch) (*internal.DailyLog, error) {
	query, args, err := postgresDialect.upsert(date, patch)
	if err != nil {
		return nil, err
	}
	row := p.pool.QueryRow(ctx, query+" RETURNING "+postgresDialect.selectColumns(), args...)
	l, err := postgresDialect.scan(row)
	if err != nil {
		p.logger.Errorf("failed to upsert daily log %s: %v", date, err)
		return nil, err
	}
	return l, nil
}

func (p *PostgresStorage) GetDailyLog(ctx context.Context, date string) (*internal.DailyLog, error) {
	day, err := internal.ParseDate(date)
	if err != nil {
		return nil, err
	}
	row := p.pool.QueryRow(ctx, `SELECT `+postgresDialect.selectColumns()+` FROM daily_logs WHERE date = $1`, day)
	l, err := postgresDialect.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("storage: daily log %s: %w", date, internal.ErrNotFound)
	}
	if err != nil {
		p.logger.Errorf("failed to get daily log %s: %v", date, err)
		return nil, err
	}
	return l, nil
}

func (p *PostgresStorage) ListDailyLogs(ctx context.Context, from, to string) ([]internal.DailyLog, error) {
	query, args, err := postgresDialect.listQuery(from, to)
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query daily logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	logs := []internal.DailyLog{}
	for rows.Next() {
		l, err := postgresDialect.scan(rows)
		if err != nil {
			p.logger.Errorf("failed to scan daily log: %v", err)
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (p *PostgresStorage) LatestDailyLogBefore(ctx context.Context, date string) (*internal.DailyLog, error) {
	day, err := internal.ParseDate(date)
	if err != nil {
		return nil, err
	}
	row := p.pool.QueryRow(ctx, `SELECT `+postgresDialect.selectColumns()+` FROM daily_logs WHERE date < $1 ORDER BY date DESC LIMIT 1`, day)
	l, err := postgresDialect.scan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("storage: no daily log before %s: %w", date, internal.ErrNotFound)
	}
	if err != nil {
		p.logger.Errorf("failed to query latest daily log before %s: %v", date, err)
		return nil, err
	}
	return l, nil
}

func (p *PostgresStorage) DeleteDailyLog(ctx context.Context, date string) error {
	day, err := internal.ParseDate(date)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `DELETE FROM daily_logs WHERE date = $1`, day)
	if err != nil {
		p.logger.Errorf("failed to delete daily log %s: %v", date, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("storage: daily log %s: %w", date, internal.ErrNotFound)
	}
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*PostgresStorage)(nil)
