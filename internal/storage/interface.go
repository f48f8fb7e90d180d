package storage

import (
	"context"

	"github.com/yourname/rehabtracker/internal"
)

// DailyLogRepository stores one DailyLog per date. UpsertDailyLog must be
// atomic with respect to the date key: concurrent writes for the same date
// merge into one row.
type DailyLogRepository interface {
	UpsertDailyLog(ctx context.Context, date string, patch *internal.DailyLogPatch) (*internal.DailyLog, error)
	GetDailyLog(ctx context.Context, date string) (*internal.DailyLog, error)
	// ListDailyLogs returns logs with from <= date <= to, newest first.
	// An empty bound is open.
	ListDailyLogs(ctx context.Context, from, to string) ([]internal.DailyLog, error)
	// LatestDailyLogBefore returns the most recently dated log strictly
	// before date.
	LatestDailyLogBefore(ctx context.Context, date string) (*internal.DailyLog, error)
	DeleteDailyLog(ctx context.Context, date string) error
}

// Store is a DailyLogRepository holding resources that must be released.
type Store interface {
	DailyLogRepository
	Close() error
}
