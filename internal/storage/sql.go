package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourname/rehabtracker/internal"
)

// sqlDialect captures what differs between the SQL backends; the upsert
// itself is always INSERT ... ON CONFLICT (date) DO UPDATE.
type sqlDialect struct {
	bind           func(n int) string
	dateColumn     string
	mergeExercises string
	now            string
	dateArg        func(date string) (any, error)
	timeDest       func(t *time.Time) any
}

var postgresDialect = sqlDialect{
	bind:           func(n int) string { return "$" + strconv.Itoa(n) },
	dateColumn:     "to_char(date, 'YYYY-MM-DD')",
	mergeExercises: "daily_logs.exercises || EXCLUDED.exercises",
	now:            "now()",
	dateArg: func(date string) (any, error) {
		return internal.ParseDate(date)
	},
	timeDest: func(t *time.Time) any { return t },
}

var sqliteDialect = sqlDialect{
	bind:           func(int) string { return "?" },
	dateColumn:     "date",
	mergeExercises: "json_patch(daily_logs.exercises, excluded.exercises)",
	now:            "CURRENT_TIMESTAMP",
	dateArg: func(date string) (any, error) {
		return internal.NormalizeDate(date)
	},
	timeDest: func(t *time.Time) any { return (*sqliteTime)(t) },
}

const dailyLogScalarColumns = `resting_o2_sat, resting_hr, device_setting, symptom_score, exercises,
	rowing_duration, rowing_avg_o2, rowing_low_o2, rowing_hr, rowing_device_setting,
	recovery_o2, recovery_hr, notes, created_at, updated_at`

func (d sqlDialect) selectColumns() string {
	return d.dateColumn + ", " + dailyLogScalarColumns
}

// upsert builds the statement writing patch into date. Only the columns the
// patch sets appear in the DO UPDATE clause, so unset fields keep their
// stored values.
func (d sqlDialect) upsert(date string, patch *internal.DailyLogPatch) (string, []any, error) {
	dateArg, err := d.dateArg(date)
	if err != nil {
		return "", nil, err
	}
	exercises := patch.Exercises
	if exercises == nil {
		exercises = map[internal.ExerciseID]internal.ExerciseEntry{}
	}
	exercisesJSON, err := json.Marshal(exercises)
	if err != nil {
		return "", nil, fmt.Errorf("storage: encode exercises: %w", err)
	}

	names := []string{"date", "exercises"}
	args := []any{dateArg, string(exercisesJSON)}
	var sets []string
	for _, col := range patch.Columns() {
		names = append(names, col.Name)
		args = append(args, col.Value)
		sets = append(sets, col.Name+" = EXCLUDED."+col.Name)
	}
	if len(patch.Exercises) > 0 {
		sets = append(sets, "exercises = "+d.mergeExercises)
	}
	sets = append(sets, "updated_at = "+d.now)

	binds := make([]string, len(args))
	for i := range args {
		binds[i] = d.bind(i + 1)
	}
	query := fmt.Sprintf(
		"INSERT INTO daily_logs (%s) VALUES (%s) ON CONFLICT (date) DO UPDATE SET %s",
		strings.Join(names, ", "), strings.Join(binds, ", "), strings.Join(sets, ", "),
	)
	return query, args, nil
}

// listQuery selects logs within the optional inclusive bounds, newest first.
func (d sqlDialect) listQuery(from, to string) (string, []any, error) {
	var conds []string
	var args []any
	if from != "" {
		a, err := d.dateArg(from)
		if err != nil {
			return "", nil, err
		}
		args = append(args, a)
		conds = append(conds, "date >= "+d.bind(len(args)))
	}
	if to != "" {
		a, err := d.dateArg(to)
		if err != nil {
			return "", nil, err
		}
		args = append(args, a)
		conds = append(conds, "date <= "+d.bind(len(args)))
	}
	query := "SELECT " + d.selectColumns() + " FROM daily_logs"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	return query + " ORDER BY date DESC", args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (d sqlDialect) scan(row rowScanner) (*internal.DailyLog, error) {
	var l internal.DailyLog
	var exercises []byte
	err := row.Scan(
		&l.Date, &l.RestingO2Sat, &l.RestingHR, &l.DeviceSetting, &l.SymptomScore, &exercises,
		&l.RowingDuration, &l.RowingAvgO2, &l.RowingLowO2, &l.RowingHR, &l.RowingDeviceSetting,
		&l.RecoveryO2, &l.RecoveryHR, &l.Notes, d.timeDest(&l.CreatedAt), d.timeDest(&l.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	l.Exercises = map[internal.ExerciseID]internal.ExerciseEntry{}
	if len(exercises) > 0 {
		if err := json.Unmarshal(exercises, &l.Exercises); err != nil {
			return nil, fmt.Errorf("storage: decode exercises for %s: %w", l.Date, err)
		}
	}
	return &l, nil
}

// sqliteTime scans the textual timestamps SQLite stores for DATETIME columns.
type sqliteTime time.Time

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
}

func (t *sqliteTime) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = sqliteTime(v.UTC())
		return nil
	case int64:
		*t = sqliteTime(time.Unix(v, 0).UTC())
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	case nil:
		*t = sqliteTime(time.Time{})
		return nil
	}
	return fmt.Errorf("storage: cannot scan %T into timestamp", src)
}

func (t *sqliteTime) parse(s string) error {
	for _, layout := range sqliteTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = sqliteTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("storage: unrecognized timestamp %q", s)
}

func (t sqliteTime) Value() (driver.Value, error) {
	return time.Time(t), nil
}
