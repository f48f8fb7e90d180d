package internal

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form used as the daily log key.
const DateLayout = "2006-01-02"

type ExerciseID string

// Exercises the completion predicate depends on.
const (
	SeatedMarching ExerciseID = "seated_marching"
	BicepCurls     ExerciseID = "bicep_curls"
)

type ExerciseEntry struct {
	Done              bool   `json:"done"`
	WeightOrBand      string `json:"weight_or_band"`
	RepsAndSets       string `json:"reps_and_sets"`
	PostO2            *int   `json:"post_o2"`
	PostPulse         *int   `json:"post_pulse"`
	PostDeviceSetting *int   `json:"post_device_setting"`
}

// DailyLog is the single record kept for one calendar date.
type DailyLog struct {
	Date string `json:"date"`

	// Pre-exercise vitals
	RestingO2Sat  *int `json:"resting_o2_sat"`
	RestingHR     *int `json:"resting_hr"`
	DeviceSetting *int `json:"device_setting"` // oxygen concentrator setting
	SymptomScore  *int `json:"symptom_score"`

	Exercises map[ExerciseID]ExerciseEntry `json:"exercises"`

	// Aerobic block
	RowingDuration      *int `json:"rowing_duration"` // minutes
	RowingAvgO2         *int `json:"rowing_avg_o2"`
	RowingLowO2         *int `json:"rowing_low_o2"`
	RowingHR            *int `json:"rowing_hr"`
	RowingDeviceSetting *int `json:"rowing_device_setting"`

	// Post-exercise vitals
	RecoveryO2 *int `json:"recovery_o2"`
	RecoveryHR *int `json:"recovery_hr"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDailyLog returns the default empty record for date.
func NewDailyLog(date string) DailyLog {
	return DailyLog{Date: date, Exercises: map[ExerciseID]ExerciseEntry{}}
}

// Exercise returns the entry for id, or the zero entry when none was recorded.
func (l *DailyLog) Exercise(id ExerciseID) ExerciseEntry {
	return l.Exercises[id]
}

// IsComplete reports whether the day counts as a finished workout: resting
// O2 recorded, seated marching and biceps curls done, and rowing logged.
func (l *DailyLog) IsComplete() bool {
	return nonZero(l.RestingO2Sat) &&
		l.Exercise(SeatedMarching).Done &&
		l.Exercise(BicepCurls).Done &&
		nonZero(l.RowingDuration)
}

// Clone returns a copy that shares no map with l.
func (l *DailyLog) Clone() DailyLog {
	out := *l
	out.Exercises = make(map[ExerciseID]ExerciseEntry, len(l.Exercises))
	for id, e := range l.Exercises {
		out.Exercises[id] = e
	}
	return out
}

func nonZero(v *int) bool {
	return v != nil && *v != 0
}

// ParseDate parses a YYYY-MM-DD date, or an RFC3339 timestamp whose
// time-of-day is discarded. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrValidation, s)
}

// NormalizeDate returns s as a YYYY-MM-DD key.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// DateOf truncates t to its calendar date in t's own location, as midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
