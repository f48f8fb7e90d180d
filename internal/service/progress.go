package service

import (
	"context"
	"sort"
	"time"

	"github.com/yourname/rehabtracker/internal"
	"github.com/yourname/rehabtracker/internal/storage"
)

type DayStatus string

const (
	StatusNone       DayStatus = "none"
	StatusInProgress DayStatus = "in_progress"
	StatusComplete   DayStatus = "complete"
)

// TrendWindow is how far back the progress page looks.
const TrendWindow = 3 // months

// trendPoints caps the chart series.
const trendPoints = 30

type CalendarDay struct {
	Date    string    `json:"date"`
	Weekday string    `json:"weekday"`
	Status  DayStatus `json:"status"`
	IsToday bool      `json:"is_today"`
	InMonth bool      `json:"in_month"`
}

type WeekSummary struct {
	Today         string        `json:"today"`
	TodayStatus   DayStatus     `json:"today_status"`
	Days          []CalendarDay `json:"days"`
	CompletedDays int           `json:"completed_days"`
	Streak        int           `json:"streak"`
}

type MonthCalendar struct {
	Month string        `json:"month"` // YYYY-MM
	Days  []CalendarDay `json:"days"`
}

type TrendPoint struct {
	Date       string `json:"date"`
	RestingO2  *int   `json:"resting_o2"`
	RecoveryO2 *int   `json:"recovery_o2"`
	RestingHR  *int   `json:"resting_hr"`
	RecoveryHR *int   `json:"recovery_hr"`
	Rowing     *int   `json:"rowing"`
	Symptoms   *int   `json:"symptoms"`
}

type ProgressSummary struct {
	Streak         int           `json:"streak"`
	TotalCompleted int           `json:"total_completed"`
	WindowStart    string        `json:"window_start"`
	Calendar       MonthCalendar `json:"calendar"`
	Trend          []TrendPoint  `json:"trend"`
}

// CalculateStreak counts consecutive complete days ending today, or ending
// yesterday when the newest log is not today's. The first gap or incomplete
// day ends the count. Logs dated after today are ignored.
func CalculateStreak(logs []internal.DailyLog, today time.Time) int {
	anchor := internal.DateOf(today)
	sorted := sortedDesc(logs)

	streak := 0
	i := 0
	for _, l := range sorted {
		d, err := internal.ParseDate(l.Date)
		if err != nil {
			break
		}
		if i == 0 && d.After(anchor) {
			continue
		}
		if i == 0 && !d.Equal(anchor) {
			anchor = anchor.AddDate(0, 0, -1)
		}
		expected := anchor.AddDate(0, 0, -i)
		if !d.Equal(expected) || !l.IsComplete() {
			break
		}
		streak++
		i++
	}
	return streak
}

func CountCompleted(logs []internal.DailyLog) int {
	n := 0
	for i := range logs {
		if logs[i].IsComplete() {
			n++
		}
	}
	return n
}

// BuildWeekSummary describes the Sunday-to-Saturday week containing today.
func BuildWeekSummary(logs []internal.DailyLog, today time.Time) WeekSummary {
	day := internal.DateOf(today)
	start := day.AddDate(0, 0, -int(day.Weekday()))
	byDate := indexByDate(logs)

	summary := WeekSummary{
		Today:       day.Format(internal.DateLayout),
		TodayStatus: statusOf(byDate, day.Format(internal.DateLayout)),
		Streak:      CalculateStreak(logs, today),
	}
	for i := 0; i < 7; i++ {
		d := start.AddDate(0, 0, i)
		cell := calendarDay(byDate, d, day)
		cell.InMonth = d.Month() == day.Month()
		if cell.Status == StatusComplete {
			summary.CompletedDays++
		}
		summary.Days = append(summary.Days, cell)
	}
	return summary
}

// MonthGrid returns the first and last dates shown for month: the Sunday on
// or before the 1st through the Saturday on or after the last day.
func MonthGrid(month time.Time) (time.Time, time.Time) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))
	return start, end
}

func BuildMonthCalendar(logs []internal.DailyLog, month, today time.Time) MonthCalendar {
	start, end := MonthGrid(month)
	byDate := indexByDate(logs)
	day := internal.DateOf(today)

	cal := MonthCalendar{Month: month.Format("2006-01")}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		cell := calendarDay(byDate, d, day)
		cell.InMonth = d.Month() == month.Month()
		cal.Days = append(cal.Days, cell)
	}
	return cal
}

// BuildTrend returns the last 30 logs that carry an O2 reading, oldest first.
func BuildTrend(logs []internal.DailyLog) []TrendPoint {
	sorted := sortedDesc(logs)
	points := []TrendPoint{}
	for i := len(sorted) - 1; i >= 0; i-- {
		l := sorted[i]
		if l.RestingO2Sat == nil && l.RecoveryO2 == nil {
			continue
		}
		points = append(points, TrendPoint{
			Date:       l.Date,
			RestingO2:  l.RestingO2Sat,
			RecoveryO2: l.RecoveryO2,
			RestingHR:  l.RestingHR,
			RecoveryHR: l.RecoveryHR,
			Rowing:     l.RowingDuration,
			Symptoms:   l.SymptomScore,
		})
	}
	if len(points) > trendPoints {
		points = points[len(points)-trendPoints:]
	}
	return points
}

// Dashboard loads what the dashboard shows for today.
func Dashboard(ctx context.Context, repo storage.DailyLogRepository, today time.Time) (WeekSummary, error) {
	day := internal.DateOf(today)
	weekEnd := day.AddDate(0, 0, 6-int(day.Weekday()))
	logs, err := repo.ListDailyLogs(ctx, "", weekEnd.Format(internal.DateLayout))
	if err != nil {
		return WeekSummary{}, err
	}
	return BuildWeekSummary(logs, today), nil
}

// Progress loads the streak, completion count and trend for the last three
// months, and the calendar for month.
func Progress(ctx context.Context, repo storage.DailyLogRepository, month, today time.Time) (ProgressSummary, error) {
	day := internal.DateOf(today)
	windowStart := day.AddDate(0, -TrendWindow, 0)
	gridStart, gridEnd := MonthGrid(month)

	from, to := windowStart, day
	if gridStart.Before(from) {
		from = gridStart
	}
	if gridEnd.After(to) {
		to = gridEnd
	}
	logs, err := repo.ListDailyLogs(ctx, from.Format(internal.DateLayout), to.Format(internal.DateLayout))
	if err != nil {
		return ProgressSummary{}, err
	}

	window := filterRange(logs, windowStart.Format(internal.DateLayout), day.Format(internal.DateLayout))
	return ProgressSummary{
		Streak:         CalculateStreak(window, today),
		TotalCompleted: CountCompleted(window),
		WindowStart:    windowStart.Format(internal.DateLayout),
		Calendar:       BuildMonthCalendar(logs, month, today),
		Trend:          BuildTrend(window),
	}, nil
}

func calendarDay(byDate map[string]*internal.DailyLog, d, today time.Time) CalendarDay {
	date := d.Format(internal.DateLayout)
	return CalendarDay{
		Date:    date,
		Weekday: d.Weekday().String()[:3],
		Status:  statusOf(byDate, date),
		IsToday: d.Equal(today),
	}
}

func statusOf(byDate map[string]*internal.DailyLog, date string) DayStatus {
	l, ok := byDate[date]
	switch {
	case !ok:
		return StatusNone
	case l.IsComplete():
		return StatusComplete
	default:
		return StatusInProgress
	}
}

func indexByDate(logs []internal.DailyLog) map[string]*internal.DailyLog {
	m := make(map[string]*internal.DailyLog, len(logs))
	for i := range logs {
		m[logs[i].Date] = &logs[i]
	}
	return m
}

func sortedDesc(logs []internal.DailyLog) []internal.DailyLog {
	out := make([]internal.DailyLog, len(logs))
	copy(out, logs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func filterRange(logs []internal.DailyLog, from, to string) []internal.DailyLog {
	out := []internal.DailyLog{}
	for _, l := range logs {
		if l.Date >= from && l.Date <= to {
			out = append(out, l)
		}
	}
	return out
}
