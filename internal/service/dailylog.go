package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/yourname/rehabtracker/internal"
	"github.com/yourname/rehabtracker/internal/catalog"
	"github.com/yourname/rehabtracker/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	mustRegister(v, "calendardate", func(fl validator.FieldLevel) bool {
		_, err := internal.ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "exercise", func(fl validator.FieldLevel) bool {
		return catalog.Has(internal.ExerciseID(fl.Field().String()))
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("service: register validation " + tag + ": " + err.Error())
	}
}

// DailyLogRequest is the body of a log write: the date key plus any subset
// of DailyLog fields.
type DailyLogRequest struct {
	Date string `json:"date" validate:"required,calendardate"`
	internal.DailyLogPatch
	// Shadows the embedded field so the exercise ids can be validated.
	Exercises map[internal.ExerciseID]internal.ExerciseEntry `json:"exercises" validate:"omitempty,dive,keys,exercise,endkeys"`
}

type QuickFillRequest struct {
	Date string `json:"date" validate:"omitempty,calendardate"`
}

// QuickFillResult reports what a quick fill did. Prefilled is false when no
// earlier log existed; Log is then the default empty record and nothing was
// written.
type QuickFillResult struct {
	Log        *internal.DailyLog `json:"log"`
	Prefilled  bool               `json:"prefilled"`
	SourceDate string             `json:"source_date,omitempty"`
}

func ValidateDailyLogRequest(body *DailyLogRequest) error {
	if err := validate.Struct(body); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrValidation, err)
	}
	return nil
}

func ValidateQuickFillRequest(body *QuickFillRequest) error {
	if err := validate.Struct(body); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrValidation, err)
	}
	return nil
}

// UpsertDailyLog normalizes the date key and commits the request as one
// upsert. Fields absent from the request keep their stored values.
func UpsertDailyLog(ctx context.Context, repo storage.DailyLogRepository, body *DailyLogRequest) (*internal.DailyLog, error) {
	date, err := internal.NormalizeDate(body.Date)
	if err != nil {
		return nil, err
	}
	patch := body.DailyLogPatch
	patch.Exercises = body.Exercises
	l, err := repo.UpsertDailyLog(ctx, date, &patch)
	if err != nil {
		return nil, err
	}
	catalog.PadDefaults(l)
	return l, nil
}

// ListDailyLogs returns logs in the inclusive range, newest first. Empty
// bounds are open.
func ListDailyLogs(ctx context.Context, repo storage.DailyLogRepository, from, to string) ([]internal.DailyLog, error) {
	var err error
	if from != "" {
		if from, err = internal.NormalizeDate(from); err != nil {
			return nil, err
		}
	}
	if to != "" {
		if to, err = internal.NormalizeDate(to); err != nil {
			return nil, err
		}
	}
	logs, err := repo.ListDailyLogs(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for i := range logs {
		catalog.PadDefaults(&logs[i])
	}
	return logs, nil
}

// DiscardDailyLog removes the log for date and returns the normalized key.
func DiscardDailyLog(ctx context.Context, repo storage.DailyLogRepository, date string) (string, error) {
	date, err := internal.NormalizeDate(date)
	if err != nil {
		return "", err
	}
	return date, repo.DeleteDailyLog(ctx, date)
}

// QuickFill copies the pre-exercise vitals of the most recently dated log
// before date into date's log. Exercise flags are never copied.
func QuickFill(ctx context.Context, repo storage.DailyLogRepository, date string) (*QuickFillResult, error) {
	date, err := internal.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	prev, err := repo.LatestDailyLogBefore(ctx, date)
	if errors.Is(err, internal.ErrNotFound) {
		empty := internal.NewDailyLog(date)
		catalog.PadDefaults(&empty)
		return &QuickFillResult{Log: &empty}, nil
	}
	if err != nil {
		return nil, err
	}
	l, err := repo.UpsertDailyLog(ctx, date, internal.VitalsPatch(prev))
	if err != nil {
		return nil, err
	}
	catalog.PadDefaults(l)
	return &QuickFillResult{Log: l, Prefilled: true, SourceDate: prev.Date}, nil
}
