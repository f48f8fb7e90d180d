package internal

import (
	"bytes"
	"encoding/json"
)

// Nullable is a JSON field that remembers whether it was present in the
// request body. A present null sets Set with a nil Value.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// DailyLogPatch is a partial DailyLog. Only fields that are Set are written;
// Exercises entries replace the stored entry for the same id.
type DailyLogPatch struct {
	RestingO2Sat        Nullable[int]                `json:"resting_o2_sat"`
	RestingHR           Nullable[int]                `json:"resting_hr"`
	DeviceSetting       Nullable[int]                `json:"device_setting"`
	SymptomScore        Nullable[int]                `json:"symptom_score"`
	Exercises           map[ExerciseID]ExerciseEntry `json:"exercises"`
	RowingDuration      Nullable[int]                `json:"rowing_duration"`
	RowingAvgO2         Nullable[int]                `json:"rowing_avg_o2"`
	RowingLowO2         Nullable[int]                `json:"rowing_low_o2"`
	RowingHR            Nullable[int]                `json:"rowing_hr"`
	RowingDeviceSetting Nullable[int]                `json:"rowing_device_setting"`
	RecoveryO2          Nullable[int]                `json:"recovery_o2"`
	RecoveryHR          Nullable[int]                `json:"recovery_hr"`
	Notes               Nullable[string]             `json:"notes"`
}

// Column is one scalar column a patch writes.
type Column struct {
	Name  string
	Value any
}

// Columns lists the scalar columns set by the patch in a fixed order.
// Exercises are not included; stores merge them separately.
func (p *DailyLogPatch) Columns() []Column {
	var cols []Column
	addInt := func(name string, f Nullable[int]) {
		if f.Set {
			cols = append(cols, Column{Name: name, Value: f.Value})
		}
	}
	addInt("resting_o2_sat", p.RestingO2Sat)
	addInt("resting_hr", p.RestingHR)
	addInt("device_setting", p.DeviceSetting)
	addInt("symptom_score", p.SymptomScore)
	addInt("rowing_duration", p.RowingDuration)
	addInt("rowing_avg_o2", p.RowingAvgO2)
	addInt("rowing_low_o2", p.RowingLowO2)
	addInt("rowing_hr", p.RowingHR)
	addInt("rowing_device_setting", p.RowingDeviceSetting)
	addInt("recovery_o2", p.RecoveryO2)
	addInt("recovery_hr", p.RecoveryHR)
	if p.Notes.Set {
		notes := ""
		if p.Notes.Value != nil {
			notes = *p.Notes.Value
		}
		cols = append(cols, Column{Name: "notes", Value: notes})
	}
	return cols
}

// IsEmpty reports whether the patch writes nothing.
func (p *DailyLogPatch) IsEmpty() bool {
	return len(p.Columns()) == 0 && len(p.Exercises) == 0
}

// ApplyTo merges the patch into l.
func (p *DailyLogPatch) ApplyTo(l *DailyLog) {
	setInt := func(dst **int, f Nullable[int]) {
		if !f.Set {
			return
		}
		if f.Value == nil {
			*dst = nil
			return
		}
		v := *f.Value
		*dst = &v
	}
	setInt(&l.RestingO2Sat, p.RestingO2Sat)
	setInt(&l.RestingHR, p.RestingHR)
	setInt(&l.DeviceSetting, p.DeviceSetting)
	setInt(&l.SymptomScore, p.SymptomScore)
	setInt(&l.RowingDuration, p.RowingDuration)
	setInt(&l.RowingAvgO2, p.RowingAvgO2)
	setInt(&l.RowingLowO2, p.RowingLowO2)
	setInt(&l.RowingHR, p.RowingHR)
	setInt(&l.RowingDeviceSetting, p.RowingDeviceSetting)
	setInt(&l.RecoveryO2, p.RecoveryO2)
	setInt(&l.RecoveryHR, p.RecoveryHR)
	if p.Notes.Set {
		l.Notes = ""
		if p.Notes.Value != nil {
			l.Notes = *p.Notes.Value
		}
	}
	if len(p.Exercises) > 0 && l.Exercises == nil {
		l.Exercises = make(map[ExerciseID]ExerciseEntry, len(p.Exercises))
	}
	for id, e := range p.Exercises {
		l.Exercises[id] = e
	}
}

// VitalsPatch copies the pre-exercise vitals of l into a patch.
func VitalsPatch(l *DailyLog) *DailyLogPatch {
	from := func(v *int) Nullable[int] {
		if v == nil {
			return Null[int]()
		}
		return Some(*v)
	}
	return &DailyLogPatch{
		RestingO2Sat:  from(l.RestingO2Sat),
		RestingHR:     from(l.RestingHR),
		DeviceSetting: from(l.DeviceSetting),
		SymptomScore:  from(l.SymptomScore),
	}
}
