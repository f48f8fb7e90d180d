// Package catalog holds the fixed list of exercises a daily log can record.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/yourname/rehabtracker/internal"
	"gopkg.in/yaml.v3"
)

//go:embed exercises.yaml
var exercisesYAML []byte

type Category string

const (
	Warmup     Category = "warmup"
	Strength   Category = "strength"
	Bodyweight Category = "bodyweight"
	Cooldown   Category = "cooldown"
)

type Exercise struct {
	ID            internal.ExerciseID `yaml:"id" json:"id"`
	Name          string              `yaml:"name" json:"name"`
	Category      Category            `yaml:"category" json:"category"`
	Prescription  string              `yaml:"prescription" json:"prescription"`
	WeightOptions []string            `yaml:"weight_options" json:"weight_options,omitempty"`
}

var (
	exercises []Exercise
	byID      map[internal.ExerciseID]Exercise
)

func init() {
	list, err := parse(exercisesYAML)
	if err != nil {
		panic("catalog: " + err.Error())
	}
	exercises = list
	byID = make(map[internal.ExerciseID]Exercise, len(list))
	for _, e := range list {
		byID[e.ID] = e
	}
}

func parse(data []byte) ([]Exercise, error) {
	var list []Exercise
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	seen := make(map[internal.ExerciseID]bool, len(list))
	for _, e := range list {
		if e.ID == "" {
			return nil, fmt.Errorf("exercise %q has no id", e.Name)
		}
		if seen[e.ID] {
			return nil, fmt.Errorf("duplicate exercise id %q", e.ID)
		}
		switch e.Category {
		case Warmup, Strength, Bodyweight, Cooldown:
		default:
			return nil, fmt.Errorf("exercise %q has unknown category %q", e.ID, e.Category)
		}
		seen[e.ID] = true
	}
	return list, nil
}

// All returns the catalog in routine order.
func All() []Exercise {
	out := make([]Exercise, len(exercises))
	copy(out, exercises)
	return out
}

func Lookup(id internal.ExerciseID) (Exercise, bool) {
	e, ok := byID[id]
	return e, ok
}

func Has(id internal.ExerciseID) bool {
	_, ok := byID[id]
	return ok
}

// PadDefaults fills every catalog exercise missing from l with a zero entry,
// so records written before an exercise was added read like current ones.
func PadDefaults(l *internal.DailyLog) {
	if l.Exercises == nil {
		l.Exercises = make(map[internal.ExerciseID]internal.ExerciseEntry, len(exercises))
	}
	for _, e := range exercises {
		if _, ok := l.Exercises[e.ID]; !ok {
			l.Exercises[e.ID] = internal.ExerciseEntry{}
		}
	}
}
