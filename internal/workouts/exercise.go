package workouts

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrInvalidExercise  = errors.New("invalid exercise")
	ErrInvalidSource    = errors.New("invalid occurrence source")
	ErrVersionConflict  = errors.New("override version conflict")
)

type TemplateExercise struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Sets      *int      `json:"sets,omitempty"`
	Reps      *int      `json:"reps,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExtraExercise is a one-off exercise recorded for a single date.
// Unlike plan exercises, it carries its own completion flag.
type ExtraExercise struct {
	TemplateExercise
	Completed bool `json:"completed"`
}

// WeekPlan maps a weekday slot to its ordered exercises. A missing slot means no exercises.
type WeekPlan map[WeekdaySlot][]TemplateExercise

func (p WeekPlan) Exercises(slot WeekdaySlot) []TemplateExercise {
	if p == nil {
		return nil
	}
	return p[slot]
}

// Clone returns a deep copy with every weekday key present.
func (p WeekPlan) Clone() WeekPlan {
	c := make(WeekPlan, len(Weekdays))
	for _, slot := range Weekdays {
		list := p.Exercises(slot)
		cp := make([]TemplateExercise, 0, len(list))
		for _, ex := range list {
			cp = append(cp, ex.clone())
		}
		c[slot] = cp
	}
	return c
}

// OverrideRecord holds the per-date exceptions layered on top of the template.
// Version is the optimistic concurrency stamp: 0 means the record was never stored.
type OverrideRecord struct {
	Completed map[string]bool `json:"completed"`
	Extras    []ExtraExercise `json:"extras"`
	Version   int             `json:"version"`
}

func NewOverrideRecord() *OverrideRecord {
	return &OverrideRecord{
		Completed: map[string]bool{},
		Extras:    []ExtraExercise{},
	}
}

func (r *OverrideRecord) Clone() *OverrideRecord {
	if r == nil {
		return nil
	}
	c := &OverrideRecord{
		Completed: make(map[string]bool, len(r.Completed)),
		Extras:    make([]ExtraExercise, 0, len(r.Extras)),
		Version:   r.Version,
	}
	for id, done := range r.Completed {
		c.Completed[id] = done
	}
	for _, ex := range r.Extras {
		ex.TemplateExercise = ex.TemplateExercise.clone()
		c.Extras = append(c.Extras, ex)
	}
	return c
}

func (r *OverrideRecord) extraIndex(id string) int {
	for i, ex := range r.Extras {
		if ex.ID == id {
			return i
		}
	}
	return -1
}

// ExerciseInput is the user-editable part of an exercise.
type ExerciseInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Sets     *int   `json:"sets,omitempty"`
	Reps     *int   `json:"reps,omitempty"`
	Notes    string `json:"notes"`
}

// Normalize trims the text fields and validates the input.
func (in ExerciseInput) Normalize() (ExerciseInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Notes = strings.TrimSpace(in.Notes)

	if in.Name == "" {
		return in, fmt.Errorf("%w: name empty", ErrInvalidExercise)
	}
	if in.Sets != nil && *in.Sets <= 0 {
		return in, fmt.Errorf("%w: sets must be positive", ErrInvalidExercise)
	}
	if in.Reps != nil && *in.Reps <= 0 {
		return in, fmt.Errorf("%w: reps must be positive", ErrInvalidExercise)
	}
	return in, nil
}

func (in ExerciseInput) apply(ex TemplateExercise) TemplateExercise {
	ex.Name = in.Name
	ex.Category = in.Category
	ex.Sets = copyInt(in.Sets)
	ex.Reps = copyInt(in.Reps)
	ex.Notes = in.Notes
	return ex
}

func (ex TemplateExercise) clone() TemplateExercise {
	ex.Sets = copyInt(ex.Sets)
	ex.Reps = copyInt(ex.Reps)
	return ex
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
