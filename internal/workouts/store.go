package workouts

import "context"

// TemplateStore is the read side of the weekly template.
type TemplateStore interface {
	GetWeekPlan(ctx context.Context) (WeekPlan, error)
}

// TemplateRepository adds the plan-editing operations.
// Implementations must keep ids unique within a weekday and must not reorder unaffected entries.
type TemplateRepository interface {
	TemplateStore
	AddExercise(ctx context.Context, slot WeekdaySlot, exercise TemplateExercise) error
	UpdateExercise(ctx context.Context, slot WeekdaySlot, exercise TemplateExercise) error
	RemoveExercise(ctx context.Context, slot WeekdaySlot, id string) error
}

// OverrideLog stores per-date exceptions.
//
// GetOverride returns nil, nil when no record exists for the date.
// SetOverride replaces the record wholesale if record.Version matches the stored
// version (0 = not stored yet), and bumps record.Version on success.
// A mismatch is reported as ErrVersionConflict.
type OverrideLog interface {
	GetOverride(ctx context.Context, date Date) (*OverrideRecord, error)
	SetOverride(ctx context.Context, date Date, record *OverrideRecord) error
}

// OverrideRangeReader is implemented by logs that can read a date range in one go.
// The returned map holds only dates that have a record.
type OverrideRangeReader interface {
	ListOverrides(ctx context.Context, from, to Date) (map[Date]*OverrideRecord, error)
}

// ChangeNotifier is told about every successful mutation, so that views can re-request data.
type ChangeNotifier interface {
	DayChanged(date Date)
	PlanChanged(slot WeekdaySlot)
}
