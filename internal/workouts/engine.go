package workouts

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

// Source tells where an occurrence comes from.
type Source string

const (
	SourcePlan  Source = "plan"
	SourceExtra Source = "extra"
)

func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case SourcePlan, SourceExtra:
		return Source(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
	}
}

// Occurrence is one exercise instance within an effective day.
type Occurrence struct {
	Source    Source `json:"source"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	Sets      *int   `json:"sets,omitempty"`
	Reps      *int   `json:"reps,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Completed bool   `json:"completed"`
}

func newOccurrence(source Source, ex TemplateExercise, completed bool) Occurrence {
	return Occurrence{
		Source:    source,
		ID:        ex.ID,
		Name:      ex.Name,
		Category:  ex.Category,
		Sets:      copyInt(ex.Sets),
		Reps:      copyInt(ex.Reps),
		Notes:     ex.Notes,
		Completed: completed,
	}
}

// Day is an effective day together with its summary.
type Day struct {
	Date        Date         `json:"date"`
	Occurrences []Occurrence `json:"occurrences"`
	Summary     DaySummary   `json:"summary"`
}

type DaySummary struct {
	Date            Date        `json:"date"`
	Weekday         WeekdaySlot `json:"weekday"`
	Total           int         `json:"total"`
	Completed       int         `json:"completed"`
	Categories      []string    `json:"categories"`
	CompletionRatio float64     `json:"completionRatio"`
	HasAnyWorkout   bool        `json:"hasAnyWorkout"`
	FullyCompleted  bool        `json:"isFullyCompleted"`
}

// Merge resolves the effective day for date. Plan occurrences come first, then extras,
// each group in stored order. Completed keys of ids not in the plan are ignored.
func Merge(date Date, plan WeekPlan, override *OverrideRecord) []Occurrence {
	planList := plan.Exercises(date.Weekday())

	var (
		completed map[string]bool
		extras    []ExtraExercise
	)
	if override != nil {
		completed = override.Completed
		extras = override.Extras
	}

	occurrences := make([]Occurrence, 0, len(planList)+len(extras))
	for _, ex := range planList {
		occurrences = append(occurrences, newOccurrence(SourcePlan, ex, completed[ex.ID]))
	}
	for _, ex := range extras {
		occurrences = append(occurrences, newOccurrence(SourceExtra, ex.TemplateExercise, ex.Completed))
	}
	return occurrences
}

func Summarize(date Date, occurrences []Occurrence) DaySummary {
	summary := DaySummary{
		Date:       date,
		Weekday:    date.Weekday(),
		Total:      len(occurrences),
		Categories: []string{},
	}

	seen := make(map[string]bool)
	for _, occ := range occurrences {
		if occ.Completed {
			summary.Completed++
		}
		if occ.Category != "" && !seen[occ.Category] {
			seen[occ.Category] = true
			summary.Categories = append(summary.Categories, occ.Category)
		}
	}

	summary.HasAnyWorkout = summary.Total > 0
	summary.FullyCompleted = summary.HasAnyWorkout && summary.Completed == summary.Total
	if summary.Total > 0 {
		summary.CompletionRatio = float64(summary.Completed) / float64(summary.Total)
	}
	return summary
}

// Engine reads the template and the override log and merges them. It never writes.
type Engine struct {
	templates TemplateStore
	overrides OverrideLog
}

func NewEngine(templates TemplateStore, overrides OverrideLog) *Engine {
	return &Engine{
		templates: templates,
		overrides: overrides,
	}
}

func (e *Engine) EffectiveDay(ctx context.Context, date Date) (_ []Occurrence, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.engine.effectiveday")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	plan, err := e.templates.GetWeekPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get week plan: %w", err)
	}

	override, err := e.overrides.GetOverride(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("get override %s: %w", date, err)
	}

	return Merge(date, plan, override), nil
}

func (e *Engine) Day(ctx context.Context, date Date) (*Day, error) {
	occurrences, err := e.EffectiveDay(ctx, date)
	if err != nil {
		return nil, err
	}
	return &Day{
		Date:        date,
		Occurrences: occurrences,
		Summary:     Summarize(date, occurrences),
	}, nil
}

// EffectiveDays merges every date in [from, to], in date order.
// The template is read once; overrides are read in one go when the log supports ranges.
func (e *Engine) EffectiveDays(ctx context.Context, from, to Date) (_ []Day, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.engine.effectivedays")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if to.Before(from) {
		return []Day{}, nil
	}

	plan, err := e.templates.GetWeekPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get week plan: %w", err)
	}

	overrides, err := e.listOverrides(ctx, from, to)
	if err != nil {
		return nil, err
	}

	days := make([]Day, 0, from.DaysUntil(to)+1)
	for date := from; !date.After(to); date = date.AddDays(1) {
		occurrences := Merge(date, plan, overrides[date])
		days = append(days, Day{
			Date:        date,
			Occurrences: occurrences,
			Summary:     Summarize(date, occurrences),
		})
	}
	return days, nil
}

func (e *Engine) listOverrides(ctx context.Context, from, to Date) (map[Date]*OverrideRecord, error) {
	if rr, ok := e.overrides.(OverrideRangeReader); ok {
		overrides, err := rr.ListOverrides(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("list overrides %s..%s: %w", from, to, err)
		}
		return overrides, nil
	}

	log.Debugf("override log has no range reads, reading %s..%s one by one", from, to)
	overrides := make(map[Date]*OverrideRecord)
	for date := from; !date.After(to); date = date.AddDays(1) {
		record, err := e.overrides.GetOverride(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("get override %s: %w", date, err)
		}
		if record != nil {
			overrides[date] = record
		}
	}
	return overrides, nil
}
