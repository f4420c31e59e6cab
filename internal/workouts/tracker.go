package workouts

import (
	"context"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
)

// Tracker is the single entry point used by the transports.
// It publishes a change notification after every successful mutation.
type Tracker struct {
	plan       *PlanService
	completion *CompletionService
	aggregator *Aggregator
	engine     *Engine
	notifier   ChangeNotifier
	metrics    *metrics.Manager
}

type NewTrackerParams struct {
	Templates TemplateRepository
	Overrides OverrideLog
	StreakCap int
	// optional
	Notifier ChangeNotifier
	Metrics  *metrics.Manager
}

func NewTracker(params NewTrackerParams) *Tracker {
	engine := NewEngine(params.Templates, params.Overrides)

	notifier := params.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &Tracker{
		plan:       NewPlanService(params.Templates),
		completion: NewCompletionService(params.Templates, params.Overrides),
		aggregator: NewAggregator(engine, params.StreakCap),
		engine:     engine,
		notifier:   notifier,
		metrics:    params.Metrics,
	}
}

func (t *Tracker) WeekPlan(ctx context.Context) (WeekPlan, error) {
	return t.plan.WeekPlan(ctx)
}

func (t *Tracker) AddPlanExercise(ctx context.Context, slot WeekdaySlot, input ExerciseInput) (*TemplateExercise, error) {
	ex, err := t.plan.Add(ctx, slot, input)
	if err != nil {
		return nil, err
	}
	t.planChanged(slot, "add")
	return ex, nil
}

func (t *Tracker) UpdatePlanExercise(ctx context.Context, slot WeekdaySlot, id string, input ExerciseInput) (*TemplateExercise, error) {
	ex, err := t.plan.Update(ctx, slot, id, input)
	if err != nil {
		return nil, err
	}
	t.planChanged(slot, "update")
	return ex, nil
}

func (t *Tracker) RemovePlanExercise(ctx context.Context, slot WeekdaySlot, id string) error {
	if err := t.plan.Remove(ctx, slot, id); err != nil {
		return err
	}
	t.planChanged(slot, "remove")
	return nil
}

func (t *Tracker) Day(ctx context.Context, date Date) (*Day, error) {
	return t.engine.Day(ctx, date)
}

func (t *Tracker) Toggle(ctx context.Context, date Date, source Source, id string) (*Occurrence, error) {
	occ, err := t.completion.Toggle(ctx, date, source, id)
	if err != nil {
		t.countToggle(source, "error")
		return nil, err
	}
	if occ == nil {
		t.countToggle(source, "noop")
		return nil, nil
	}
	t.countToggle(source, "ok")
	t.notifier.DayChanged(date)
	return occ, nil
}

func (t *Tracker) AddExtra(ctx context.Context, date Date, input ExerciseInput) (*ExtraExercise, error) {
	extra, err := t.completion.AddExtra(ctx, date, input)
	if err != nil {
		return nil, err
	}
	if t.metrics != nil {
		t.metrics.CounterExtrasAdded.Inc()
	}
	t.notifier.DayChanged(date)
	return extra, nil
}

func (t *Tracker) RemoveExtra(ctx context.Context, date Date, id string) (bool, error) {
	removed, err := t.completion.RemoveExtra(ctx, date, id)
	if err != nil {
		return false, err
	}
	if removed {
		t.notifier.DayChanged(date)
	}
	return removed, nil
}

func (t *Tracker) Month(ctx context.Context, year int, month time.Month) ([]DaySummary, error) {
	return t.aggregator.MonthSummaries(ctx, year, month)
}

func (t *Tracker) TodayCard(ctx context.Context, today Date) (*TodayCard, error) {
	return t.aggregator.TodayCard(ctx, today)
}

func (t *Tracker) Streak(ctx context.Context, today Date) (int, error) {
	streak, err := t.aggregator.Streak(ctx, today)
	if err != nil {
		return 0, err
	}
	if t.metrics != nil {
		t.metrics.GaugeCurrentStreak.Set(float64(streak))
	}
	return streak, nil
}

func (t *Tracker) WeeklyCounts(ctx context.Context, anchor Date) (map[WeekdaySlot]int, error) {
	return t.aggregator.WeeklyCounts(ctx, anchor)
}

func (t *Tracker) WeeklyHistogram(ctx context.Context, anchor Date) (*WeeklyHistogram, error) {
	return t.aggregator.WeeklyHistogram(ctx, anchor)
}

func (t *Tracker) planChanged(slot WeekdaySlot, op string) {
	if t.metrics != nil {
		t.metrics.CounterPlanEdits.WithLabelValues(op).Inc()
	}
	t.notifier.PlanChanged(slot)
}

func (t *Tracker) countToggle(source Source, result string) {
	if t.metrics != nil {
		t.metrics.CounterToggles.WithLabelValues(string(source), result).Inc()
	}
}

type nopNotifier struct{}

func (nopNotifier) DayChanged(Date)        {}
func (nopNotifier) PlanChanged(WeekdaySlot) {}
