package workouts

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
)

// PlanService edits the weekly template. Overrides are never touched: removing an exercise
// leaves historical completion keys in place, and the merge ignores them.
type PlanService struct {
	repo  TemplateRepository
	newID func() string
	now   func() time.Time
}

func NewPlanService(repo TemplateRepository) *PlanService {
	return &PlanService{
		repo:  repo,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

func (s *PlanService) WeekPlan(ctx context.Context) (WeekPlan, error) {
	plan, err := s.repo.GetWeekPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get week plan: %w", err)
	}
	// all seven keys, even for stores that omit empty days
	return plan.Clone(), nil
}

func (s *PlanService) Add(ctx context.Context, slot WeekdaySlot, input ExerciseInput) (_ *TemplateExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.plan.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !slot.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, slot)
	}
	input, err = input.Normalize()
	if err != nil {
		return nil, err
	}

	exercise := input.apply(TemplateExercise{
		ID:        s.newID(),
		CreatedAt: s.now().UTC().Truncate(time.Second),
	})
	if err := s.repo.AddExercise(ctx, slot, exercise); err != nil {
		return nil, fmt.Errorf("add exercise to %s: %w", slot, err)
	}
	return &exercise, nil
}

func (s *PlanService) Update(ctx context.Context, slot WeekdaySlot, id string, input ExerciseInput) (_ *TemplateExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.plan.update")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !slot.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, slot)
	}
	input, err = input.Normalize()
	if err != nil {
		return nil, err
	}

	plan, err := s.repo.GetWeekPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("get week plan: %w", err)
	}

	for _, ex := range plan.Exercises(slot) {
		if ex.ID != id {
			continue
		}
		updated := input.apply(ex)
		if err := s.repo.UpdateExercise(ctx, slot, updated); err != nil {
			return nil, fmt.Errorf("update exercise %s on %s: %w", id, slot, err)
		}
		return &updated, nil
	}
	return nil, ErrExerciseNotFound
}

func (s *PlanService) Remove(ctx context.Context, slot WeekdaySlot, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.plan.remove")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !slot.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidWeekday, slot)
	}
	if err := s.repo.RemoveExercise(ctx, slot, id); err != nil {
		return fmt.Errorf("remove exercise %s from %s: %w", id, slot, err)
	}
	return nil
}
