package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const maxUpdateAttempts = 5

// errNoChange aborts an update without writing anything.
var errNoChange = errors.New("no change")

// CompletionService mutates the override log, one date at a time.
// The template is only read, to check that plan ids exist for the date's weekday.
type CompletionService struct {
	templates TemplateStore
	overrides OverrideLog
	newID     func() string
	now       func() time.Time
}

func NewCompletionService(templates TemplateStore, overrides OverrideLog) *CompletionService {
	return &CompletionService{
		templates: templates,
		overrides: overrides,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Toggle flips the completion state of one occurrence on date and returns it.
// Unknown ids are a no-op: nil is returned and nothing is written.
func (s *CompletionService) Toggle(ctx context.Context, date Date, source Source, id string) (_ *Occurrence, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.completion.toggle")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if _, err := ParseSource(string(source)); err != nil {
		return nil, err
	}

	var plan WeekPlan
	if source == SourcePlan {
		if plan, err = s.templates.GetWeekPlan(ctx); err != nil {
			return nil, fmt.Errorf("get week plan: %w", err)
		}
		if !planHas(plan.Exercises(date.Weekday()), id) {
			log.Debugf("toggle %s: plan id %s not scheduled on %s, ignoring", date, id, date.Weekday())
			return nil, nil
		}
	}

	record, err := s.update(ctx, date, func(record *OverrideRecord) error {
		switch source {
		case SourcePlan:
			record.Completed[id] = !record.Completed[id]
		case SourceExtra:
			i := record.extraIndex(id)
			if i < 0 {
				return errNoChange
			}
			record.Extras[i].Completed = !record.Extras[i].Completed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if record == nil {
		log.Debugf("toggle %s: extra %s not found, ignoring", date, id)
		return nil, nil
	}

	for _, occ := range Merge(date, plan, record) {
		if occ.Source == source && occ.ID == id {
			return &occ, nil
		}
	}
	return nil, nil
}

// AddExtra records a one-off exercise for date, creating the override record if needed.
func (s *CompletionService) AddExtra(ctx context.Context, date Date, input ExerciseInput) (_ *ExtraExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.completion.addextra")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	input, err = input.Normalize()
	if err != nil {
		return nil, err
	}

	extra := ExtraExercise{
		TemplateExercise: input.apply(TemplateExercise{
			ID:        s.newID(),
			CreatedAt: s.now().UTC().Truncate(time.Second),
		}),
	}

	if _, err := s.update(ctx, date, func(record *OverrideRecord) error {
		if record.extraIndex(extra.ID) >= 0 {
			return fmt.Errorf("%w: duplicate extra id %s", ErrInvalidExercise, extra.ID)
		}
		record.Extras = append(record.Extras, extra)
		return nil
	}); err != nil {
		return nil, err
	}

	return &extra, nil
}

// RemoveExtra drops an extra from date. It reports whether anything was removed.
func (s *CompletionService) RemoveExtra(ctx context.Context, date Date, id string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.completion.removeextra")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	record, err := s.update(ctx, date, func(record *OverrideRecord) error {
		i := record.extraIndex(id)
		if i < 0 {
			return errNoChange
		}
		record.Extras = append(record.Extras[:i], record.Extras[i+1:]...)
		return nil
	})
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

// update runs a read-modify-write on the record of date, retrying on version conflicts.
// A nil record with nil error means mutate reported errNoChange.
func (s *CompletionService) update(ctx context.Context, date Date, mutate func(*OverrideRecord) error) (*OverrideRecord, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		record, err := s.overrides.GetOverride(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("get override %s: %w", date, err)
		}
		if record == nil {
			record = NewOverrideRecord()
		}
		if record.Completed == nil {
			record.Completed = map[string]bool{}
		}

		if err := mutate(record); err != nil {
			if errors.Is(err, errNoChange) {
				return nil, nil
			}
			return nil, err
		}

		err = s.overrides.SetOverride(ctx, date, record)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, fmt.Errorf("set override %s: %w", date, err)
		}
		log.Warnf("override %s: version conflict, attempt %d/%d", date, attempt, maxUpdateAttempts)
	}
	return nil, fmt.Errorf("override %s: %w", date, ErrVersionConflict)
}

func planHas(list []TemplateExercise, id string) bool {
	for _, ex := range list {
		if ex.ID == id {
			return true
		}
	}
	return false
}
