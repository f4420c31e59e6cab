package psql

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"

	sq "github.com/Masterminds/squirrel"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var psq = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var _ workouts.TemplateRepository = (*TemplateRepo)(nil)

type TemplateRepo struct {
	db dbConn
}

func NewTemplateRepo(db dbConn) *TemplateRepo {
	return &TemplateRepo{
		db: db,
	}
}

func (r *TemplateRepo) GetWeekPlan(ctx context.Context) (_ workouts.WeekPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.template.get_week_plan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT weekday, id, name, category, sets, reps, notes, created_at
			FROM workout_template_exercise
			ORDER BY weekday, position;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plan := workouts.WeekPlan{}
	for rows.Next() {
		var (
			weekday   string
			id        string
			name      string
			category  string
			sets      *int
			reps      *int
			notes     string
			createdAt time.Time
		)
		if err := rows.Scan(&weekday, &id, &name, &category, &sets, &reps, &notes, &createdAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}

		slot, err := workouts.ParseWeekdaySlot(weekday)
		if err != nil {
			log.Warnf("template exercise %s has unknown weekday %q, skipping", id, weekday)
			continue
		}

		plan[slot] = append(plan[slot], workouts.TemplateExercise{
			ID:        id,
			Name:      name,
			Category:  category,
			Sets:      sets,
			Reps:      reps,
			Notes:     notes,
			CreatedAt: createdAt,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("plan.slots", len(plan)))

	return plan.Clone(), nil
}

// AddExercise appends the exercise at the end of the weekday list.
func (r *TemplateRepo) AddExercise(ctx context.Context, slot workouts.WeekdaySlot, exercise workouts.TemplateExercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.template.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("weekday", slot.String()), attribute.String("id", exercise.ID))

	if !slot.IsValid() {
		return fmt.Errorf("%w: %q", workouts.ErrInvalidWeekday, slot)
	}

	query, args, err := psq.
		Insert("workout_template_exercise").
		Columns("weekday", "id", "position", "name", "category", "sets", "reps", "notes", "created_at").
		Values(
			slot.String(),
			exercise.ID,
			sq.Expr("(SELECT COALESCE(MAX(position), 0) + 1 FROM workout_template_exercise WHERE weekday = ?)", slot.String()),
			exercise.Name,
			exercise.Category,
			exercise.Sets,
			exercise.Reps,
			exercise.Notes,
			exercise.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return fmt.Errorf("%w: duplicate id %s", workouts.ErrInvalidExercise, exercise.ID)
		}
		return err
	}

	return nil
}

func (r *TemplateRepo) UpdateExercise(ctx context.Context, slot workouts.WeekdaySlot, exercise workouts.TemplateExercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.template.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("weekday", slot.String()), attribute.String("id", exercise.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workout_template_exercise
			SET name = $1, category = $2, sets = $3, reps = $4, notes = $5
			WHERE weekday = $6 AND id = $7;`,
		exercise.Name, exercise.Category, exercise.Sets, exercise.Reps, exercise.Notes, slot.String(), exercise.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return workouts.ErrExerciseNotFound
	}

	return nil
}

func (r *TemplateRepo) RemoveExercise(ctx context.Context, slot workouts.WeekdaySlot, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.template.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("weekday", slot.String()), attribute.String("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workout_template_exercise WHERE weekday = $1 AND id = $2;`,
		slot.String(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return workouts.ErrExerciseNotFound
	}
	return nil
}
