package psql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	_ workouts.OverrideLog         = (*OverrideRepo)(nil)
	_ workouts.OverrideRangeReader = (*OverrideRepo)(nil)
)

// OverrideRepo keeps one JSONB row per date, versioned for compare-and-swap writes.
type OverrideRepo struct {
	db      dbConn
	metrics *metrics.Manager
}

// NewOverrideRepo creates the repo; metricsManager may be nil.
func NewOverrideRepo(db dbConn, metricsManager *metrics.Manager) *OverrideRepo {
	return &OverrideRepo{
		db:      db,
		metrics: metricsManager,
	}
}

func (r *OverrideRepo) GetOverride(ctx context.Context, date workouts.Date) (_ *workouts.OverrideRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.override.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date.String()))

	var (
		raw     []byte
		version int
	)
	err = r.db.QueryRow(
		ctx,
		`SELECT record, version FROM workout_override WHERE day = $1;`,
		date.Time(),
	).Scan(&raw, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return r.decode(date, raw, version), nil
}

func (r *OverrideRepo) SetOverride(ctx context.Context, date workouts.Date, record *workouts.OverrideRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.override.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if record == nil {
		return errors.New("override record is nil")
	}
	span.SetAttributes(
		attribute.String("date", date.String()),
		attribute.Int("version", record.Version),
	)

	raw, err := workouts.EncodeOverride(record)
	if err != nil {
		return fmt.Errorf("encode override: %w", err)
	}

	var affected int64
	if record.Version == 0 {
		tag, err := r.db.Exec(
			ctx,
			`INSERT INTO workout_override (day, record, version, updated_at)
				VALUES ($1, $2, 1, $3)
				ON CONFLICT (day) DO NOTHING;`,
			date.Time(), raw, time.Now().UTC(),
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
	} else {
		tag, err := r.db.Exec(
			ctx,
			`UPDATE workout_override
				SET record = $1, version = version + 1, updated_at = $2
				WHERE day = $3 AND version = $4;`,
			raw, time.Now().UTC(), date.Time(), record.Version,
		)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
	}

	if affected == 0 {
		return workouts.ErrVersionConflict
	}

	record.Version++
	return nil
}

func (r *OverrideRepo) ListOverrides(ctx context.Context, from, to workouts.Date) (_ map[workouts.Date]*workouts.OverrideRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.override.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	)

	query, args, err := psq.
		Select("day", "record", "version").
		From("workout_override").
		Where(sq.GtOrEq{"day": from.Time()}).
		Where(sq.LtOrEq{"day": to.Time()}).
		OrderBy("day").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	overrides := map[workouts.Date]*workouts.OverrideRecord{}
	for rows.Next() {
		var (
			day     time.Time
			raw     []byte
			version int
		)
		if err := rows.Scan(&day, &raw, &version); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		date := workouts.DateOf(day)
		overrides[date] = r.decode(date, raw, version)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("overrides.count", len(overrides)))

	return overrides, nil
}

// decode degrades a broken row to an empty record, so the day still renders from the template.
func (r *OverrideRepo) decode(date workouts.Date, raw []byte, version int) *workouts.OverrideRecord {
	record, err := workouts.DecodeOverrideOrEmpty(raw, version)
	if err != nil {
		log.Warnf("override %s: %s", date, err)
		if r.metrics != nil {
			r.metrics.CounterMalformedOverrides.Inc()
		}
	}
	return record
}
