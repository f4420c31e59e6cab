package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	overrideKeyPrefix = "fittrack:override:"
	daysIndexKey      = "fittrack:override:days"

	fieldRecord  = "record"
	fieldVersion = "version"
)

// setOverrideScript writes the record only if the stored version still equals ARGV[1],
// and indexes the day in the sorted set. Returns 1 on success and 0 on a version mismatch.
// A missing or non-numeric stored version counts as 0, the same as decode.
const setOverrideScript = `
local current = redis.call('HGET', KEYS[1], 'version')
if not current or not tonumber(current) then
	current = '0'
end
if current ~= ARGV[1] then
	return 0
end
redis.call('HSET', KEYS[1], 'record', ARGV[2], 'version', ARGV[3])
redis.call('ZADD', KEYS[2], ARGV[4], ARGV[5])
return 1
`

var (
	_ workouts.OverrideLog         = (*OverrideLog)(nil)
	_ workouts.OverrideRangeReader = (*OverrideLog)(nil)
)

// OverrideLog keeps each date's record in a hash and indexes the dates in a sorted set
// scored by yyyymmdd, so a date range is a single ZRANGEBYSCORE.
type OverrideLog struct {
	rdb     redis.Cmdable
	metrics *metrics.Manager
}

func NewOverrideLog(rdb redis.Cmdable, metricsManager *metrics.Manager) *OverrideLog {
	return &OverrideLog{
		rdb:     rdb,
		metrics: metricsManager,
	}
}

func overrideKey(date workouts.Date) string {
	return overrideKeyPrefix + date.String()
}

func dateScore(date workouts.Date) int {
	return date.Year*10000 + int(date.Month)*100 + date.Day
}

func (l *OverrideLog) GetOverride(ctx context.Context, date workouts.Date) (_ *workouts.OverrideRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.override.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("date", date.String()))

	fields, err := l.rdb.HGetAll(ctx, overrideKey(date)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	return l.decode(date, fields), nil
}

func (l *OverrideLog) SetOverride(ctx context.Context, date workouts.Date, record *workouts.OverrideRecord) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.override.set")
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

	res, err := l.rdb.Eval(
		ctx,
		setOverrideScript,
		[]string{overrideKey(date), daysIndexKey},
		strconv.Itoa(record.Version),
		string(raw),
		strconv.Itoa(record.Version+1),
		strconv.Itoa(dateScore(date)),
		date.String(),
	).Int()
	if err != nil {
		return err
	}
	if res == 0 {
		return workouts.ErrVersionConflict
	}

	record.Version++
	return nil
}

func (l *OverrideLog) ListOverrides(ctx context.Context, from, to workouts.Date) (_ map[workouts.Date]*workouts.OverrideRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.override.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("from", from.String()),
		attribute.String("to", to.String()),
	)

	members, err := l.rdb.ZRangeByScore(ctx, daysIndexKey, &redis.ZRangeBy{
		Min: strconv.Itoa(dateScore(from)),
		Max: strconv.Itoa(dateScore(to)),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range days index: %w", err)
	}

	overrides := make(map[workouts.Date]*workouts.OverrideRecord, len(members))
	for _, member := range members {
		date, err := workouts.ParseDate(member)
		if err != nil {
			log.Warnf("override days index has invalid member %q, skipping", member)
			continue
		}

		fields, err := l.rdb.HGetAll(ctx, overrideKey(date)).Result()
		if err != nil {
			return nil, fmt.Errorf("get override %s: %w", date, err)
		}
		if len(fields) == 0 {
			// indexed, but the hash is gone
			continue
		}
		overrides[date] = l.decode(date, fields)
	}

	span.SetAttributes(attribute.Int("overrides.count", len(overrides)))

	return overrides, nil
}

func (l *OverrideLog) decode(date workouts.Date, fields map[string]string) *workouts.OverrideRecord {
	version, err := strconv.Atoi(fields[fieldVersion])
	if err != nil {
		log.Warnf("override %s: invalid version %q", date, fields[fieldVersion])
		version = 0
	}

	record, err := workouts.DecodeOverrideOrEmpty([]byte(fields[fieldRecord]), version)
	if err != nil {
		log.Warnf("override %s: %s", date, err)
		if l.metrics != nil {
			l.metrics.CounterMalformedOverrides.Inc()
		}
	}
	return record
}
