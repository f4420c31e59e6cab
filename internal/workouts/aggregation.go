package workouts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

const (
	DefaultStreakCap = 366
	streakWindowDays = 31
	restDayTitle     = "Rest Day"
)

// Aggregator derives streaks, histograms and summaries from effective days.
type Aggregator struct {
	engine    *Engine
	streakCap int
}

func NewAggregator(engine *Engine, streakCap int) *Aggregator {
	if streakCap <= 0 {
		streakCap = DefaultStreakCap
	}
	return &Aggregator{
		engine:    engine,
		streakCap: streakCap,
	}
}

// Streak counts consecutive days ending at today that have at least one occurrence,
// completed or not. The walk stops at the first empty day or after streakCap days.
func (a *Aggregator) Streak(ctx context.Context, today Date) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.aggregator.streak")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	streak := 0
	windowEnd := today
	for streak < a.streakCap {
		size := min(streakWindowDays, a.streakCap-streak)
		windowStart := windowEnd.AddDays(-(size - 1))

		days, err := a.engine.EffectiveDays(ctx, windowStart, windowEnd)
		if err != nil {
			return 0, fmt.Errorf("streak window %s..%s: %w", windowStart, windowEnd, err)
		}

		for i := len(days) - 1; i >= 0; i-- {
			if !days[i].Summary.HasAnyWorkout {
				return streak, nil
			}
			streak++
		}
		windowEnd = windowStart.AddDays(-1)
	}

	return streak, nil
}

// WeeklyCounts counts occurrences per weekday for the Monday..Sunday week containing anchor.
// Every weekday is present in the result.
func (a *Aggregator) WeeklyCounts(ctx context.Context, anchor Date) (map[WeekdaySlot]int, error) {
	histogram, err := a.WeeklyHistogram(ctx, anchor)
	if err != nil {
		return nil, err
	}

	counts := make(map[WeekdaySlot]int, len(Weekdays))
	for _, bucket := range histogram.Buckets {
		counts[bucket.Weekday] = bucket.Planned
	}
	return counts, nil
}

type WeeklyBucket struct {
	Weekday   WeekdaySlot `json:"weekday"`
	Date      Date        `json:"date"`
	Planned   int         `json:"planned"`
	Completed int         `json:"completed"`
}

type WeeklyHistogram struct {
	WeekStart Date           `json:"weekStart"`
	WeekEnd   Date           `json:"weekEnd"`
	Buckets   []WeeklyBucket `json:"buckets"`
}

// WeeklyHistogram returns planned and completed counts for each day of the ISO week of anchor,
// buckets ordered Monday first.
func (a *Aggregator) WeeklyHistogram(ctx context.Context, anchor Date) (_ *WeeklyHistogram, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.aggregator.weekly")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	start := WeekStart(anchor)
	end := start.AddDays(6)
	days, err := a.engine.EffectiveDays(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("week %s..%s: %w", start, end, err)
	}

	histogram := &WeeklyHistogram{
		WeekStart: start,
		WeekEnd:   end,
		Buckets:   make([]WeeklyBucket, 0, len(days)),
	}
	for _, day := range days {
		histogram.Buckets = append(histogram.Buckets, WeeklyBucket{
			Weekday:   day.Date.Weekday(),
			Date:      day.Date,
			Planned:   day.Summary.Total,
			Completed: day.Summary.Completed,
		})
	}
	return histogram, nil
}

// MonthSummaries returns one summary per day of the month, in date order.
func (a *Aggregator) MonthSummaries(ctx context.Context, year int, month time.Month) (_ []DaySummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.aggregator.month")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}

	first := NewDate(year, month, 1)
	last := NewDate(year, month, DaysInMonth(year, month))
	days, err := a.engine.EffectiveDays(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("month %d-%02d: %w", year, month, err)
	}

	summaries := make([]DaySummary, 0, len(days))
	for _, day := range days {
		summaries = append(summaries, day.Summary)
	}
	return summaries, nil
}

// TodayCard is the dashboard view of a single date.
type TodayCard struct {
	Date     Date        `json:"date"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	NextUp   *Occurrence `json:"nextUp,omitempty"`
	Summary  DaySummary  `json:"summary"`
}

func (a *Aggregator) TodayCard(ctx context.Context, today Date) (_ *TodayCard, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "workouts.aggregator.today")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	day, err := a.engine.Day(ctx, today)
	if err != nil {
		return nil, err
	}
	return buildTodayCard(day), nil
}

func buildTodayCard(day *Day) *TodayCard {
	card := &TodayCard{
		Date:     day.Date,
		Subtitle: strings.Join(day.Summary.Categories, ", "),
		Summary:  day.Summary,
	}

	switch len(day.Occurrences) {
	case 0:
		card.Title = restDayTitle
		return card
	case 1:
		card.Title = day.Occurrences[0].Name
	default:
		card.Title = fmt.Sprintf("%d Workouts Planned", len(day.Occurrences))
	}

	next := day.Occurrences[0]
	for _, occ := range day.Occurrences {
		if !occ.Completed {
			next = occ
			break
		}
	}
	card.NextUp = &next
	return card
}
