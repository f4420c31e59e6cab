package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/2beens/fittrack/internal/workouts"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// trackerReader is the read-only part of the tracker the tools need.
type trackerReader interface {
	WeekPlan(ctx context.Context) (workouts.WeekPlan, error)
	Day(ctx context.Context, date workouts.Date) (*workouts.Day, error)
	Month(ctx context.Context, year int, month time.Month) ([]workouts.DaySummary, error)
	Streak(ctx context.Context, today workouts.Date) (int, error)
	WeeklyHistogram(ctx context.Context, anchor workouts.Date) (*workouts.WeeklyHistogram, error)
}

// Handler parses tool input, calls the tracker and formats the MCP result.
type Handler struct {
	tracker trackerReader
	today   func() workouts.Date
}

// NewHandler builds a handler; dates left empty in tool input default to today in loc.
func NewHandler(tracker trackerReader, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		tracker: tracker,
		today: func() workouts.Date {
			return workouts.DateOf(time.Now().In(loc))
		},
	}
}

// DayInput is the input for get_effective_day.
type DayInput struct {
	Date string `json:"date" jsonschema:"Date (YYYY-MM-DD)"`
}

func (h *Handler) GetEffectiveDayTool() func(context.Context, *mcp.CallToolRequest, DayInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DayInput) (*mcp.CallToolResult, any, error) {
		date, err := workouts.ParseDate(in.Date)
		if err != nil {
			return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
		}
		day, err := h.tracker.Day(ctx, date)
		if err != nil {
			return errorResult("Error fetching day: " + err.Error()), nil, nil
		}
		return jsonResult(day), nil, nil
	}
}

// StreakInput is the input for get_streak.
type StreakInput struct {
	Today string `json:"today,omitempty" jsonschema:"Day the streak ends at (YYYY-MM-DD), defaults to today"`
}

type streakOutput struct {
	Today  workouts.Date `json:"today"`
	Streak int           `json:"streak"`
}

func (h *Handler) GetStreakTool() func(context.Context, *mcp.CallToolRequest, StreakInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in StreakInput) (*mcp.CallToolResult, any, error) {
		today, err := h.dateOrToday(in.Today)
		if err != nil {
			return errorResult("Invalid today: use YYYY-MM-DD"), nil, nil
		}
		streak, err := h.tracker.Streak(ctx, today)
		if err != nil {
			return errorResult("Error computing streak: " + err.Error()), nil, nil
		}
		return jsonResult(streakOutput{Today: today, Streak: streak}), nil, nil
	}
}

// WeeklyInput is the input for get_weekly_histogram.
type WeeklyInput struct {
	Anchor string `json:"anchor,omitempty" jsonschema:"Any day of the wanted Monday-Sunday week (YYYY-MM-DD), defaults to today"`
}

func (h *Handler) GetWeeklyHistogramTool() func(context.Context, *mcp.CallToolRequest, WeeklyInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in WeeklyInput) (*mcp.CallToolResult, any, error) {
		anchor, err := h.dateOrToday(in.Anchor)
		if err != nil {
			return errorResult("Invalid anchor: use YYYY-MM-DD"), nil, nil
		}
		histogram, err := h.tracker.WeeklyHistogram(ctx, anchor)
		if err != nil {
			return errorResult("Error computing weekly histogram: " + err.Error()), nil, nil
		}
		return jsonResult(histogram), nil, nil
	}
}

// MonthInput is the input for get_month_summary.
type MonthInput struct {
	Year  int `json:"year" jsonschema:"Calendar year, e.g. 2024"`
	Month int `json:"month" jsonschema:"Month number, 1-12"`
}

func (h *Handler) GetMonthSummaryTool() func(context.Context, *mcp.CallToolRequest, MonthInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MonthInput) (*mcp.CallToolResult, any, error) {
		if in.Month < 1 || in.Month > 12 {
			return errorResult("Invalid month: use 1-12"), nil, nil
		}
		summaries, err := h.tracker.Month(ctx, in.Year, time.Month(in.Month))
		if err != nil {
			return errorResult("Error fetching month: " + err.Error()), nil, nil
		}
		return jsonResult(summaries), nil, nil
	}
}

func (h *Handler) GetWeekPlanTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		plan, err := h.tracker.WeekPlan(ctx)
		if err != nil {
			return errorResult("Error fetching week plan: " + err.Error()), nil, nil
		}
		return jsonResult(plan), nil, nil
	}
}

func (h *Handler) dateOrToday(raw string) (workouts.Date, error) {
	if raw == "" {
		return h.today(), nil
	}
	return workouts.ParseDate(raw)
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}
