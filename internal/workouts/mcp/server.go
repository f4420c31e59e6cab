package mcp

import (
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server exposing read-only workout tools.
// Mounted on the backend at /mcp and also served over stdio by cmd/fittrack_mcp.
func NewServer(tracker trackerReader, loc *time.Location) *mcp.Server {
	h := NewHandler(tracker, loc)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "fittrack",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_effective_day",
		Description: "Returns the effective workout day for a date: the weekly plan for that weekday merged with the day's overrides (completions and extra exercises), plus a summary. Arg: date (YYYY-MM-DD).",
	}, h.GetEffectiveDayTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_streak",
		Description: "Returns the number of consecutive days, ending at today, that have at least one planned or extra exercise. Optional arg: today (YYYY-MM-DD).",
	}, h.GetStreakTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_weekly_histogram",
		Description: "Returns planned and completed exercise counts per day for the Monday-Sunday week containing the anchor date. Optional arg: anchor (YYYY-MM-DD).",
	}, h.GetWeeklyHistogramTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_month_summary",
		Description: "Returns one summary per day of a month: total and completed exercises, categories, completion ratio. Args: year, month (1-12).",
	}, h.GetMonthSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_week_plan",
		Description: "Returns the weekly workout template: the ordered exercises planned for each weekday.",
	}, h.GetWeekPlanTool())

	return s
}

// NewHTTPHandler serves the MCP server over streamable HTTP.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
