package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/fitforge/internal/overload"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("Query workout sessions in a time range. Returns session summaries with status, duration, total volume, and every logged set (exercise, weight, reps, RPE)."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetPersonalRecord = mcp.NewTool("get_personal_record",
	mcp.WithDescription("Get the personal record (best weight x reps set) for an exercise, recomputed from completed session history."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise ID (e.g. barbell_bench_press, squat, deadlift)")),
)

var toolGetVolumeTrend = mcp.NewTool("get_volume_trend",
	mcp.WithDescription("Daily training volume (sum of weight x reps) for a trailing window. Days without training are explicit zero entries, so rest gaps are visible."),
	mcp.WithNumber("days", mcp.Description("Window length in days. Defaults to 30.")),
)

var toolGetRecoveryState = mcp.NewTool("get_recovery_state",
	mcp.WithDescription("Estimated recovery percentage per muscle based on time since it was last trained, scaled by session intensity (RPE). Heuristic guidance, not a physiological measurement."),
)

var toolGetRecommendation = mcp.NewTool("get_recommendation",
	mcp.WithDescription("Progressive overload recommendation for an exercise: next session's target weight, reps, and sets based on the most recent completed session. Never recommends a weight reduction."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise ID")),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Aggregate statistics: session counts by status, total sets and tonnage, most trained exercises."),
)

// --- Tool handlers ---

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	sessions, err := h.ds.QuerySessions(ctx, start, end, uid)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	record, err := h.ds.PersonalRecord(ctx, uid, exercise)
	if err != nil {
		h.log.Error("mcp get_personal_record", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(record)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getVolumeTrend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	days := req.GetInt("days", 30)
	if days < 1 {
		return mcp.NewToolResultError("days must be positive"), nil
	}

	uid := UserIDFromContext(ctx)
	trend, err := h.ds.VolumeTrend(ctx, uid, days)
	if err != nil {
		h.log.Error("mcp get_volume_trend", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(trend)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecoveryState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	states, err := h.ds.RecoveryState(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_recovery_state", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(states)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getRecommendation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	rec, err := h.ds.Recommend(ctx, uid, exercise)
	if errors.Is(err, overload.ErrNoHistory) {
		return mcp.NewToolResultError("no completed history for this exercise; ask the user for a starting weight instead of guessing one"), nil
	}
	if err != nil {
		h.log.Error("mcp get_recommendation", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rec)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDataStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	stats, err := h.ds.GetDataStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
