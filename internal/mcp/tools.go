package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	return timeRange(startStr, endStr, 7)
}

func timeRange(startStr, endStr string, days int) (time.Time, time.Time, error) {
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
		start = end.AddDate(0, 0, -days)
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

var toolListPlans = mcp.NewTool("list_plans",
	mcp.WithDescription("List stored training plans, newest first. Returns plan IDs, names and the number of planned sets."),
)

var toolGetPlanOverview = mcp.NewTool("get_plan_overview",
	mcp.WithDescription("Get a plan grouped into blocks (normal sets, supersets, circuits) with the compact overview text, e.g. '1) 3x10 Squat' or '2) 3x12 SUPERSET:' followed by its exercises."),
	mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan UUID from list_plans")),
)

var toolGetSetLogs = mcp.NewTool("get_set_logs",
	mcp.WithDescription("Query sets logged in finished workout sessions. Returns exercise, set number, weight, reps and notes for each completed set."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'squat')")),
)

var toolGetExerciseHistory = mcp.NewTool("get_exercise_history",
	mcp.WithDescription("Session-by-session history of one exercise: the sets logged in each finished session, oldest first. Useful for judging progression."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match)")),
	mcp.WithString("start", mcp.Description("Start date. Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
)

var toolGetTrainingStats = mcp.NewTool("get_training_stats",
	mcp.WithDescription("Totals across all finished sessions: plans stored, sessions and sets logged, first and last log time, and the most logged exercises."),
)

// --- Tool handlers ---

func (h *handlers) listPlans(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.ListPlans(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp list_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if plans == nil {
		plans = []models.PlanRow{}
	}

	result, err := mcp.NewToolResultJSON(plans)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPlanOverview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("plan_id")
	if err != nil {
		return mcp.NewToolResultError("plan_id parameter is required"), nil
	}
	planID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid plan_id: " + err.Error()), nil
	}

	p, rows, err := h.ds.GetPlan(ctx, planID, UserIDFromContext(ctx))
	if errors.Is(err, storage.ErrPlanNotFound) {
		return mcp.NewToolResultError("plan not found"), nil
	}
	if err != nil {
		h.log.Error("mcp get_plan_overview", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(models.NewPlanOverview(*p, rows))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSetLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	exerciseFilter := req.GetString("exercise", "")

	logs, err := h.ds.QuerySetLogs(ctx, start, end, uid, exerciseFilter)
	if err != nil {
		h.log.Error("mcp get_set_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if logs == nil {
		logs = []models.SetLogRow{}
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// sessionSets is one finished session's sets of a single exercise.
type sessionSets struct {
	SessionID uuid.UUID          `json:"session_id"`
	LoggedAt  time.Time          `json:"logged_at"`
	Exercise  string             `json:"exercise"`
	Sets      []models.SetLogRow `json:"sets"`
}

func (h *handlers) getExerciseHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	start, end, err := timeRange(req.GetString("start", ""), req.GetString("end", ""), 90)
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	logs, err := h.ds.QuerySetLogs(ctx, start, end, UserIDFromContext(ctx), exercise)
	if err != nil {
		h.log.Error("mcp get_exercise_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(groupBySession(logs))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// groupBySession splits set logs per session and exercise, keeping the
// order the sessions first appear in. Rows arrive newest first, so the
// result is reversed to read oldest first.
func groupBySession(logs []models.SetLogRow) []sessionSets {
	type key struct {
		session  uuid.UUID
		exercise string
	}
	out := []sessionSets{}
	index := map[key]int{}
	for _, l := range logs {
		k := key{l.SessionID, l.ExerciseName}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, sessionSets{SessionID: l.SessionID, LoggedAt: l.LoggedAt, Exercise: l.ExerciseName})
		}
		out[i].Sets = append(out[i].Sets, l)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (h *handlers) getTrainingStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_training_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
