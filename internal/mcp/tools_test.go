package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/workout"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

var (
	legDayID = uuid.MustParse("0b5f3c1e-7d1a-4a7b-9a8e-2f4c6d8e0a12")
	sessionA = uuid.MustParse("11111111-1111-4111-8111-111111111111")
	sessionB = uuid.MustParse("22222222-2222-4222-8222-222222222222")
)

type fakeSource struct {
	logs      []models.SetLogRow
	gotFilter string
	err       error
}

func (f *fakeSource) ListPlans(context.Context, int) ([]models.PlanRow, error) {
	return []models.PlanRow{{ID: legDayID, Name: "Leg Day", SetCount: 3}}, f.err
}

func (f *fakeSource) GetPlan(_ context.Context, planID uuid.UUID, _ int) (*models.PlanRow, []workout.ExerciseSetRow, error) {
	if planID != legDayID {
		return nil, nil, storage.ErrPlanNotFound
	}
	order := 1
	return &models.PlanRow{ID: legDayID, Name: "Leg Day"}, []workout.ExerciseSetRow{
		{ExerciseName: "Burpee", BlockType: workout.BlockCircuit, OrderIndex: &order, SetNumber: 1, Reps: "15"},
		{ExerciseName: "Swing", BlockType: workout.BlockCircuit, OrderIndex: &order, SetNumber: 1, Reps: "15"},
		{ExerciseName: "Row", BlockType: workout.BlockCircuit, OrderIndex: &order, SetNumber: 1, Reps: "15"},
	}, nil
}

func (f *fakeSource) QuerySetLogs(_ context.Context, _, _ time.Time, _ int, exerciseFilter string) ([]models.SetLogRow, error) {
	f.gotFilter = exerciseFilter
	return f.logs, f.err
}

func (f *fakeSource) GetDataStats(context.Context, int) (*storage.DataStats, error) {
	return &storage.DataStats{
		TotalPlans:    1,
		TotalSessions: 2,
		TotalSets:     5,
		TopExercises:  []storage.ExerciseStat{{Name: "Squat", Sets: 5, Sessions: 2}},
	}, f.err
}

func newHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	for _, c := range res.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in result")
	return ""
}

// TestGetPlanOverviewTool verifies the overview tool renders circuits.
func TestGetPlanOverviewTool(t *testing.T) {
	h := newHandlers(&fakeSource{})
	res, err := h.getPlanOverview(context.Background(), callRequest(map[string]any{"plan_id": legDayID.String()}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var ov models.PlanOverview
	if err := json.Unmarshal([]byte(resultText(t, res)), &ov); err != nil {
		t.Fatal(err)
	}
	want := "1) 1x15 CIRCUIT:\n    a) Burpee\n    b) Swing\n    c) Row"
	if ov.Overview != want {
		t.Errorf("overview =\n%s\nwant\n%s", ov.Overview, want)
	}
}

// TestGetPlanOverviewToolErrors verifies bad input is reported as a tool error.
func TestGetPlanOverviewToolErrors(t *testing.T) {
	h := newHandlers(&fakeSource{})
	for name, args := range map[string]map[string]any{
		"missing":   {},
		"malformed": {"plan_id": "abc"},
		"unknown":   {"plan_id": uuid.NewString()},
	} {
		res, err := h.getPlanOverview(context.Background(), callRequest(args))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !res.IsError {
			t.Errorf("%s: expected tool error", name)
		}
	}
}

// TestGetSetLogsTool verifies the exercise filter is forwarded and query
// failures become tool errors.
func TestGetSetLogsTool(t *testing.T) {
	src := &fakeSource{}
	h := newHandlers(src)
	res, err := h.getSetLogs(context.Background(), callRequest(map[string]any{"exercise": "squat"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || src.gotFilter != "squat" {
		t.Errorf("isError=%v filter=%q", res.IsError, src.gotFilter)
	}
	if got := resultText(t, res); got != "[]" {
		t.Errorf("empty result = %s, want []", got)
	}

	src.err = errors.New("db down")
	res, _ = h.getSetLogs(context.Background(), callRequest(nil))
	if !res.IsError {
		t.Error("expected tool error for failed query")
	}

	res, _ = h.getSetLogs(context.Background(), callRequest(map[string]any{"start": "yesterday"}))
	if !res.IsError {
		t.Error("expected tool error for invalid date")
	}
}

// TestGroupBySession verifies set logs are split per session, oldest first.
func TestGroupBySession(t *testing.T) {
	later := time.Date(2026, 3, 8, 18, 0, 0, 0, time.UTC)
	earlier := later.AddDate(0, 0, -7)
	logs := []models.SetLogRow{
		{SessionID: sessionB, Seq: 1, ExerciseName: "Squat", Weight: "105", LoggedAt: later},
		{SessionID: sessionB, Seq: 2, ExerciseName: "Squat", Weight: "105", LoggedAt: later},
		{SessionID: sessionA, Seq: 1, ExerciseName: "Squat", Weight: "100", LoggedAt: earlier},
	}

	got := groupBySession(logs)
	var summary []string
	for _, s := range got {
		summary = append(summary, s.SessionID.String()[:8]+":"+s.Sets[0].Weight)
	}
	want := []string{"11111111:100", "22222222:105"}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Errorf("sessions (-want +got):\n%s", diff)
	}
	if len(got[1].Sets) != 2 {
		t.Errorf("later session sets = %d, want 2", len(got[1].Sets))
	}
}

// TestGetTrainingStatsTool verifies the stats tool returns the totals as JSON.
func TestGetTrainingStatsTool(t *testing.T) {
	h := newHandlers(&fakeSource{})

	res, err := h.getTrainingStats(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var got storage.DataStats
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatal(err)
	}
	if got.TotalSessions != 2 || len(got.TopExercises) != 1 || got.TopExercises[0].Name != "Squat" {
		t.Errorf("stats = %+v", got)
	}
}
