package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/repcoach/internal/workout"
	"github.com/google/go-cmp/cmp"
)

func intPtr(i int) *int { return &i }

// legDay is a squat set followed by a one-round lunge/RDL superset.
func legDay() *workout.Session {
	return workout.NewSession([]workout.ExerciseSetRow{
		{ExerciseName: "Squat", BlockType: workout.BlockNormal, SetNumber: 1, Reps: "10"},
		{ExerciseName: "Lunge", BlockType: workout.BlockSuperset, OrderIndex: intPtr(1), SetNumber: 1, Reps: "12"},
		{ExerciseName: "RDL", BlockType: workout.BlockSuperset, OrderIndex: intPtr(1), SetNumber: 1, Reps: "12"},
	})
}

func run(t *testing.T, s *workout.Session, input string) (Outcome, string) {
	t.Helper()
	var out bytes.Buffer
	r := New(strings.NewReader(input), &out, s, "Leg Day", slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v\noutput:\n%s", err, out.String())
	}
	return res, out.String()
}

// TestRunCompletesWorkout verifies that entered fields end up in the set log
// and that the run ends once the last group is done.
func TestRunCompletesWorkout(t *testing.T) {
	res, out := run(t, legDay(), "w 100\nr 8\nn felt heavy\n\nc\nc\n")

	if !res.Finished {
		t.Fatalf("Finished = false, output:\n%s", out)
	}
	want := []workout.LoggedSet{
		{ExerciseID: "Squat", ExerciseName: "Squat", SetNumber: 1, Weight: "100", Reps: "8", Notes: "felt heavy"},
		{ExerciseID: "Lunge", ExerciseName: "Lunge", SetNumber: 1, Reps: "12"},
		{ExerciseID: "RDL", ExerciseName: "RDL", SetNumber: 1, Reps: "12"},
	}
	if diff := cmp.Diff(want, res.Sets); diff != "" {
		t.Errorf("set log mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out, "workout complete: 3 sets logged") {
		t.Errorf("missing completion line in output:\n%s", out)
	}
	if !strings.Contains(out, "SUPERSET round 1 of 1") {
		t.Errorf("missing superset header in output:\n%s", out)
	}
}

// TestRunQuit verifies that quitting keeps the sets logged so far.
func TestRunQuit(t *testing.T) {
	res, _ := run(t, legDay(), "c\nq\nc\n")

	if res.Finished {
		t.Error("Finished = true, want false")
	}
	if len(res.Sets) != 1 || res.Sets[0].ExerciseName != "Squat" {
		t.Errorf("sets = %+v, want only the squat", res.Sets)
	}
}

// TestRunEndOfInput verifies that running out of input stops the loop.
func TestRunEndOfInput(t *testing.T) {
	res, _ := run(t, legDay(), "c")

	if res.Finished || len(res.Sets) != 1 {
		t.Errorf("outcome = %+v, want one set and not finished", res)
	}
}

// TestRunSelectAndPrevious verifies selection inside a superset and that a
// bad index is reported without ending the run.
func TestRunSelectAndPrevious(t *testing.T) {
	res, out := run(t, legDay(), "c\nsel 5\nsel 2\np\nc\nc\n")

	if !strings.Contains(out, "error: exercise index out of range") {
		t.Errorf("missing index error in output:\n%s", out)
	}
	if !strings.Contains(out, " > 2) RDL") {
		t.Errorf("RDL not marked after sel 2, output:\n%s", out)
	}
	if !res.Finished {
		t.Fatalf("Finished = false, output:\n%s", out)
	}
	var names []string
	for _, s := range res.Sets {
		names = append(names, s.ExerciseName)
	}
	want := []string{"Squat", "Lunge", "RDL"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("logged order mismatch (-want +got):\n%s", diff)
	}
}

// TestRunOverview verifies the overview command prints the plan.
func TestRunOverview(t *testing.T) {
	_, out := run(t, legDay(), "o\nq\n")

	if !strings.Contains(out, "1) 1x10 Squat") {
		t.Errorf("missing overview in output:\n%s", out)
	}
}

// TestRunEmptyPlan verifies that a plan without exercises is rejected.
func TestRunEmptyPlan(t *testing.T) {
	r := New(strings.NewReader(""), io.Discard, workout.NewSession(nil), "empty", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := r.Run(context.Background()); !errors.Is(err, workout.ErrNoCurrentExercise) {
		t.Errorf("err = %v, want ErrNoCurrentExercise", err)
	}
}
