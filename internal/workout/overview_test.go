package workout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestOverviewExample verifies the compact superset form on the leg day.
func TestOverviewExample(t *testing.T) {
	got := Overview(Group(exampleRows()))
	want := "1) 2x10 Squat\n2) 1x12 SUPERSET:\n    a) Lunge\n    b) RDL"
	if got != want {
		t.Errorf("Overview =\n%s\nwant\n%s", got, want)
	}
}

// TestOverviewNumbering verifies lettered batches for normal exercises, the
// expanded form for uneven groups, and a gapless shared counter.
func TestOverviewNumbering(t *testing.T) {
	rows := []ExerciseSetRow{
		set("Bench", BlockNormal, 1, 1, "10"),
		set("Bench", BlockNormal, 1, 2, "10"),
		set("Bench", BlockNormal, 1, 3, "8"),
		set("Fly", BlockNormal, 2, 1, "15"),
		set("Press", BlockSuperset, 3, 1, "10"),
		set("Press", BlockSuperset, 3, 2, "10"),
		set("Press", BlockSuperset, 3, 3, "10"),
		set("Pull-up", BlockSuperset, 3, 1, "12"),
		set("Pull-up", BlockSuperset, 3, 2, "12"),
		set("Burpee", BlockCircuit, 4, 1, "10"),
		set("Jump Squat", BlockCircuit, 4, 1, "10"),
		set("Push-up", BlockCircuit, 4, 1, "10"),
		set("Burpee", BlockCircuit, 4, 2, "10"),
		set("Jump Squat", BlockCircuit, 4, 2, "10"),
		set("Push-up", BlockCircuit, 4, 2, "10"),
		set("Plank", BlockNormal, 5, 1, "60s"),
	}

	want := "1a) 2x10 Bench\n" +
		"1b) 1x8 Bench\n" +
		"2) 1x15 Fly\n" +
		"3) SUPERSET:\n" +
		"    a) 3x10 Press\n" +
		"    b) 2x12 Pull-up\n" +
		"4) 2x10 CIRCUIT:\n" +
		"    a) Burpee\n" +
		"    b) Jump Squat\n" +
		"    c) Push-up\n" +
		"5) 1x60s Plank"

	got := Overview(Group(rows))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Overview mismatch (-want +got):\n%s", diff)
	}
	if again := Overview(Group(rows)); again != got {
		t.Error("Overview is not deterministic")
	}
}

// TestOverviewPyramidReps verifies members with several reps values are joined.
func TestOverviewPyramidReps(t *testing.T) {
	rows := []ExerciseSetRow{
		set("Curl", BlockSuperset, 1, 1, "12"),
		set("Curl", BlockSuperset, 1, 2, "10"),
		set("Pushdown", BlockSuperset, 1, 1, "12"),
		set("Pushdown", BlockSuperset, 1, 2, "10"),
	}
	want := "1) 2x12/10 SUPERSET:\n    a) Curl\n    b) Pushdown"
	if got := Overview(Group(rows)); got != want {
		t.Errorf("Overview =\n%s\nwant\n%s", got, want)
	}
}

// TestOverviewEmpty verifies an empty workout renders as an empty string.
func TestOverviewEmpty(t *testing.T) {
	if got := Overview(nil); got != "" {
		t.Errorf("Overview(nil) = %q, want empty", got)
	}
}

// TestConsolidate verifies merging by (name, reps) in encounter order.
func TestConsolidate(t *testing.T) {
	b := Block{Type: BlockNormal, Rows: []ExerciseSetRow{
		set("Bench", BlockNormal, 1, 1, "10"),
		set("Bench", BlockNormal, 1, 2, "8"),
		set("Bench", BlockNormal, 1, 3, "10"),
		set("Fly", BlockNormal, 1, 1, "10"),
	}}
	want := []ConsolidatedExercise{
		{ExerciseName: "Bench", Reps: "10", SetNumbers: []int{1, 3}},
		{ExerciseName: "Bench", Reps: "8", SetNumbers: []int{2}},
		{ExerciseName: "Fly", Reps: "10", SetNumbers: []int{1}},
	}
	if diff := cmp.Diff(want, Consolidate(b)); diff != "" {
		t.Errorf("Consolidate mismatch (-want +got):\n%s", diff)
	}
}

// TestLetter verifies lettering past z.
func TestLetter(t *testing.T) {
	tests := map[int]string{0: "a", 1: "b", 25: "z", 26: "aa", 27: "ab", 52: "ba"}
	for in, want := range tests {
		if got := letter(in); got != want {
			t.Errorf("letter(%d) = %q, want %q", in, got, want)
		}
	}
}
