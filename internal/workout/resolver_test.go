package workout

import "testing"

// TestGroupAtThresholds verifies the member minimums for supersets and circuits.
func TestGroupAtThresholds(t *testing.T) {
	tests := []struct {
		name    string
		rows    []ExerciseSetRow
		mode    Mode
		members int
	}{
		{"circuit of three", circuitRows(BlockCircuit, 1, 2, "A", "B", "C"), ModeCircuit, 3},
		{"circuit of two is demoted", circuitRows(BlockCircuit, 1, 2, "A", "B"), ModeSingle, 1},
		{"superset of two", circuitRows(BlockSuperset, 1, 2, "A", "B"), ModeSuperset, 2},
		{"superset of one is demoted", circuitRows(BlockSuperset, 1, 2, "A"), ModeSingle, 1},
		{"normal", circuitRows(BlockNormal, 1, 2, "A", "B"), ModeSingle, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, ok := First(Group(tt.rows))
			if !ok {
				t.Fatal("no group")
			}
			if g.Mode != tt.mode {
				t.Errorf("mode = %s, want %s", g.Mode, tt.mode)
			}
			if len(g.Members) != tt.members {
				t.Errorf("members = %d, want %d", len(g.Members), tt.members)
			}
			if g.Members[0].Name != "A" {
				t.Errorf("first member = %s, want A", g.Members[0].Name)
			}
		})
	}
}

// TestResolveNextWalksDemotedBlock verifies a demoted circuit is walked one
// exercise at a time before moving to the next block.
func TestResolveNextWalksDemotedBlock(t *testing.T) {
	rows := circuitRows(BlockCircuit, 1, 2, "A", "B")
	rows = append(rows, set("Plank", BlockNormal, 2, 1, "60s"))
	blocks := Group(rows)

	g, _ := First(blocks)
	var names []string
	for {
		names = append(names, g.Members[0].Name)
		next, ok := ResolveNext(blocks, g.Cursor)
		if !ok {
			break
		}
		g = next
	}

	want := []string{"A", "B", "Plank"}
	if len(names) != len(want) {
		t.Fatalf("walk = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("walk[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

// TestResolveNextEnd verifies the last group resolves to workout complete.
func TestResolveNextEnd(t *testing.T) {
	blocks := Group(exampleRows())
	if _, ok := ResolveNext(blocks, Cursor{Block: 1, Member: 0, Count: 2}); ok {
		t.Error("ResolveNext past the superset ok = true, want false")
	}
}

// TestResolveNextByName covers the name-matching form and its fail-open policy.
func TestResolveNextByName(t *testing.T) {
	rows := exampleRows()
	rows = append(rows, circuitRows(BlockCircuit, 3, 1, "Burpee", "Swing", "Row")...)
	blocks := Group(rows)

	g, ok := ResolveNextByName(blocks, []string{"Squat"})
	if !ok || g.Mode != ModeSuperset || g.Cursor.Block != 1 {
		t.Errorf("after Squat = %+v/%v, want superset block 1", g.Cursor, g.Mode)
	}

	g, ok = ResolveNextByName(blocks, []string{"Lunge", "RDL"})
	if !ok || g.Mode != ModeCircuit || len(g.Members) != 3 {
		t.Errorf("after superset = %v with %d members, want circuit with 3", g.Mode, len(g.Members))
	}

	if _, ok := ResolveNextByName(blocks, []string{"Burpee", "Swing", "Row"}); ok {
		t.Error("after circuit ok = true, want false")
	}
	if _, ok := ResolveNextByName(blocks, []string{"Snatch"}); ok {
		t.Error("unknown name ok = true, want false")
	}
	if _, ok := ResolveNextByName(blocks, nil); ok {
		t.Error("no names ok = true, want false")
	}
}
