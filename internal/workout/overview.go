package workout

import (
	"fmt"
	"strings"
)

// ConsolidatedExercise merges the planned sets of one (name, reps) pair in a block.
type ConsolidatedExercise struct {
	ExerciseName string `json:"exercise_name"`
	Reps         Reps   `json:"reps"`
	Muscles      string `json:"muscles,omitempty"`
	SetNumbers   []int  `json:"set_numbers"`
}

// Consolidate collapses repeated set rows of a block into one entry per
// (exercise name, reps) pair, in encounter order.
func Consolidate(b Block) []ConsolidatedExercise {
	type key struct {
		name string
		reps Reps
	}
	var out []ConsolidatedExercise
	pos := make(map[key]int)
	for _, row := range b.Rows {
		k := key{row.ExerciseName, row.Reps}
		i, ok := pos[k]
		if !ok {
			i = len(out)
			pos[k] = i
			out = append(out, ConsolidatedExercise{
				ExerciseName: row.ExerciseName,
				Reps:         row.Reps,
				Muscles:      row.Muscles,
			})
		}
		out[i].SetNumbers = append(out[i].SetNumbers, row.SetNumber)
	}
	return out
}

// Overview renders the numbered workout summary shown before a session.
//
//	1) 2x10 Squat
//	2) 1x12 SUPERSET:
//	    a) Lunge
//	    b) RDL
//
// The counter is shared across blocks: once per normal exercise and once per
// superset/circuit block.
func Overview(blocks []Block) string {
	var lines []string
	n := 1
	for _, b := range blocks {
		if b.Type == BlockNormal {
			lines = append(lines, normalLines(b, &n)...)
			continue
		}
		lines = append(lines, groupLines(b, n)...)
		n++
	}
	return strings.Join(lines, "\n")
}

type repsBatch struct {
	reps  Reps
	count int
}

type namedBatches struct {
	name    string
	batches []repsBatch
}

// normalLines groups a normal block by exercise name, then by reps value.
func normalLines(b Block, n *int) []string {
	var exercises []namedBatches
	pos := make(map[string]int)
	for _, row := range b.Rows {
		i, ok := pos[row.ExerciseName]
		if !ok {
			i = len(exercises)
			pos[row.ExerciseName] = i
			exercises = append(exercises, namedBatches{name: row.ExerciseName})
		}
		exercises[i].batches = addToBatch(exercises[i].batches, row.Reps)
	}

	var lines []string
	for _, ex := range exercises {
		if len(ex.batches) == 1 {
			lines = append(lines, fmt.Sprintf("%d) %dx%s %s", *n, ex.batches[0].count, ex.batches[0].reps, ex.name))
		} else {
			for j, batch := range ex.batches {
				lines = append(lines, fmt.Sprintf("%d%s) %dx%s %s", *n, letter(j), batch.count, batch.reps, ex.name))
			}
		}
		*n++
	}
	return lines
}

func addToBatch(batches []repsBatch, reps Reps) []repsBatch {
	for i := range batches {
		if batches[i].reps == reps {
			batches[i].count++
			return batches
		}
	}
	return append(batches, repsBatch{reps: reps, count: 1})
}

// groupLines renders a superset or circuit block. The compact form is used
// when every member has the same set count and the same distinct reps.
func groupLines(b Block, n int) []string {
	members := b.Members()
	label := b.Type.Label()

	uniform := true
	for _, m := range members[1:] {
		if len(m.Sets) != len(members[0].Sets) || repsLabel(m) != repsLabel(members[0]) {
			uniform = false
			break
		}
	}

	var lines []string
	if uniform {
		lines = append(lines, fmt.Sprintf("%d) %dx%s %s:", n, len(members[0].Sets), repsLabel(members[0]), label))
		for j, m := range members {
			lines = append(lines, fmt.Sprintf("    %s) %s", letter(j), m.Name))
		}
		return lines
	}

	lines = append(lines, fmt.Sprintf("%d) %s:", n, label))
	for j, m := range members {
		lines = append(lines, fmt.Sprintf("    %s) %dx%s %s", letter(j), len(m.Sets), repsLabel(m), m.Name))
	}
	return lines
}

// repsLabel joins the distinct reps of a member in order: "12", "12/10/8".
func repsLabel(m Member) string {
	var distinct []string
	seen := make(map[Reps]bool)
	for _, s := range m.Sets {
		if seen[s.Reps] {
			continue
		}
		seen[s.Reps] = true
		distinct = append(distinct, string(s.Reps))
	}
	return strings.Join(distinct, "/")
}

// letter returns a, b, ... z, aa, ab, ...
func letter(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return letter(i/26-1) + letter(i%26)
}
