package plan

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/workout"
)

var (
	// planHeaderRe matches: "Leg Day · Week 2"
	planHeaderRe = regexp.MustCompile(`^"(.+)"$`)

	// setRowRe matches: 3;lunge;Walking Lunge;superset;2;1;12;Glutes, Quads
	setRowRe = regexp.MustCompile(`^(\d+);([^;]*);([^;]+);([^;]*);([^;]*);([^;]*);([^;]*)(?:;(.*))?$`)

	// columnHeaderRe matches: #;ID;EXERCISE;BLOCK;ORDER;SET;REPS;MUSCLES
	columnHeaderRe = regexp.MustCompile(`^#;ID;EXERCISE;BLOCK;ORDER;SET;REPS(;MUSCLES)?$`)
)

// Parse reads a plan CSV export and returns the plans it contains. Plans are
// separated by blank lines and start with a quoted name. Rows with an unknown
// block type or a missing order index are kept as normal sets, and rows with
// a blank set number are kept with set number 0.
func Parse(r io.Reader) ([]models.PlanInput, error) {
	scanner := bufio.NewScanner(r)
	var plans []models.PlanInput
	var current *models.PlanInput
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Blank line = plan boundary
		if line == "" {
			if current != nil {
				plans = append(plans, *current)
				current = nil
			}
			continue
		}

		if columnHeaderRe.MatchString(line) {
			continue
		}

		if m := planHeaderRe.FindStringSubmatch(line); m != nil {
			if current != nil {
				plans = append(plans, *current)
			}
			current = &models.PlanInput{Name: strings.TrimSpace(m[1])}
			continue
		}

		if m := setRowRe.FindStringSubmatch(line); m != nil {
			if current == nil {
				return nil, fmt.Errorf("line %d: set row without plan: %q", lineNo, line)
			}
			// A blank or malformed set number is kept as 0; sessions number
			// such sets by round.
			setNum, _ := strconv.Atoi(strings.TrimSpace(m[6]))
			current.Rows = append(current.Rows, workout.ExerciseSetRow{
				ExerciseID:   strings.TrimSpace(m[2]),
				ExerciseName: strings.TrimSpace(m[3]),
				BlockType:    workout.ParseBlockType(m[4]),
				OrderIndex:   parseOrder(m[5]),
				SetNumber:    setNum,
				Reps:         workout.Reps(strings.TrimSpace(m[7])),
				Muscles:      strings.TrimSpace(m[8]),
			})
			continue
		}

		// Unknown line: comments, trailing metadata
	}

	if current != nil {
		plans = append(plans, *current)
	}
	return plans, scanner.Err()
}

// parseOrder returns nil for an empty or non-numeric order index.
func parseOrder(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}
