package workout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BlockType tags how a planned set is performed relative to its neighbours.
type BlockType string

const (
	BlockNormal   BlockType = "normal"
	BlockSuperset BlockType = "superset"
	BlockCircuit  BlockType = "circuit"
)

// ParseBlockType maps free-form input to a BlockType. Anything unrecognised is normal.
func ParseBlockType(s string) BlockType {
	switch BlockType(strings.ToLower(strings.TrimSpace(s))) {
	case BlockSuperset:
		return BlockSuperset
	case BlockCircuit:
		return BlockCircuit
	default:
		return BlockNormal
	}
}

// Label is the upper-case name used in the overview text.
func (t BlockType) Label() string {
	return strings.ToUpper(string(t))
}

// Reps is a planned or performed rep count. Plans deliver it as either a
// number or a string ("8-12", "AMRAP"), so it is kept as text.
type Reps string

// UnmarshalJSON accepts both JSON strings and numbers.
func (r *Reps) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding reps: %w", err)
		}
		*r = Reps(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding reps: %w", err)
	}
	*r = Reps(n.String())
	return nil
}

// RepsFromInt formats an integer rep count.
func RepsFromInt(n int) Reps {
	return Reps(strconv.Itoa(n))
}

// ExerciseSetRow is one planned set as delivered by the data source.
type ExerciseSetRow struct {
	ExerciseID   string    `json:"exercise_id,omitempty"`
	ExerciseName string    `json:"exercise_name"`
	BlockType    BlockType `json:"block_type"`
	OrderIndex   *int      `json:"order_index,omitempty"`
	SetNumber    int       `json:"set_number"`
	Reps         Reps      `json:"reps"`
	Muscles      string    `json:"muscles,omitempty"`
}

// ID returns the exercise identifier, falling back to the name.
func (r ExerciseSetRow) ID() string {
	if r.ExerciseID != "" {
		return r.ExerciseID
	}
	return r.ExerciseName
}

// normalized returns the effective block type and order index of the row.
// Unknown types and non-normal rows without an order index degrade to normal.
func (r ExerciseSetRow) normalized() (BlockType, int) {
	t := ParseBlockType(string(r.BlockType))
	if t == BlockNormal || r.OrderIndex == nil {
		order := 0
		if r.OrderIndex != nil {
			order = *r.OrderIndex
		}
		return BlockNormal, order
	}
	return t, *r.OrderIndex
}
