package workout

// Block is a contiguous run of planned sets sharing a block type and, for
// supersets and circuits, an order index. Blocks are rebuilt from rows, never edited.
type Block struct {
	Index      int              `json:"index"`
	Type       BlockType        `json:"type"`
	OrderIndex int              `json:"order_index"`
	Rows       []ExerciseSetRow `json:"rows"`
}

// Member is one distinct exercise inside a block, with its planned sets in order.
type Member struct {
	ExerciseID string
	Name       string
	Muscles    string
	Sets       []ExerciseSetRow
}

// Group partitions rows into blocks without reordering them. A new block
// starts when the block type changes, or when a superset/circuit row carries
// a different order index than the previous row. Normal rows coalesce into
// one running block whatever their order index.
func Group(rows []ExerciseSetRow) []Block {
	var blocks []Block
	var cur *Block

	for _, row := range rows {
		t, order := row.normalized()
		if cur == nil || cur.Type != t || (t != BlockNormal && cur.OrderIndex != order) {
			blocks = append(blocks, Block{
				Index:      len(blocks),
				Type:       t,
				OrderIndex: order,
			})
			cur = &blocks[len(blocks)-1]
		}
		cur.Rows = append(cur.Rows, row)
	}
	return blocks
}

// Flatten concatenates the rows of all blocks.
func Flatten(blocks []Block) []ExerciseSetRow {
	var rows []ExerciseSetRow
	for _, b := range blocks {
		rows = append(rows, b.Rows...)
	}
	return rows
}

// Members returns the distinct exercises of the block in encounter order.
// Exercises are keyed by ID, so two rows with the same name but different
// IDs are different members.
func (b Block) Members() []Member {
	var members []Member
	pos := make(map[string]int)
	for _, row := range b.Rows {
		id := row.ID()
		i, ok := pos[id]
		if !ok {
			i = len(members)
			pos[id] = i
			members = append(members, Member{
				ExerciseID: id,
				Name:       row.ExerciseName,
				Muscles:    row.Muscles,
			})
		}
		members[i].Sets = append(members[i].Sets, row)
	}
	return members
}

// Rounds is the shared round count of the block: the largest set count of
// any member. Members with fewer planned sets are padded when a session starts.
func (b Block) Rounds() int {
	rounds := 0
	for _, m := range b.Members() {
		rounds = max(rounds, len(m.Sets))
	}
	return rounds
}

// RoundsMismatched reports whether members plan different set counts.
func (b Block) RoundsMismatched() bool {
	members := b.Members()
	for _, m := range members[min(1, len(members)):] {
		if len(m.Sets) != len(members[0].Sets) {
			return true
		}
	}
	return false
}
