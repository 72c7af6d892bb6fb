package workout

// Minimum member counts for a tagged block to run as a group. Smaller
// blocks are walked one exercise at a time in single mode.
const (
	MinSupersetMembers = 2
	MinCircuitMembers  = 3
)

// Mode is how the current group is driven.
type Mode string

const (
	ModeSingle   Mode = "single"
	ModeSuperset Mode = "superset"
	ModeCircuit  Mode = "circuit"
)

// Cursor is the stable position of a group in the workout: the block index,
// the index of its first member inside the block, and how many members it spans.
type Cursor struct {
	Block  int `json:"block"`
	Member int `json:"member"`
	Count  int `json:"count"`
}

// NextGroup is a classified group ready to seed a State.
type NextGroup struct {
	Mode    Mode
	Cursor  Cursor
	Members []Member
	Rounds  int
}

// GroupAt classifies the group starting at (block, member). Only a cursor at
// the first member of a superset/circuit block that meets the member minimum
// yields a grouped mode; everything else is a single exercise.
func GroupAt(blocks []Block, block, member int) (NextGroup, bool) {
	if block < 0 || block >= len(blocks) {
		return NextGroup{}, false
	}
	b := blocks[block]
	members := b.Members()
	if member < 0 || member >= len(members) {
		return NextGroup{}, false
	}

	if member == 0 && meetsMinimum(b.Type, len(members)) {
		return NextGroup{
			Mode:    Mode(b.Type),
			Cursor:  Cursor{Block: block, Member: 0, Count: len(members)},
			Members: members,
			Rounds:  b.Rounds(),
		}, true
	}

	m := members[member]
	return NextGroup{
		Mode:    ModeSingle,
		Cursor:  Cursor{Block: block, Member: member, Count: 1},
		Members: []Member{m},
		Rounds:  len(m.Sets),
	}, true
}

func meetsMinimum(t BlockType, n int) bool {
	switch t {
	case BlockSuperset:
		return n >= MinSupersetMembers
	case BlockCircuit:
		return n >= MinCircuitMembers
	default:
		return false
	}
}

// First returns the opening group of the workout.
func First(blocks []Block) (NextGroup, bool) {
	return GroupAt(blocks, 0, 0)
}

// ResolveNext returns the group after cur, or false when the workout is complete.
func ResolveNext(blocks []Block, cur Cursor) (NextGroup, bool) {
	block, member := cur.Block, cur.Member+max(cur.Count, 1)
	for block < len(blocks) {
		if member < len(blocks[block].Members()) {
			return GroupAt(blocks, block, member)
		}
		block, member = block+1, 0
	}
	return NextGroup{}, false
}

// ResolveNextByName locates the current group by the name of its first
// exercise and returns the group after it. Names that cannot be found end
// the workout rather than leaving the caller stuck. Prefer ResolveNext: two
// blocks containing the same exercise name are indistinguishable here.
func ResolveNextByName(blocks []Block, names []string) (NextGroup, bool) {
	if len(names) == 0 {
		return NextGroup{}, false
	}

	type position struct {
		block, member int
		name          string
	}
	var flat []position
	for bi, b := range blocks {
		for mi, m := range b.Members() {
			flat = append(flat, position{bi, mi, m.Name})
		}
	}

	for i, p := range flat {
		if p.name != names[0] {
			continue
		}
		next := i + len(names)
		if next >= len(flat) {
			return NextGroup{}, false
		}
		return GroupAt(blocks, flat[next].block, flat[next].member)
	}
	return NextGroup{}, false
}
