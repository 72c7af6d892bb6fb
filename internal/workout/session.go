package workout

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrSessionFinished is returned for events after the last group completed.
	ErrSessionFinished = errors.New("session finished")
	// ErrStartPosition is returned for a start position outside the workout.
	ErrStartPosition = errors.New("start position out of range")
)

// Session drives a whole workout: it owns the blocks, the current group's
// State and the append-only set log. A Session is not safe for concurrent
// use; each live session gets its own instance.
type Session struct {
	blocks   []Block
	state    State
	log      []LoggedSet
	finished bool
}

// NewSession groups rows and starts at the first group.
func NewSession(rows []ExerciseSetRow) *Session {
	s, _ := StartSession(Group(rows), 0, 0)
	return s
}

// StartSession starts at the group beginning at (block, member). An empty
// workout gives a session with no current exercise; a position outside a
// non-empty workout returns ErrStartPosition.
func StartSession(blocks []Block, block, member int) (*Session, error) {
	s := &Session{blocks: blocks}
	if len(blocks) == 0 {
		return s, nil
	}
	g, ok := GroupAt(blocks, block, member)
	if !ok {
		return nil, fmt.Errorf("%w: block %d member %d", ErrStartPosition, block, member)
	}
	s.state = NewState(g)
	return s, nil
}

// Apply feeds one event to the current group. Completing the last set of a
// group moves to the next group; when there is none the session finishes.
func (s *Session) Apply(ev Event) (Result, error) {
	if s.finished {
		return Result{Transition: TransitionNone, Finished: true}, ErrSessionFinished
	}

	next, res, err := s.state.Apply(ev)
	if err != nil {
		return res, err
	}
	s.state = next
	if res.Logged != nil {
		s.log = append(s.log, *res.Logged)
	}

	if res.Transition == TransitionGroupDone {
		if g, ok := ResolveNext(s.blocks, s.state.Cursor); ok {
			s.state = NewState(g)
		} else {
			s.finished = true
			res.Finished = true
		}
	}
	return res, nil
}

// Record stores fields for the current exercise and round.
func (s *Session) Record(f SetFields) (Result, error) {
	return s.Apply(Event{Action: ActionRecord, Fields: f})
}

// Complete logs the current set and advances.
func (s *Session) Complete() (Result, error) {
	return s.Apply(Event{Action: ActionComplete})
}

// Skip advances without logging.
func (s *Session) Skip() (Result, error) {
	return s.Apply(Event{Action: ActionSkip})
}

// Select jumps to an exercise of the current group.
func (s *Session) Select(index int) (Result, error) {
	return s.Apply(Event{Action: ActionSelect, Index: index})
}

// Previous steps back one position inside the current group.
func (s *Session) Previous() (Result, error) {
	return s.Apply(Event{Action: ActionPrevious})
}

// State returns a copy of the current group state.
func (s *Session) State() State {
	st := s.state
	st.Exercises = cloneExercises(s.state.Exercises)
	return st
}

// Finished reports whether every group has been completed.
func (s *Session) Finished() bool {
	return s.finished
}

// Blocks returns the grouped workout.
func (s *Session) Blocks() []Block {
	return s.blocks
}

// SetLog returns a copy of the completed sets in order.
func (s *Session) SetLog() []LoggedSet {
	return slices.Clone(s.log)
}

// Snapshot is the UI-facing view re-read after every transition.
type Snapshot struct {
	Mode          Mode              `json:"mode"`
	Cursor        Cursor            `json:"cursor"`
	ExerciseIndex int               `json:"exercise_index"`
	Round         int               `json:"round"`
	Rounds        int               `json:"rounds"`
	Current       *SessionExercise  `json:"current,omitempty"`
	Exercises     []SessionExercise `json:"exercises"`
	Logged        int               `json:"logged"`
	Finished      bool              `json:"finished"`
}

// Snapshot copies the current position and entries.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Mode:          s.state.Mode,
		Cursor:        s.state.Cursor,
		ExerciseIndex: s.state.ExerciseIndex,
		Round:         s.state.Round,
		Rounds:        s.state.Rounds,
		Logged:        len(s.log),
		Finished:      s.finished,
	}
	snap.Exercises = cloneExercises(s.state.Exercises)
	if !s.state.Empty() && !s.finished {
		cur := snap.Exercises[s.state.ExerciseIndex]
		snap.Current = &cur
	}
	return snap
}

// cloneExercises copies exercises together with their per-round slices.
func cloneExercises(in []SessionExercise) []SessionExercise {
	var out []SessionExercise
	for _, ex := range in {
		ex.Planned = slices.Clone(ex.Planned)
		ex.SetNumbers = slices.Clone(ex.SetNumbers)
		ex.Entries = slices.Clone(ex.Entries)
		out = append(out, ex)
	}
	return out
}
