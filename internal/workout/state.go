package workout

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrNoCurrentExercise is returned when the state has no exercises, e.g.
	// while plan data is still loading. Callers render a placeholder.
	ErrNoCurrentExercise = errors.New("no current exercise")
	// ErrExerciseIndex is returned by Select for an index outside the group.
	ErrExerciseIndex = errors.New("exercise index out of range")
	// ErrUnknownAction is returned by Apply for an action without a transition.
	ErrUnknownAction = errors.New("unknown action")
)

// SetEntry is what the user entered for one round of one exercise.
type SetEntry struct {
	Weight string `json:"weight"`
	Reps   string `json:"reps"`
	Notes  string `json:"notes"`
}

// SetFields is a partial SetEntry; nil fields are left as they are.
type SetFields struct {
	Weight *string `json:"weight,omitempty"`
	Reps   *string `json:"reps,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

// SessionExercise is one member of the group being performed.
type SessionExercise struct {
	ExerciseID string     `json:"exercise_id"`
	Name       string     `json:"name"`
	Muscles    string     `json:"muscles,omitempty"`
	Rounds     int        `json:"rounds"`
	Planned    []Reps     `json:"planned"`
	SetNumbers []int      `json:"set_numbers"`
	Entries    []SetEntry `json:"entries"`
}

// LoggedSet is one completed set in the session log.
type LoggedSet struct {
	ExerciseID   string `json:"exercise_id"`
	ExerciseName string `json:"exercise_name"`
	SetNumber    int    `json:"set_number"`
	Weight       string `json:"weight"`
	Reps         string `json:"reps"`
	Notes        string `json:"notes"`
}

// Action is a user event fed to the state machine.
type Action string

const (
	ActionRecord   Action = "record"
	ActionComplete Action = "complete"
	ActionSkip     Action = "skip"
	ActionSelect   Action = "select"
	ActionPrevious Action = "previous"
)

// Transition describes what an action did to the position.
type Transition string

const (
	TransitionStay         Transition = "stay"
	TransitionNextSet      Transition = "next_set"
	TransitionNextExercise Transition = "next_exercise"
	TransitionNextRound    Transition = "next_round"
	TransitionGroupDone    Transition = "group_done"
	TransitionBack         Transition = "back"
	TransitionNone         Transition = "none"
)

// Event is an action with its arguments.
type Event struct {
	Action Action
	Index  int
	Fields SetFields
}

// Result is the outcome of applying an event.
type Result struct {
	Transition Transition `json:"transition"`
	Logged     *LoggedSet `json:"logged,omitempty"`
	Finished   bool       `json:"finished"`
}

// State is an immutable snapshot of the group being performed. Every
// transition returns a new State; slices are copied before they are written.
//
// Round is 1-based and shared by all exercises of a superset or circuit. In
// single mode there is one exercise and Round counts its sets.
type State struct {
	Mode          Mode              `json:"mode"`
	Cursor        Cursor            `json:"cursor"`
	Exercises     []SessionExercise `json:"exercises"`
	ExerciseIndex int               `json:"exercise_index"`
	Round         int               `json:"round"`
	Rounds        int               `json:"rounds"`
}

// NewState seeds a State for a resolved group. Members with fewer planned
// sets than the group's round count get blank planned reps for the missing rounds.
func NewState(g NextGroup) State {
	s := State{
		Mode:   g.Mode,
		Cursor: g.Cursor,
		Round:  1,
		Rounds: g.Rounds,
	}
	for _, m := range g.Members {
		ex := SessionExercise{
			ExerciseID: m.ExerciseID,
			Name:       m.Name,
			Muscles:    m.Muscles,
			Rounds:     g.Rounds,
			Planned:    make([]Reps, g.Rounds),
			SetNumbers: make([]int, g.Rounds),
			Entries:    make([]SetEntry, g.Rounds),
		}
		for r := range g.Rounds {
			ex.SetNumbers[r] = r + 1
			if r < len(m.Sets) {
				ex.Planned[r] = m.Sets[r].Reps
				if m.Sets[r].SetNumber > 0 {
					ex.SetNumbers[r] = m.Sets[r].SetNumber
				}
			}
			ex.Entries[r] = SetEntry{Reps: string(ex.Planned[r])}
		}
		s.Exercises = append(s.Exercises, ex)
	}
	return s
}

// Empty reports whether there is no current exercise.
func (s State) Empty() bool {
	return len(s.Exercises) == 0
}

// Current returns the exercise being performed.
func (s State) Current() (SessionExercise, bool) {
	if s.Empty() {
		return SessionExercise{}, false
	}
	return s.Exercises[s.ExerciseIndex], true
}

// CurrentSet is the 1-based set number of the current exercise.
func (s State) CurrentSet() int {
	return s.Round
}

// transitions is the table of state transitions keyed by action.
var transitions = map[Action]func(State, Event) (State, Result, error){
	ActionRecord:   State.record,
	ActionComplete: State.complete,
	ActionSkip:     State.skip,
	ActionSelect:   State.selectExercise,
	ActionPrevious: State.previous,
}

// Apply runs one event through the transition table.
func (s State) Apply(ev Event) (State, Result, error) {
	fn, ok := transitions[ev.Action]
	if !ok {
		return s, Result{Transition: TransitionNone}, fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}
	if s.Empty() {
		return s, Result{Transition: TransitionNone}, ErrNoCurrentExercise
	}
	return fn(s, ev)
}

// Record stores the given fields for the current exercise and round.
func (s State) Record(f SetFields) (State, Result, error) {
	return s.Apply(Event{Action: ActionRecord, Fields: f})
}

// Complete logs the current set and advances.
func (s State) Complete() (State, Result, error) {
	return s.Apply(Event{Action: ActionComplete})
}

// Skip advances like Complete without logging.
func (s State) Skip() (State, Result, error) {
	return s.Apply(Event{Action: ActionSkip})
}

// Select jumps to an exercise of the group.
func (s State) Select(index int) (State, Result, error) {
	return s.Apply(Event{Action: ActionSelect, Index: index})
}

// Previous steps back one position.
func (s State) Previous() (State, Result, error) {
	return s.Apply(Event{Action: ActionPrevious})
}

func (s State) record(ev Event) (State, Result, error) {
	ex := s.Exercises[s.ExerciseIndex]
	entry := ex.Entries[s.Round-1]
	if ev.Fields.Weight != nil {
		entry.Weight = *ev.Fields.Weight
	}
	if ev.Fields.Reps != nil {
		entry.Reps = *ev.Fields.Reps
	}
	if ev.Fields.Notes != nil {
		entry.Notes = *ev.Fields.Notes
	}

	ex.Entries = slices.Clone(ex.Entries)
	ex.Entries[s.Round-1] = entry
	s.Exercises = slices.Clone(s.Exercises)
	s.Exercises[s.ExerciseIndex] = ex
	return s, Result{Transition: TransitionStay}, nil
}

func (s State) complete(ev Event) (State, Result, error) {
	ex := s.Exercises[s.ExerciseIndex]
	entry := ex.Entries[s.Round-1]
	logged := LoggedSet{
		ExerciseID:   ex.ExerciseID,
		ExerciseName: ex.Name,
		SetNumber:    ex.SetNumbers[s.Round-1],
		Weight:       entry.Weight,
		Reps:         entry.Reps,
		Notes:        entry.Notes,
	}
	next, res, err := s.skip(ev)
	res.Logged = &logged
	return next, res, err
}

func (s State) skip(Event) (State, Result, error) {
	switch {
	case s.ExerciseIndex < len(s.Exercises)-1:
		s.ExerciseIndex++
		return s, Result{Transition: TransitionNextExercise}, nil
	case s.Round < s.Rounds:
		s.Round++
		s.ExerciseIndex = 0
		if s.Mode == ModeSingle {
			return s, Result{Transition: TransitionNextSet}, nil
		}
		return s, Result{Transition: TransitionNextRound}, nil
	default:
		return s, Result{Transition: TransitionGroupDone}, nil
	}
}

func (s State) selectExercise(ev Event) (State, Result, error) {
	if ev.Index < 0 || ev.Index >= len(s.Exercises) {
		return s, Result{Transition: TransitionNone}, fmt.Errorf("%w: %d of %d", ErrExerciseIndex, ev.Index, len(s.Exercises))
	}
	s.ExerciseIndex = ev.Index
	return s, Result{Transition: TransitionStay}, nil
}

func (s State) previous(Event) (State, Result, error) {
	switch {
	case s.ExerciseIndex > 0:
		s.ExerciseIndex--
	case s.Round > 1:
		s.Round--
		s.ExerciseIndex = len(s.Exercises) - 1
	default:
		return s, Result{Transition: TransitionNone}, nil
	}
	return s, Result{Transition: TransitionBack}, nil
}
