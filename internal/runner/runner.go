// Package runner drives a workout session from a terminal, one command per
// line.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/claude/repcoach/internal/workout"
)

const help = `commands:
  <enter>, c   complete the current set
  s            skip the current set
  p            go back one step
  sel N        switch to exercise N of the group
  w X          set weight
  r X          set reps
  n TEXT       set notes
  o            show the plan overview
  q            quit without finishing`

// errQuit ends the loop without finishing the workout.
var errQuit = errors.New("quit")

// Outcome is what a run produced.
type Outcome struct {
	Finished bool
	Sets     []workout.LoggedSet
}

// Runner reads commands from in and renders the session to out.
type Runner struct {
	in      *bufio.Reader
	out     io.Writer
	session *workout.Session
	title   string
	log     *slog.Logger
}

// New creates a Runner for a session. title is printed above the state.
func New(in io.Reader, out io.Writer, session *workout.Session, title string, log *slog.Logger) *Runner {
	return &Runner{
		in:      bufio.NewReader(in),
		out:     out,
		session: session,
		title:   title,
		log:     log,
	}
}

// Run loops until the workout finishes, the user quits, the input ends or
// ctx is cancelled. The set log is returned in every case.
func (r *Runner) Run(ctx context.Context) (Outcome, error) {
	if snap := r.session.Snapshot(); snap.Current == nil && !snap.Finished {
		return Outcome{}, workout.ErrNoCurrentExercise
	}

	fmt.Fprintf(r.out, "%s\n\n", r.title)
	r.render()

	for {
		if err := ctx.Err(); err != nil {
			return r.outcome(), err
		}

		fmt.Fprint(r.out, "> ")
		line, err := r.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return r.outcome(), fmt.Errorf("reading command: %w", err)
		}
		if err != nil && line == "" {
			fmt.Fprintln(r.out)
			return r.outcome(), nil
		}

		if err := r.handle(strings.TrimSpace(line)); err != nil {
			if errors.Is(err, errQuit) {
				return r.outcome(), nil
			}
			fmt.Fprintf(r.out, "error: %v\n", err)
			continue
		}

		if r.session.Finished() {
			out := r.outcome()
			fmt.Fprintf(r.out, "\nworkout complete: %d sets logged\n", len(out.Sets))
			return out, nil
		}
	}
}

func (r *Runner) outcome() Outcome {
	return Outcome{Finished: r.session.Finished(), Sets: r.session.SetLog()}
}

// handle runs one command line.
func (r *Runner) handle(line string) error {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var ev workout.Event
	switch strings.ToLower(cmd) {
	case "", "c":
		ev.Action = workout.ActionComplete
	case "s":
		ev.Action = workout.ActionSkip
	case "p":
		ev.Action = workout.ActionPrevious
	case "sel":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return errors.New("sel needs an exercise number")
		}
		ev = workout.Event{Action: workout.ActionSelect, Index: n - 1}
	case "w":
		ev = workout.Event{Action: workout.ActionRecord, Fields: workout.SetFields{Weight: &arg}}
	case "r":
		ev = workout.Event{Action: workout.ActionRecord, Fields: workout.SetFields{Reps: &arg}}
	case "n":
		ev = workout.Event{Action: workout.ActionRecord, Fields: workout.SetFields{Notes: &arg}}
	case "o":
		fmt.Fprintln(r.out, workout.Overview(r.session.Blocks()))
		return nil
	case "h", "?":
		fmt.Fprintln(r.out, help)
		return nil
	case "q":
		return errQuit
	default:
		fmt.Fprintln(r.out, help)
		return nil
	}

	res, err := r.session.Apply(ev)
	if err != nil {
		return err
	}
	r.log.Debug("event applied", "action", ev.Action, "transition", res.Transition)

	if res.Logged != nil {
		fmt.Fprintf(r.out, "logged %s set %d: %s\n", res.Logged.ExerciseName, res.Logged.SetNumber, describeSet(res.Logged.Weight, res.Logged.Reps))
	}
	if r.session.Finished() {
		return nil
	}
	if res.Transition == workout.TransitionGroupDone {
		fmt.Fprintln(r.out)
	}
	r.render()
	return nil
}

// render prints the current group with the active exercise marked.
func (r *Runner) render() {
	snap := r.session.Snapshot()
	if snap.Current == nil {
		return
	}

	if snap.Mode == workout.ModeSingle {
		fmt.Fprintf(r.out, "%s: set %d of %d\n", snap.Current.Name, snap.Round, snap.Rounds)
	} else {
		fmt.Fprintf(r.out, "%s round %d of %d\n", strings.ToUpper(string(snap.Mode)), snap.Round, snap.Rounds)
		for i, ex := range snap.Exercises {
			marker := " "
			if i == snap.ExerciseIndex {
				marker = ">"
			}
			fmt.Fprintf(r.out, " %s %d) %s\n", marker, i+1, ex.Name)
		}
	}

	round := snap.Round - 1
	entry := snap.Current.Entries[round]
	planned := string(snap.Current.Planned[round])
	if planned == "" {
		planned = "-"
	}
	fmt.Fprintf(r.out, "  planned %s | weight %s | reps %s", planned, orDash(entry.Weight), orDash(entry.Reps))
	if entry.Notes != "" {
		fmt.Fprintf(r.out, " | %s", entry.Notes)
	}
	fmt.Fprintln(r.out)
}

func describeSet(weight, reps string) string {
	if weight == "" {
		return orDash(reps) + " reps"
	}
	return fmt.Sprintf("%s x %s", weight, orDash(reps))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
