package sessions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/workout"
	"github.com/google/uuid"
)

var legDayID = uuid.MustParse("6f1c1b8e-58d6-4c43-9a57-0c7f1f0f3a11")

func idx(i int) *int { return &i }

type fakeStore struct {
	mu      sync.Mutex
	saved   [][]models.SetLogRow
	saveErr error
}

func (f *fakeStore) GetPlan(_ context.Context, planID uuid.UUID, userID int) (*models.PlanRow, []workout.ExerciseSetRow, error) {
	if planID != legDayID || userID != 1 {
		return nil, nil, errors.New("plan not found")
	}
	rows := []workout.ExerciseSetRow{
		{ExerciseName: "Squat", BlockType: workout.BlockNormal, OrderIndex: idx(1), SetNumber: 1, Reps: "10"},
		{ExerciseName: "Lunge", BlockType: workout.BlockSuperset, OrderIndex: idx(2), SetNumber: 1, Reps: "12"},
		{ExerciseName: "RDL", BlockType: workout.BlockSuperset, OrderIndex: idx(2), SetNumber: 1, Reps: "12"},
	}
	return &models.PlanRow{ID: legDayID, UserID: 1, Name: "Leg Day"}, rows, nil
}

func (f *fakeStore) InsertSetLog(_ context.Context, rows []models.SetLogRow) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, rows)
	return int64(len(rows)), nil
}

func newTestRegistry(store Store) *Registry {
	r := NewRegistry(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.now = func() time.Time { return time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC) }
	return r
}

var complete = workout.Event{Action: workout.ActionComplete}

// TestRegistryRunsWorkoutToCompletion verifies a session is persisted and
// closed once its last group finishes.
func TestRegistryRunsWorkoutToCompletion(t *testing.T) {
	store := &fakeStore{}
	r := newTestRegistry(store)
	ctx := context.Background()

	v, err := r.Start(ctx, 1, legDayID, 0, 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if v.State.Mode != workout.ModeSingle || v.PlanName != "Leg Day" {
		t.Errorf("start view = %s/%q", v.State.Mode, v.PlanName)
	}

	for i := range 2 {
		v, err = r.Apply(ctx, v.ID, 1, complete)
		if err != nil {
			t.Fatalf("complete %d: %v", i+1, err)
		}
		if v.Result.Finished {
			t.Fatalf("finished early on complete %d", i+1)
		}
	}

	v, err = r.Apply(ctx, v.ID, 1, complete)
	if err != nil {
		t.Fatalf("final complete: %v", err)
	}
	if !v.Result.Finished || v.Saved != 3 {
		t.Errorf("final view finished=%v saved=%d, want true/3", v.Result.Finished, v.Saved)
	}
	if len(store.saved) != 1 || len(store.saved[0]) != 3 {
		t.Fatalf("saved batches = %v", store.saved)
	}
	row := store.saved[0][2]
	if row.Seq != 3 || row.ExerciseName != "RDL" || row.PlanID == nil || *row.PlanID != legDayID {
		t.Errorf("last row = %+v", row)
	}
	if r.Len() != 0 {
		t.Errorf("open sessions = %d, want 0", r.Len())
	}
	if _, err := r.Get(v.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after finish error = %v, want ErrNotFound", err)
	}
}

// TestRegistryRetriesFailedSave verifies a failed save keeps the session
// open and the next event saves it.
func TestRegistryRetriesFailedSave(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("db down")}
	r := newTestRegistry(store)
	ctx := context.Background()

	v, _ := r.Start(ctx, 1, legDayID, 1, 0)
	if _, err := r.Apply(ctx, v.ID, 1, complete); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Apply(ctx, v.ID, 1, complete); err == nil {
		t.Fatal("expected save error")
	}
	if r.Len() != 1 {
		t.Fatalf("open sessions = %d, want 1", r.Len())
	}

	store.saveErr = nil
	v, err := r.Apply(ctx, v.ID, 1, complete)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if v.Saved != 2 || r.Len() != 0 {
		t.Errorf("retry saved=%d open=%d, want 2/0", v.Saved, r.Len())
	}
}

// TestRegistryIsolatesUsers verifies sessions are invisible to other users.
func TestRegistryIsolatesUsers(t *testing.T) {
	r := newTestRegistry(&fakeStore{})
	v, err := r.Start(context.Background(), 1, legDayID, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(v.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("get as other user error = %v, want ErrNotFound", err)
	}
	if err := r.Discard(v.ID, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("discard as other user error = %v, want ErrNotFound", err)
	}
	if err := r.Discard(v.ID, 1); err != nil {
		t.Errorf("discard: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("open sessions = %d, want 0", r.Len())
	}
}

// TestRegistryPassesEngineErrors verifies engine errors reach the caller unchanged.
func TestRegistryPassesEngineErrors(t *testing.T) {
	r := newTestRegistry(&fakeStore{})
	ctx := context.Background()
	v, _ := r.Start(ctx, 1, legDayID, 1, 0)

	_, err := r.Apply(ctx, v.ID, 1, workout.Event{Action: workout.ActionSelect, Index: 5})
	if !errors.Is(err, workout.ErrExerciseIndex) {
		t.Errorf("error = %v, want ErrExerciseIndex", err)
	}
}

// TestRegistryRejectsUnknownStart verifies a bad start position is not
// registered.
func TestRegistryRejectsUnknownStart(t *testing.T) {
	r := newTestRegistry(&fakeStore{})

	_, err := r.Start(context.Background(), 1, legDayID, 4, 0)
	if !errors.Is(err, workout.ErrStartPosition) {
		t.Errorf("error = %v, want ErrStartPosition", err)
	}
	if r.Len() != 0 {
		t.Errorf("live sessions = %d, want 0", r.Len())
	}
}

// TestRegistryConcurrentSessions verifies parallel sessions do not interfere.
func TestRegistryConcurrentSessions(t *testing.T) {
	store := &fakeStore{}
	r := newTestRegistry(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := r.Start(ctx, 1, legDayID, 0, 0)
			if err != nil {
				t.Error(err)
				return
			}
			for range 3 {
				if _, err := r.Apply(ctx, v.ID, 1, complete); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if len(store.saved) != 8 {
		t.Errorf("saved sessions = %d, want 8", len(store.saved))
	}
	for _, rows := range store.saved {
		if len(rows) != 3 {
			t.Errorf("session saved %d rows, want 3", len(rows))
		}
	}
}
