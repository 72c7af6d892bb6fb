package sessions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/workout"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown sessions or sessions of another user.
var ErrNotFound = errors.New("session not found")

// Store loads plans and persists finished set logs. *storage.DB satisfies it.
type Store interface {
	GetPlan(ctx context.Context, planID uuid.UUID, userID int) (*models.PlanRow, []workout.ExerciseSetRow, error)
	InsertSetLog(ctx context.Context, rows []models.SetLogRow) (int64, error)
}

// Registry owns the live workout sessions. Each session has its own lock,
// so requests for one session are serialized and sessions share nothing.
type Registry struct {
	store Store
	log   *slog.Logger
	now   func() time.Time

	mu   sync.RWMutex
	live map[uuid.UUID]*liveSession
}

type liveSession struct {
	mu        sync.Mutex
	id        uuid.UUID
	userID    int
	planID    uuid.UUID
	planName  string
	startedAt time.Time
	session   *workout.Session
}

// View is what clients re-read after every action.
type View struct {
	ID        uuid.UUID        `json:"id"`
	PlanID    uuid.UUID        `json:"plan_id"`
	PlanName  string           `json:"plan_name"`
	StartedAt time.Time        `json:"started_at"`
	State     workout.Snapshot `json:"state"`
	Result    *workout.Result  `json:"result,omitempty"`
	Saved     int64            `json:"saved,omitempty"`
}

// NewRegistry creates an empty registry.
func NewRegistry(store Store, log *slog.Logger) *Registry {
	return &Registry{
		store: store,
		log:   log,
		now:   time.Now,
		live:  make(map[uuid.UUID]*liveSession),
	}
}

// Start loads a plan and opens a session at the group beginning at
// (block, member). Zero values start at the top of the workout.
func (r *Registry) Start(ctx context.Context, userID int, planID uuid.UUID, block, member int) (*View, error) {
	plan, rows, err := r.store.GetPlan(ctx, planID, userID)
	if err != nil {
		return nil, fmt.Errorf("loading plan: %w", err)
	}

	session, err := workout.StartSession(workout.Group(rows), block, member)
	if err != nil {
		return nil, err
	}

	ls := &liveSession{
		id:        uuid.New(),
		userID:    userID,
		planID:    plan.ID,
		planName:  plan.Name,
		startedAt: r.now(),
		session:   session,
	}

	r.mu.Lock()
	r.live[ls.id] = ls
	r.mu.Unlock()

	r.log.Info("session started", "session_id", ls.id, "plan_id", plan.ID, "sets", len(rows))
	return ls.view(nil), nil
}

// Get returns the current view of a session.
func (r *Registry) Get(id uuid.UUID, userID int) (*View, error) {
	ls, err := r.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.view(nil), nil
}

// Apply feeds one event to a session. When the event finishes the workout
// the set log is persisted and the session is closed. If persisting fails
// the session stays open in its finished state, and any later event retries
// the save.
func (r *Registry) Apply(ctx context.Context, id uuid.UUID, userID int, ev workout.Event) (*View, error) {
	ls, err := r.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session.Finished() {
		return r.persist(ctx, ls, &workout.Result{Transition: workout.TransitionNone, Finished: true})
	}

	res, err := ls.session.Apply(ev)
	if err != nil {
		return nil, err
	}
	if res.Finished {
		return r.persist(ctx, ls, &res)
	}
	return ls.view(&res), nil
}

// Discard drops a session without saving its log.
func (r *Registry) Discard(id uuid.UUID, userID int) error {
	if _, err := r.lookup(id, userID); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
	r.log.Info("session discarded", "session_id", id)
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.live)
}

func (r *Registry) lookup(id uuid.UUID, userID int) (*liveSession, error) {
	r.mu.RLock()
	ls, ok := r.live[id]
	r.mu.RUnlock()
	if !ok || ls.userID != userID {
		return nil, ErrNotFound
	}
	return ls, nil
}

// persist hands the finished set log to storage. Called with ls.mu held.
func (r *Registry) persist(ctx context.Context, ls *liveSession, res *workout.Result) (*View, error) {
	planID := ls.planID
	finished := models.FinishedSession{
		SessionID:  ls.id,
		PlanID:     &planID,
		PlanName:   ls.planName,
		FinishedAt: r.now(),
		Sets:       ls.session.SetLog(),
	}

	saved, err := r.store.InsertSetLog(ctx, finished.Rows(ls.userID))
	if err != nil {
		r.log.Error("saving set log failed", "session_id", ls.id, "error", err)
		return nil, fmt.Errorf("saving set log: %w", err)
	}

	r.mu.Lock()
	delete(r.live, ls.id)
	r.mu.Unlock()

	r.log.Info("session finished", "session_id", ls.id, "sets", len(finished.Sets), "saved", saved,
		"duration", finished.FinishedAt.Sub(ls.startedAt).Round(time.Second).String())

	v := ls.view(res)
	v.Saved = saved
	return v, nil
}

func (ls *liveSession) view(res *workout.Result) *View {
	return &View{
		ID:        ls.id,
		PlanID:    ls.planID,
		PlanName:  ls.planName,
		StartedAt: ls.startedAt,
		State:     ls.session.Snapshot(),
		Result:    res,
	}
}
