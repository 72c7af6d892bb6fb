package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/repcoach/internal/ingest/plan"
	repmcp "github.com/claude/repcoach/internal/mcp"
	"github.com/claude/repcoach/internal/models"
	"github.com/claude/repcoach/internal/sessions"
	"github.com/claude/repcoach/internal/storage"
	"github.com/claude/repcoach/internal/workout"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Store is the data layer used by the HTTP handlers.
type Store interface {
	ListPlans(ctx context.Context, userID int) ([]models.PlanRow, error)
	GetPlan(ctx context.Context, planID uuid.UUID, userID int) (*models.PlanRow, []workout.ExerciseSetRow, error)
	InsertSetLog(ctx context.Context, rows []models.SetLogRow) (int64, error)
	QuerySetLogs(ctx context.Context, start, end time.Time, userID int, exerciseFilter string) ([]models.SetLogRow, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	plans    *plan.Provider
	sessions *sessions.Registry
	log      *slog.Logger
	apiKey   string
	ident    func(http.Handler) http.Handler
	router   chi.Router
}

// New creates a new Server with all routes configured. Requests run as the
// local dev user until SetTailscale is called.
func New(db Store, plans *plan.Provider, registry *sessions.Registry, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		plans:    plans,
		sessions: registry,
		log:      log,
		apiKey:   apiKey,
		ident:    DevIdentity,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/me", s.handleMe)
		r.Get("/stats", s.handleStats)

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.handleListPlans)
			r.Get("/{id}", s.handleGetPlan)
			r.Get("/{id}/overview", s.handlePlanOverview)

			// Plan ingest (API key required)
			r.Group(func(r chi.Router) {
				r.Use(APIKeyAuth(s.apiKey))
				r.Post("/", s.handlePlanIngest)
				r.Post("/csv", s.handlePlanCSVIngest)
			})
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleDiscardSession)
			r.Post("/{id}/{action}", s.handleSessionAction)
		})

		r.Get("/setlogs", s.handleQuerySetLogs)
		r.With(APIKeyAuth(s.apiKey)).Post("/setlogs", s.handleUploadSetLog)
	})
}

// identity defers to the current identity middleware so SetTailscale can
// switch it after the routes are built.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.ident(next).ServeHTTP(w, r)
	})
}

// SetTailscale resolves every request's user through Tailscale WhoIs.
func (s *Server) SetTailscale(wc whoIser) {
	s.ident = TailscaleIdentity(wc, s.db, s.log)
}

// MountMCP serves the MCP server over streamable HTTP at /mcp, scoped to the
// user resolved by the identity middleware.
func (s *Server) MountMCP(m *mcpserver.MCPServer) {
	h := mcpserver.NewStreamableHTTPServer(m,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return repmcp.WithUserID(ctx, userIDFromContext(r))
		}),
	)
	s.router.Handle("/mcp", h)
}
