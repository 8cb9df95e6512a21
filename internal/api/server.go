package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/alertboard/internal/api/handler"
	mw "github.com/edvin/alertboard/internal/api/middleware"
	"github.com/edvin/alertboard/internal/config"
	"github.com/edvin/alertboard/internal/view"
)

// Backend is the alerting backend as seen by the proxy routes and readiness.
type Backend interface {
	handler.Backend
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Backend  Backend
	Sessions *view.Sessions
	Teams    handler.TeamLister
}

type Server struct {
	router chi.Router
	logger zerolog.Logger
	deps   Deps
	cfg    *config.Config
}

func NewServer(logger zerolog.Logger, deps Deps, cfg *config.Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		logger: logger,
		deps:   deps,
		cfg:    cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
	s.router.Use(mw.CORS(s.cfg.CORSOrigins))
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	// Same-origin proxy to the alerting backend
	proxy := handler.NewProxy(s.deps.Backend)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/incidents/{team}", proxy.Incidents)
		r.Get("/teams", proxy.Teams)
	})

	dashboard := handler.NewDashboard(s.deps.Sessions, s.cfg.Location(), s.cfg.SessionIdleTimeout)
	page := handler.NewPage(dashboard, s.deps.Teams)
	s.router.Route("/dashboard/{team}", func(r chi.Router) {
		r.Get("/", page.Show)
		r.Post("/refresh", dashboard.Refresh)
		r.Get("/state", dashboard.State)

		// Chart
		r.Get("/chart.png", dashboard.Chart)
		r.Post("/chart/toggle", dashboard.ToggleSeries)

		// Table
		r.Put("/table/urgency", dashboard.SetUrgency)
		r.Put("/table/filters", dashboard.SetFilters)
		r.Put("/table/sorting", dashboard.SetSorting)
		r.Put("/table/pagination", dashboard.SetPagination)
		r.Put("/table/visibility", dashboard.SetVisibility)
		r.Put("/table/selection", dashboard.SetSelection)
		r.Post("/table/move", dashboard.MoveRow)

		// Annotations
		r.Post("/incidents/{incident_id}/annotation", dashboard.SaveAnnotation)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.deps.Backend.Ping(ctx); err != nil {
		checks["backend"] = err.Error()
		healthy = false
	} else {
		checks["backend"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
