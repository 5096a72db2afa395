package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/pprof"
	"time"

	"gopitch/internal"
	"gopitch/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
)

// OpsServer is the operational sidecar: health, readiness, and profiling
// on a separate port so they never share middleware with the public API
type OpsServer struct {
	router   *chi.Mux
	db       *sqlx.DB
	sessions *session.Manager
	logger   *internal.Logger
}

// NewOpsServer builds the ops router
func NewOpsServer(db *sqlx.DB, sessions *session.Manager, logger *internal.Logger) *OpsServer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	o := &OpsServer{
		router:   chi.NewRouter(),
		db:       db,
		sessions: sessions,
		logger:   logger,
	}
	o.setupRoutes()
	return o
}

func (o *OpsServer) setupRoutes() {
	o.router.Use(middleware.Recoverer)

	o.router.Get("/healthz", o.handleHealth)
	o.router.Get("/readyz", o.handleReady)
	o.router.Get("/statusz", o.handleStatus)

	o.router.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Get("/{name}", func(w http.ResponseWriter, req *http.Request) {
			pprof.Handler(chi.URLParam(req, "name")).ServeHTTP(w, req)
		})
	})
}

func (o *OpsServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// handleStatus reports live session load
func (o *OpsServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"active_sessions": o.sessions.ActiveCount(),
		"time":            time.Now().UTC(),
	})
}

// handleReady answers 503 until the database responds to a ping
func (o *OpsServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := o.db.PingContext(ctx); err != nil {
		o.logger.Warn("readiness ping failed: %v", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Router exposes the chi mux (used by tests)
func (o *OpsServer) Router() http.Handler {
	return o.router
}

// Start runs the ops listener
func (o *OpsServer) Start(addr string) error {
	o.logger.Info("ops server listening on %s", addr)
	return http.ListenAndServe(addr, o.router)
}
