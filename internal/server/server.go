// Package server is the read-mostly HTTP inspection API of memoryd.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/danielpatrickdp/scene-memory/internal/orchestrator"
	"github.com/danielpatrickdp/scene-memory/internal/similarity"
)

// Server is the memoryd HTTP API server.
type Server struct {
	orch       *orchestrator.Orchestrator
	strategies *similarity.Registry
	router     chi.Router
	version    string
	started    time.Time
}

// New creates a Server over orch.
func New(orch *orchestrator.Orchestrator, version string) *Server {
	s := &Server{
		orch:       orch,
		strategies: similarity.NewRegistry(),
		version:    version,
		started:    time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)

	r.Get("/memories", s.handleListMemories)
	r.Get("/memories/{label}", s.handleGetMemory)
	r.Get("/memories/{label}/associations", s.handleAssociations)
	r.Get("/path", s.handlePath)
	r.Post("/path/reinforce", s.handleReinforcePath)

	r.Get("/groups", s.handleListGroups)
	r.Get("/groups/{label}/recall", s.handleGroupRecall)
	r.Get("/frames", s.handleFrames)

	r.Get("/snapshots", s.handleSnapshots)
	r.Get("/commits", s.handleCommits)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"memories": s.orch.Memory().Len(),
		"snapshot": s.orch.Version(),
	})
}

// #region helpers
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[HTTP] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
// #endregion helpers
