package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/packworks/packtrack/internal/analytics"
	"github.com/packworks/packtrack/internal/hunt"
	"github.com/packworks/packtrack/internal/registry"
	"github.com/packworks/packtrack/internal/storage"
	"github.com/packworks/packtrack/internal/topology"
)

// Server is the HTTP adapter over one registry.
type Server struct {
	reg *registry.Registry
	hub *Hub
	log *zap.SugaredLogger
}

// NewServer wires the registry and hub into an HTTP server.
func NewServer(reg *registry.Registry, hub *Hub, log *zap.SugaredLogger) *Server {
	return &Server{reg: reg, hub: hub, log: log}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/hunts", s.handleListHunts).Methods(http.MethodGet)
	api.HandleFunc("/hunts", s.handleCreateHunt).Methods(http.MethodPost)
	api.HandleFunc("/hunts/{id}", s.handleGetHunt).Methods(http.MethodGet)
	api.HandleFunc("/hunts/{id}/timeline", s.handleTimeline).Methods(http.MethodGet)
	api.HandleFunc("/hunts/{id}/transition", s.handleTransition).Methods(http.MethodPost)
	api.HandleFunc("/hunts/{id}/complete", s.handleComplete).Methods(http.MethodPost)
	api.HandleFunc("/hunts/{id}/block", s.handleBlock).Methods(http.MethodPost)
	api.HandleFunc("/hunts/{id}/unblock", s.handleUnblock).Methods(http.MethodPost)
	api.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/analytics/report", s.handleReport).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.hub.ServeWS)
	return r
}

// ListenAndServe runs the server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Infow("dashboard listening", "addr", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleListHunts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := registry.ListOptions{
		Owner:  q.Get("owner"),
		Status: hunt.Status(q.Get("status")),
	}
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	opts.Offset, _ = strconv.Atoi(q.Get("offset"))

	hunts, total := s.reg.List(opts)
	writeJSON(w, http.StatusOK, map[string]any{
		"hunts": hunts,
		"total": total,
	})
}

type createHuntRequest struct {
	FeatureName string `json:"featureName"`
	Description string `json:"description"`
}

func (s *Server) handleCreateHunt(w http.ResponseWriter, r *http.Request) {
	var req createHuntRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.FeatureName == "" {
		writeError(w, http.StatusBadRequest, "featureName is required")
		return
	}

	h, err := s.reg.StartHunt(req.FeatureName, req.Description)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) handleGetHunt(w http.ResponseWriter, r *http.Request) {
	h, err := s.reg.Hunt(mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	h, err := s.reg.Hunt(mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           h.ID,
		"featureName":  h.FeatureName,
		"status":       h.Status,
		"currentPhase": h.CurrentPhase,
		"phaseHistory": h.PhaseHistory,
	})
}

type transitionRequest struct {
	Phase    string `json:"phase,omitempty"`
	Assignee string `json:"assignee,omitempty"`
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req transitionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	var h *hunt.Hunt
	var err error
	if req.Phase == "" {
		// No explicit target: advance along the topology sequence.
		h, err = s.reg.AdvanceHunt(id)
	} else {
		h, err = s.reg.TransitionHunt(id, req.Phase, req.Assignee)
	}
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	h, err := s.reg.CompleteHunt(mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

type blockRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	var req blockRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	h, err := s.reg.BlockHunt(mux.Vars(r)["id"], req.Reason)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleUnblock(w http.ResponseWriter, r *http.Request) {
	h, err := s.reg.UnblockHunt(mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	engine := analytics.NewFromSnapshot(s.reg.Snapshot())
	writeJSON(w, http.StatusOK, map[string]any{
		"statistics":  s.reg.Statistics(),
		"velocity":    engine.PackVelocity(1),
		"utilization": engine.RoleUtilization(),
		"quality":     engine.QualityMetrics(),
		"bottlenecks": engine.IdentifyBottlenecks(),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	engine := analytics.NewFromSnapshot(s.reg.Snapshot())
	report := engine.TeamReport(s.reg.PackName())

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(analytics.FormatReportAsMarkdown(report)))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeDomainError maps core errors onto HTTP statuses: unknown hunts are
// 404, validation failures 400, storage failures 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrHuntNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, hunt.ErrInvalidStateTransition),
		errors.Is(err, hunt.ErrPhaseSequenceViolation),
		errors.Is(err, topology.ErrUnknownColumn),
		errors.Is(err, topology.ErrInvalidTeamSize),
		errors.Is(err, topology.ErrRoleCountMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrStorage):
		s.log.Errorw("storage failure", "error", err)
		writeError(w, http.StatusInternalServerError, "storage failure")
	default:
		s.log.Errorw("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debugw("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
