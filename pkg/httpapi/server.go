// Package httpapi exposes the intake flow over HTTP for the web client.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ctrlfix/pkg/flow"
	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/metrics"
	"ctrlfix/pkg/proto"
	"ctrlfix/pkg/session"
	"ctrlfix/pkg/ticket"
)

// Server serves the session and ticket API.
type Server struct {
	orch     *flow.Orchestrator
	registry *session.Registry
	tickets  ticket.Store
	stats    *metrics.QueryService
	logger   *logx.Logger
}

// New builds the API server. tickets may be nil when no durable store is
// configured; ticket lookup endpoints then return 503.
func New(orch *flow.Orchestrator, registry *session.Registry, tickets ticket.Store) *Server {
	return &Server{
		orch:     orch,
		registry: registry,
		tickets:  tickets,
		logger:   logx.NewLogger("httpapi"),
	}
}

// WithStats enables the aggregated stats endpoint backed by Prometheus.
func (s *Server) WithStats(stats *metrics.QueryService) *Server {
	s.stats = stats
	return s
}

// Router assembles the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Post("/messages", s.handleMessage)
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
		})
		r.Get("/tickets/{ticketID}", s.handleGetTicket)
		r.Patch("/tickets/{ticketID}", s.handleUpdateTicket)
		r.Get("/logs", s.handleLogs)
		r.Get("/stats", s.handleStats)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}

type sessionCreated struct {
	SessionID string                 `json:"session_id"`
	TicketID  string                 `json:"ticket_id"`
	Response  proto.ResponseEnvelope `json:"response"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.orch.Start()
	// The empty first input triggers the welcome message.
	env := s.orch.ProcessInput(r.Context(), sess.ID, "")
	writeJSON(w, http.StatusCreated, sessionCreated{
		SessionID: sess.ID,
		TicketID:  sess.Fields.TicketID,
		Response:  env,
	})
}

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if s.registry.Get(id) == nil {
		writeJSON(w, http.StatusGone, errorBody{Error: "session expired"})
		return
	}
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	env := s.orch.ProcessInput(r.Context(), id, req.Message)
	writeJSON(w, http.StatusOK, env)
}

type sessionSnapshot struct {
	SessionID   string         `json:"session_id"`
	Step        string         `json:"step"`
	StepLabel   string         `json:"step_label"`
	Interrupted bool           `json:"interrupted"`
	Completed   bool           `json:"completed"`
	Fields      session.Fields `json:"fields"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess := s.registry.Get(id)
	if sess == nil {
		writeJSON(w, http.StatusGone, errorBody{Error: "session expired"})
		return
	}
	writeJSON(w, http.StatusOK, sessionSnapshot{
		SessionID:   sess.ID,
		Step:        sess.Step.String(),
		StepLabel:   sess.Step.Label(),
		Interrupted: sess.Interrupted,
		Completed:   sess.Step.Terminal(),
		Fields:      sess.Fields,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.registry.Delete(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	if s.tickets == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "ticket store not configured"})
		return
	}
	id := chi.URLParam(r, "ticketID")
	t, err := s.tickets.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "ticket not found"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type ticketPatch struct {
	AppointmentStatus string `json:"appointment_status"`
}

var validStatuses = map[string]bool{
	"pending": true, "booked": true, "received": true,
	"in_repair": true, "ready": true, "collected": true, "cancelled": true,
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	if s.tickets == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "ticket store not configured"})
		return
	}
	var patch ticketPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil || !validStatuses[patch.AppointmentStatus] {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid appointment_status"})
		return
	}
	id := chi.URLParam(r, "ticketID")
	if err := s.tickets.UpdateStatus(r.Context(), id, patch.AppointmentStatus); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "ticket not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ticket_id": id, "appointment_status": patch.AppointmentStatus})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "stats not configured"})
		return
	}
	stats, err := s.stats.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats query failed: %v", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "stats query failed"})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleLogs serves the in-memory log buffer to the diagnostics panel.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	component := r.URL.Query().Get("component")
	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid since timestamp"})
			return
		}
		since = ts
	}
	writeJSON(w, http.StatusOK, logx.Recent(component, since))
}
