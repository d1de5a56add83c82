package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/config"
	"github.com/ent0n29/realtybot/internal/dialogue"
	"github.com/ent0n29/realtybot/internal/listing"
	"github.com/ent0n29/realtybot/internal/observability"
	"github.com/ent0n29/realtybot/internal/protocol"
	"github.com/ent0n29/realtybot/internal/session"
	"github.com/ent0n29/realtybot/internal/wizard"
)

type Server struct {
	cfg      config.Config
	hub      *dialogue.Hub
	metrics  *observability.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader

	// Ready reports backend readiness for /readyz. Nil means always ready.
	Ready func(ctx context.Context) error
	// MetricsHandler serves /metrics; defaults to the global registry.
	MetricsHandler http.Handler
}

func New(cfg config.Config, hub *dialogue.Hub, metrics *observability.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:            cfg,
		hub:            hub,
		metrics:        metrics,
		logger:         logger,
		MetricsHandler: observability.MetricsHandler(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(cfg, r)
			},
		},
	}
}

// originAllowed accepts same-host browsers, the configured marketplace
// origins and clients that send no Origin at all.
func originAllowed(cfg config.Config, r *http.Request) bool {
	if cfg.AllowAnyOrigin {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range cfg.AllowedOrigins {
		if strings.EqualFold(strings.TrimRight(allowed, "/"), u.Scheme+"://"+u.Host) {
			return true
		}
	}
	return false
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	if s.cfg.AllowAnyOrigin || len(s.cfg.AllowedOrigins) > 0 {
		origins := s.cfg.AllowedOrigins
		if s.cfg.AllowAnyOrigin {
			origins = []string{"*"}
		}
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.MetricsHandler.ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Route("/v1/chat/session", func(r chi.Router) {
		r.Post("/", s.handleOpenSession)
		r.Get("/ws", s.handleSessionWS)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.withController(func(_ *http.Request, c *dialogue.Controller) (session.Snapshot, error) {
				return c.Snapshot(), nil
			}))
			r.Post("/message", s.withController(s.sendMessage))
			r.Post("/quick-reply", s.withController(s.selectQuickReply))
			r.Post("/schedule-viewing", s.withController(s.scheduleViewing))
			r.Post("/lead", s.withController(s.leadForm(protocol.LeadActionSubmit)))
			r.Post("/lead/next", s.withController(s.leadForm(protocol.LeadActionNext)))
			r.Post("/lead/back", s.withController(s.leadForm(protocol.LeadActionBack)))
			r.Post("/lead/cancel", s.withController(s.leadForm(protocol.LeadActionCancel)))
			r.Post("/clear", s.withController(func(r *http.Request, c *dialogue.Controller) (session.Snapshot, error) {
				return c.ClearConversation(r.Context()), nil
			}))
			r.Post("/voice/input", s.withController(s.voiceInput))
			r.Post("/voice/output", s.withController(func(r *http.Request, c *dialogue.Controller) (session.Snapshot, error) {
				return c.ToggleVoiceOutput(r.Context()), nil
			}))
			r.Post("/end", s.handleEndSession)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.Ready != nil {
		if err := s.Ready(r.Context()); err != nil {
			s.logger.Warn("readiness check failed", zap.Error(err))
			respondError(w, http.StatusServiceUnavailable, "not_ready", "backing services unavailable")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

type openRequest struct {
	ClientID string `json:"client_id"`
}

type openResponse struct {
	session.Snapshot
	InactivityTTLMS int64 `json:"inactivity_ttl_ms"`
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	_, snap := s.hub.Open(r.Context(), strings.TrimSpace(req.ClientID))
	respondJSON(w, http.StatusCreated, openResponse{
		Snapshot:        snap,
		InactivityTTLMS: s.cfg.SessionInactivityTimeout.Milliseconds(),
	})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	sess, err := s.hub.End(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

type controllerFunc func(r *http.Request, c *dialogue.Controller) (session.Snapshot, error)

// withController resolves {id} to a live controller and writes the
// resulting snapshot. Handler errors are client errors.
func (s *Server) withController(fn controllerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.hub.Get(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, http.StatusNotFound, "session_not_found", "session not found or expired")
			return
		}
		snap, err := fn(r, c)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		respondJSON(w, http.StatusOK, snap)
	}
}

type textRequest struct {
	Text string `json:"text"`
}

func (s *Server) sendMessage(r *http.Request, c *dialogue.Controller) (session.Snapshot, error) {
	var req textRequest
	if err := decodeJSON(r, &req); err != nil {
		return session.Snapshot{}, err
	}
	if err := protocol.ValidateText(req.Text); err != nil {
		return session.Snapshot{}, err
	}
	return c.SendUserMessage(r.Context(), req.Text), nil
}

type actionRequest struct {
	Action string `json:"action"`
}

func (s *Server) selectQuickReply(r *http.Request, c *dialogue.Controller) (session.Snapshot, error) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		return session.Snapshot{}, err
	}
	if strings.TrimSpace(req.Action) == "" {
		return session.Snapshot{}, errors.New("action is required")
	}
	return c.SelectQuickReply(r.Context(), req.Action), nil
}

type viewingRequest struct {
	Property listing.PropertyRef `json:"property"`
}

func (s *Server) scheduleViewing(r *http.Request, c *dialogue.Controller) (session.Snapshot, error) {
	var req viewingRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		return session.Snapshot{}, err
	}
	return c.ScheduleViewingFor(r.Context(), req.Property), nil
}

type leadRequest struct {
	Fields wizard.Draft `json:"fields"`
}

func (s *Server) leadForm(action string) controllerFunc {
	return func(r *http.Request, c *dialogue.Controller) (session.Snapshot, error) {
		var req leadRequest
		if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			return session.Snapshot{}, err
		}
		return applyLeadAction(r.Context(), c, action, req.Fields), nil
	}
}

func applyLeadAction(ctx context.Context, c *dialogue.Controller, action string, fields wizard.Draft) session.Snapshot {
	switch action {
	case protocol.LeadActionNext:
		return c.AdvanceLeadForm(ctx, fields)
	case protocol.LeadActionBack:
		return c.BackLeadForm(ctx)
	case protocol.LeadActionCancel:
		return c.CancelLeadForm(ctx)
	default:
		return c.SubmitLeadForm(ctx, fields)
	}
}

type voiceInputRequest struct {
	// Failed reports a recognition error instead of a user toggle.
	Failed bool `json:"failed"`
}

func (s *Server) voiceInput(r *http.Request, c *dialogue.Controller) (session.Snapshot, error) {
	var req voiceInputRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		return session.Snapshot{}, err
	}
	if req.Failed {
		return c.VoiceInputFailed(r.Context()), nil
	}
	return c.ToggleVoiceInput(r.Context()), nil
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
