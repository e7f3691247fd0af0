package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/inconshreveable/log15/v3"
	"github.com/wricardo/hangmen/game/engine"
	"github.com/wricardo/hangmen/game/service"
	"github.com/wricardo/hangmen/transport/websocket"
)

const maxBodyBytes = 1 << 16

// Server represents the HTTP API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
	logger  log15.Logger
	limiter *RateLimiter
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and game event logger.
func WithLogger(logger log15.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithRateLimiter limits requests per client address.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(s *Server) { s.limiter = limiter }
}

// NewServer creates a new API server. hub may be nil, in which case no
// updates are pushed and /ws is not served.
func NewServer(gameService service.GameService, hub *websocket.Hub, opts ...Option) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log15.New("component", "api")
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.recoverMiddleware, requestIDMiddleware, s.loggingMiddleware)
	if s.limiter != nil {
		s.router.Use(s.limiter.Middleware)
	}

	// Game calls
	s.router.HandleFunc("/new-session", s.handleNewSession).Methods(http.MethodPost)
	s.router.HandleFunc("/join-session", s.handleJoinSession).Methods(http.MethodPost)
	s.router.HandleFunc("/get-state", s.handleGetState).Methods(http.MethodPost)
	s.router.HandleFunc("/set-word", s.handleSetWord).Methods(http.MethodPost)
	s.router.HandleFunc("/guess-letter", s.handleGuessLetter).Methods(http.MethodPost)
	s.router.HandleFunc("/guess-word", s.handleGuessWord).Methods(http.MethodPost)
	s.router.HandleFunc("/exit-session", s.handleExitSession).Methods(http.MethodPost)
	s.router.HandleFunc("/reset-session", s.handleResetSession).Methods(http.MethodPost)

	// Session management
	s.router.HandleFunc("/sessions", s.handleListSessions).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	s.router.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	// Rules
	s.router.HandleFunc("/rules", s.handleListRules).Methods(http.MethodGet)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// gameRequest is the union of every game call's body.
type gameRequest struct {
	SessionID string `json:"sid"`
	PlayerID  string `json:"pid"`
	Name      string `json:"name"`
	Word      string `json:"word"`
	Letter    string `json:"letter"`
	Rules     string `json:"rules"`
}

var errMissingBody = fmt.Errorf("%w: request body required", engine.ErrInvalidInput)

// decodeRequest reads a JSON body and checks that every listed field is
// present. An empty body is allowed only when no field is required.
func decodeRequest(r *http.Request, required ...string) (*gameRequest, error) {
	var req gameRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req)
	switch {
	case errors.Is(err, io.EOF):
		if len(required) > 0 {
			return nil, errMissingBody
		}
	case err != nil:
		return nil, fmt.Errorf("%w: malformed JSON body: %v", engine.ErrInvalidInput, err)
	}

	values := map[string]string{
		"sid":    req.SessionID,
		"pid":    req.PlayerID,
		"name":   req.Name,
		"word":   req.Word,
		"letter": req.Letter,
	}
	var missing []string
	for _, field := range required {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing field(s): %s", engine.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return &req, nil
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

// respondEmpty acknowledges a mutation with a bare 200.
func respondEmpty(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("Request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	respondError(w, status, err.Error())
}

// publish logs the events of a mutation and pushes the new state to
// WebSocket subscribers.
func (s *Server) publish(sessionID string, result *service.ActionResult) {
	for _, ev := range result.Events {
		ctx := []interface{}{"sid", sessionID, "event", ev.Type}
		if ev.PlayerID != "" {
			ctx = append(ctx, "pid", ev.PlayerID)
		}
		if ev.Letter != "" {
			ctx = append(ctx, "letter", ev.Letter)
		}
		s.logger.Info(ev.Message, ctx...)
	}

	if s.hub != nil && result.State != nil && len(result.Events) > 0 {
		s.hub.BroadcastState(result.State.ID, result.State, result.Events)
	}
}

// Game Handlers

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	session, err := s.service.CreateSession(r.Context(), req.Rules)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info("Session created", "sid", session.ID, "rules", session.RulesName)
	respondText(w, session.ID)
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, "sid", "name")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.JoinSession(r.Context(), req.SessionID, req.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.publish(req.SessionID, result)
	respondText(w, result.PlayerID)
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, "sid")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	state, err := s.service.GetState(r.Context(), req.SessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSetWord(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, "sid", "pid", "word")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.SetWord(r.Context(), req.SessionID, req.PlayerID, req.Word)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.publish(req.SessionID, result)
	respondEmpty(w)
}

func (s *Server) handleGuessLetter(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, "sid", "letter")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.GuessLetter(r.Context(), req.SessionID, req.Letter)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.publish(req.SessionID, result)
	respondEmpty(w)
}

func (s *Server) handleGuessWord(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, "sid", "pid", "word")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.GuessWord(r.Context(), req.SessionID, req.PlayerID, req.Word)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.publish(req.SessionID, result)
	respondEmpty(w)
}

func (s *Server) handleExitSession(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, "sid", "pid")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.ExitSession(r.Context(), req.SessionID, req.PlayerID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.publish(req.SessionID, result)
	respondEmpty(w)
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r, "sid")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := s.service.ResetSession(r.Context(), req.SessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.publish(req.SessionID, result)
	respondEmpty(w)
}

// Session Handlers

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	total := len(sessions)

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	phase := query.Get("phase")    // optional phase filter
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy != "created" {
		sortBy = "accessed"
	}
	if order != "asc" {
		order = "desc"
	}

	if phase != "" {
		filtered := sessions[:0]
		for _, info := range sessions {
			if string(info.Phase) == phase {
				filtered = append(filtered, info)
			}
		}
		sessions = filtered
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else {
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			sessions = sessions[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.service.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info("Session deleted", "sid", sessionID)
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "session_deleted")
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.service.ListRules(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, rules)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sid")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "sid parameter required")
		return
	}

	state, err := s.service.GetState(r.Context(), sessionID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.hub.ServeWS(w, r, state.ID, state)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "healthy",
		"sessions": len(sessions),
	})
}
