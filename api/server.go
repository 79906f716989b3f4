package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mastermind/game/engine"
	"github.com/wricardo/mastermind/game/leaderboard"
	"github.com/wricardo/mastermind/game/service"
	"github.com/wricardo/mastermind/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/slots/{index}", s.handlePlaceSymbol).Methods("PUT")
	api.HandleFunc("/sessions/{id}/slots/{index}", s.handleClearSlot).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/finalize", s.handleFinalize).Methods("POST")
	api.HandleFunc("/sessions/{id}/guess", s.handleGuess).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Leaderboard
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods("GET")

	// Configuration
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Operations
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondMessage(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, map[string]string{"error": message, "kind": kind})
}

// respondError maps a service error to an HTTP status by its kind
func respondError(w http.ResponseWriter, err error) {
	kind := service.ErrorKind(err)
	respondMessage(w, statusForKind(kind), kind, err.Error())
}

func statusForKind(kind string) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindAlreadyExists:
		return http.StatusConflict
	case service.KindInvalidSymbol, service.KindIndexOutOfRange, service.KindLengthMismatch,
		service.KindInvalidArgument, service.KindInvalidConfig:
		return http.StatusBadRequest
	case service.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// broadcast pushes the latest snapshot to WebSocket clients of a session
func (s *Server) broadcast(info *service.SessionInfo) {
	if s.hub == nil || info == nil {
		return
	}
	s.hub.BroadcastToSession(info.ID, info.State)
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerName string `json:"player_name"`
		ConfigID   string `json:"config_id,omitempty"`
		ConfigName string `json:"config_name,omitempty"` // Deprecated, use config_id
	}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondMessage(w, http.StatusBadRequest, service.KindInvalidArgument, "Invalid request body")
			return
		}
	}

	// Support both parameter names, but prefer config_id
	configID := req.ConfigID
	if configID == "" && req.ConfigName != "" {
		configID = req.ConfigName
	}

	info, err := s.service.CreateSession(r.Context(), req.PlayerName, configID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
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

	total := len(sessions)
	limit := total
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < total {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handlePlaceSymbol(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, service.KindIndexOutOfRange, "slot index must be an integer")
		return
	}

	var req struct {
		Symbol *string `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Symbol == nil {
		respondMessage(w, http.StatusBadRequest, service.KindInvalidArgument, "Invalid request body, expected {\"symbol\": ...}")
		return
	}

	info, err := s.service.PlaceSymbol(r.Context(), sessionID, index, engine.Symbol(*req.Symbol))
	if err != nil {
		respondError(w, err)
		return
	}

	s.broadcast(info)
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleClearSlot(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		respondMessage(w, http.StatusBadRequest, service.KindIndexOutOfRange, "slot index must be an integer")
		return
	}

	info, err := s.service.ClearSlot(r.Context(), sessionID, index)
	if err != nil {
		respondError(w, err)
		return
	}

	s.broadcast(info)
	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.FinalizeTurn(r.Context(), sessionID)
	s.respondTurn(w, r, sessionID, result, err)
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Guess []string `json:"guess"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, service.KindInvalidArgument, "Invalid request body, expected {\"guess\": [...]}")
		return
	}

	result, err := s.service.SubmitGuess(r.Context(), sessionID, engine.ParseCode(req.Guess...))
	s.respondTurn(w, r, sessionID, result, err)
}

// respondTurn writes a turn result and notifies WebSocket clients. A
// leaderboard failure still applied the turn, so clients are refreshed
// before the error is reported.
func (s *Server) respondTurn(w http.ResponseWriter, r *http.Request, sessionID string, result *service.TurnResult, err error) {
	if err != nil {
		if errors.Is(err, leaderboard.ErrPersistence) {
			if info, getErr := s.service.GetSession(r.Context(), sessionID); getErr == nil {
				s.broadcast(info)
			}
		}
		respondError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.BroadcastToSession(sessionID, result.State)
		for _, event := range result.Events {
			if event.Type == "won" || event.Type == "lost" {
				s.hub.BroadcastEvent(sessionID, event.Type, result)
			}
		}
	}

	log.Info().
		Str("session", sessionID).
		Str("guess", result.Guess.String()).
		Int("bulls", result.Score.Bulls).
		Int("cows", result.Score.Cows).
		Str("status", string(result.Status)).
		Bool("applied", result.Applied).
		Msg("turn finalized")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.Restart(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}

	s.broadcast(info)
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, "restart", nil)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game restarted successfully",
		"session": info,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	opts := service.HistoryOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	history, err := s.service.GetHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Leaderboard Handler

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.GetLeaderboard(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	config, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, config)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ConfigID string `json:"config_id"`
		engine.GameConfig
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, service.KindInvalidArgument, "Invalid request body")
		return
	}

	// The display name doubles as the file name when no config_id is given
	configID := req.ConfigID
	if configID == "" {
		configID = req.Name
	}
	if configID == "" {
		respondMessage(w, http.StatusBadRequest, service.KindInvalidArgument, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), configID, &req.GameConfig); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": configID,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	if s.hub == nil {
		http.Error(w, "WebSocket updates are disabled", http.StatusServiceUnavailable)
		return
	}

	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
