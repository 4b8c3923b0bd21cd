package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/chatcart/chatcart/chat/orchestrator"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "store not resolved")
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	log.Info().
		Str("store_id", store.ID).
		Str("session_id", payload.SessionID).
		Msg("processing chat request")

	resp, err := s.responder.Respond(r.Context(), orchestratorx.Request{
		Message:   sanitizeString(payload.Message),
		SessionID: payload.SessionID,
		UserID:    payload.UserID,
		Store:     store,
	})
	if err != nil {
		log.Error().Err(err).Str("store_id", store.ID).Msg("chat turn failed")
		s.respondFailure(w, err, "failed to process chat request")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "store not resolved")
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	history, err := s.conversations.Read(r.Context(), sessionID, store.ID, s.cfg.HistoryPageSize)
	if err != nil {
		s.respondFailure(w, err, "failed to get chat history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "store not resolved")
		return
	}

	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	if err := s.conversations.Clear(r.Context(), sessionID, store.ID); err != nil {
		s.respondFailure(w, err, "failed to clear chat history")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "store not resolved")
		return
	}

	stats, err := s.conversations.Stats(r.Context(), store.ID)
	if err != nil {
		s.respondFailure(w, err, "failed to get chat statistics")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
