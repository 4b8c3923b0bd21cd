package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// respondFailure maps the error taxonomy to HTTP statuses. The caller sees
// a generic message; the wrapped detail is exposed only outside production.
func (s *Server) respondFailure(w http.ResponseWriter, err error, message string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, contractx.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, contractx.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, contractx.ErrUpstream):
		status = http.StatusBadGateway
	}

	resp := errorResponse{Error: message}
	if s.cfg.Environment == "development" {
		resp.Details = err.Error()
	}
	respondJSON(w, status, resp)
}
