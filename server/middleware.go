package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

type contextKey string

const storeContextKey contextKey = "store"

// withStore resolves the tenant from the X-API-Key header and rejects
// requests for unknown or deactivated stores.
func (s *Server) withStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if apiKey == "" {
			respondError(w, http.StatusUnauthorized, "missing API key")
			return
		}

		store, err := s.stores.ByAPIKey(r.Context(), apiKey)
		if err != nil {
			log.Warn().Err(err).Msg("store lookup failed")
			respondError(w, http.StatusUnauthorized, "invalid API key")
			return
		}
		if !store.Active {
			respondError(w, http.StatusForbidden, "store is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), storeContextKey, store)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func storeFromContext(ctx context.Context) (contractx.Store, bool) {
	store, ok := ctx.Value(storeContextKey).(contractx.Store)
	return store, ok
}

// cors allows a single origin per response: either the wildcard, or the
// request's Origin echoed back when it is on the configured list.
func (s *Server) cors(next http.Handler) http.Handler {
	wildcard := len(s.cfg.AllowedOrigins) == 0
	allowed := make(map[string]bool, len(s.cfg.AllowedOrigins))
	for _, origin := range s.cfg.AllowedOrigins {
		if origin == "*" {
			wildcard = true
			continue
		}
		allowed[strings.TrimRight(origin, "/")] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case wildcard:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
