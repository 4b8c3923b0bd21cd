package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

const maxWebhookBody = 1 << 20

// handleShopifyWebhook verifies the HMAC-SHA256 signature against the
// store's webhook secret before acknowledging. Topic processing is
// best-effort; the platform retries on non-2xx.
func (s *Server) handleShopifyWebhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get("X-Shopify-Hmac-Sha256")
	if signature == "" {
		respondError(w, http.StatusUnauthorized, "missing HMAC signature")
		return
	}

	shopDomain := strings.TrimSpace(r.Header.Get("X-Shopify-Shop-Domain"))
	if shopDomain == "" {
		respondError(w, http.StatusBadRequest, "missing shop domain")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	store, err := s.stores.ByDomain(r.Context(), shopDomain)
	if err != nil {
		respondError(w, http.StatusNotFound, "store not found")
		return
	}

	if !verifyShopifySignature(body, signature, store.ShopifyWebhookSecret) {
		respondError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	topic := r.Header.Get("X-Shopify-Topic")
	log.Info().
		Str("topic", topic).
		Str("domain", shopDomain).
		Msg("received shopify webhook")

	switch topic {
	case "products/create", "products/update":
		// Catalog changed upstream; prompts are rebuilt per request so no
		// cache invalidation is needed yet.
	case "orders/create":
		// Order ingestion is handled by the dashboard subsystem.
	default:
		log.Info().Str("topic", topic).Msg("unhandled webhook topic")
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}

func verifyShopifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
