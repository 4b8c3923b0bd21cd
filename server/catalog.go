package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "store not resolved")
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "search query is required")
		return
	}

	products, err := s.catalog.SearchProducts(r.Context(), sanitizeString(query), store)
	if err != nil {
		s.respondFailure(w, err, "failed to search products")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleProductDetails(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "store not resolved")
		return
	}

	productID := chi.URLParam(r, "productID")
	product, err := s.catalog.GetProductDetails(r.Context(), productID, store)
	if err != nil {
		s.respondFailure(w, err, "failed to get product details")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"product": product})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "store not resolved")
		return
	}

	var order contractx.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validateOrderRequest(order); len(errs) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid order data",
			"details": errs,
		})
		return
	}

	log.Info().
		Str("store_id", store.ID).
		Int("items", len(order.Items)).
		Msg("creating order")

	summary, err := s.catalog.CreateOrder(r.Context(), order, store)
	if err != nil {
		s.respondFailure(w, err, "failed to create order")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"order": summary})
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	store, ok := storeFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "store not resolved")
		return
	}

	orderID := chi.URLParam(r, "orderID")
	status, err := s.catalog.GetOrderStatus(r.Context(), orderID, store)
	if err != nil {
		s.respondFailure(w, err, "failed to get order status")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": status})
}
