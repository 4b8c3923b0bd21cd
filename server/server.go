// Package server exposes the chat core over HTTP. Routing, tenant
// resolution, and rate limiting live here; all domain behavior stays in the
// chat packages.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	contractx "github.com/chatcart/chatcart/chat/contract"
	orchestratorx "github.com/chatcart/chatcart/chat/orchestrator"
)

type Config struct {
	Addr            string        `split_words:"true" default:":8080"`
	Environment     string        `split_words:"true" default:"production"`
	AllowedOrigins  []string      `split_words:"true" default:"*"`
	HistoryPageSize int           `split_words:"true" default:"50"`
	RateLimitWindow time.Duration `split_words:"true" default:"1m"`
	RateLimitMax    int           `split_words:"true" default:"60"`
}

// Responder is the single inbound operation of the chat core.
type Responder interface {
	Respond(ctx context.Context, req orchestratorx.Request) (orchestratorx.Response, error)
}

type Server struct {
	cfg           Config
	responder     Responder
	catalog       contractx.Connector
	conversations contractx.ConversationStore
	stores        contractx.StoreRepository
}

func New(cfg Config, responder Responder, catalog contractx.Connector, conversations contractx.ConversationStore, stores contractx.StoreRepository) *Server {
	return &Server{
		cfg:           cfg,
		responder:     responder,
		catalog:       catalog,
		conversations: conversations,
		stores:        stores,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.cors)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(newRateLimiter(s.cfg.RateLimitWindow, s.cfg.RateLimitMax).middleware)
		api.Use(s.withStore)

		api.Post("/chat", s.handleChat)
		api.Get("/chat/history", s.handleGetHistory)
		api.Delete("/chat/history", s.handleClearHistory)
		api.Get("/chat/stats", s.handleStats)

		api.Get("/products/search", s.handleSearchProducts)
		api.Get("/products/{productID}", s.handleProductDetails)

		api.Post("/orders", s.handleCreateOrder)
		api.Get("/orders/{orderID}", s.handleOrderStatus)
	})

	r.Post("/webhooks/shopify", s.handleShopifyWebhook)

	return r
}
