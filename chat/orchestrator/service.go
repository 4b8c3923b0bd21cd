// Package orchestrator wires intent extraction, catalog grounding, history,
// the model call, and persistence into one request/response cycle.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/chatcart/chatcart/chat/contract"
	"github.com/chatcart/chatcart/chat/intent"
	"github.com/chatcart/chatcart/chat/prompt"
)

const defaultHistoryLimit = 10

type Config struct {
	HistoryLimit int `envconfig:"HISTORY_LIMIT" split_words:"true" default:"10"`
}

// Request is one inbound chat turn. SessionID may be empty; a fresh one is
// generated and returned so the caller can continue the conversation.
type Request struct {
	Message   string
	SessionID string
	UserID    string
	Store     contractx.Store
}

type Response struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}

// Service is stateless across invocations: all conversation state lives in
// the externally-owned ConversationStore, so instances scale horizontally
// without sticky routing. Concurrent turns on the same session are not
// serialized; interleaved history writes are an accepted race.
type Service struct {
	catalog      contractx.Connector
	history      contractx.ConversationStore
	model        contractx.ChatModel
	historyLimit int

	newSessionID func() string
}

func New(catalog contractx.Connector, history contractx.ConversationStore, model contractx.ChatModel, cfg Config) (*Service, error) {
	if catalog == nil {
		return nil, errors.New("catalog gateway is required")
	}
	if history == nil {
		return nil, errors.New("conversation store is required")
	}
	if model == nil {
		return nil, errors.New("chat model is required")
	}

	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	return &Service{
		catalog:      catalog,
		history:      history,
		model:        model,
		historyLimit: limit,
		newSessionID: uuid.NewString,
	}, nil
}

// Respond executes one chat turn:
//
//  1. classify search intent (pure, cannot fail)
//  2. fetch grounding catalog data — failure aborts the turn, an
//     ungrounded prompt would produce unconstrained model output
//  3. read bounded history — failure degrades to an empty history
//  4. assemble system + history + user message
//  5. call the model — failure aborts, no local retry
//  6. persist both turns — failure is logged and swallowed so the user
//     still receives the generated reply
func (s *Service) Respond(ctx context.Context, req Request) (Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Response{}, fmt.Errorf("%w: message is required", contractx.ErrValidation)
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = s.newSessionID()
	}

	var (
		products []contractx.Product
		err      error
	)
	if terms, ok := intent.ExtractSearchTerms(message); ok {
		products, err = s.catalog.SearchProducts(ctx, terms, req.Store)
	} else {
		products, err = s.catalog.FetchProducts(ctx, req.Store)
	}
	if err != nil {
		return Response{}, fmt.Errorf("catalog grounding: %w", err)
	}

	history, err := s.history.Read(ctx, sessionID, req.Store.ID, s.historyLimit)
	if err != nil {
		log.Warn().Err(err).
			Str("session_id", sessionID).
			Str("store_id", req.Store.ID).
			Msg("history read failed, continuing with empty history")
		history = nil
	}

	turns := prompt.BuildMessages(products, req.Store, history, message, s.historyLimit)

	reply, err := s.model.Complete(ctx, turns)
	if err != nil {
		return Response{}, fmt.Errorf("model completion: %w", err)
	}

	s.persist(ctx, sessionID, req.Store.ID, req.UserID, message, reply)

	return Response{Reply: reply, SessionID: sessionID}, nil
}

// persist records the user turn then the assistant turn. Write failures
// after a successful completion never surface to the caller.
func (s *Service) persist(ctx context.Context, sessionID, storeID, userID, userMessage, reply string) {
	for _, msg := range []contractx.Message{
		{SessionID: sessionID, StoreID: storeID, UserID: userID, Role: contractx.RoleUser, Content: userMessage},
		{SessionID: sessionID, StoreID: storeID, UserID: userID, Role: contractx.RoleAssistant, Content: reply},
	} {
		if _, err := s.history.Append(ctx, msg); err != nil {
			log.Error().Err(err).
				Str("session_id", sessionID).
				Str("store_id", storeID).
				Str("role", msg.Role).
				Msg("failed to persist conversation turn")
		}
	}
}
