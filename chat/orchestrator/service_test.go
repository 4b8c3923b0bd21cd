package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

type catalogCall struct {
	op    string
	query string
}

type fakeCatalog struct {
	products []contractx.Product
	err      error
	calls    []catalogCall
}

func (f *fakeCatalog) FetchProducts(ctx context.Context, store contractx.Store) ([]contractx.Product, error) {
	f.calls = append(f.calls, catalogCall{op: "fetch"})
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, query string, store contractx.Store) ([]contractx.Product, error) {
	f.calls = append(f.calls, catalogCall{op: "search", query: query})
	if f.err != nil {
		return nil, f.err
	}
	return f.products, nil
}

func (f *fakeCatalog) GetProductDetails(ctx context.Context, productID string, store contractx.Store) (contractx.Product, error) {
	return contractx.Product{}, errors.New("not used")
}

func (f *fakeCatalog) CreateOrder(ctx context.Context, order contractx.OrderRequest, store contractx.Store) (contractx.OrderSummary, error) {
	return contractx.OrderSummary{}, errors.New("not used")
}

func (f *fakeCatalog) GetOrderStatus(ctx context.Context, orderID string, store contractx.Store) (contractx.OrderStatus, error) {
	return contractx.OrderStatus{}, errors.New("not used")
}

type fakeHistory struct {
	messages  []contractx.Message
	readErr   error
	appendErr error
	appended  []contractx.Message
	reads     int
}

func (f *fakeHistory) Append(ctx context.Context, msg contractx.Message) (contractx.Message, error) {
	if f.appendErr != nil {
		return contractx.Message{}, f.appendErr
	}
	msg.ID = int64(len(f.appended) + 1)
	f.appended = append(f.appended, msg)
	return msg, nil
}

func (f *fakeHistory) Read(ctx context.Context, sessionID, storeID string, limit int) ([]contractx.Message, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.messages) > limit {
		return f.messages[len(f.messages)-limit:], nil
	}
	return f.messages, nil
}

func (f *fakeHistory) Clear(ctx context.Context, sessionID, storeID string) error {
	return nil
}

func (f *fakeHistory) Stats(ctx context.Context, storeID string) (contractx.ConversationStats, error) {
	return contractx.ConversationStats{}, nil
}

type fakeModel struct {
	reply string
	err   error
	calls [][]contractx.Turn
}

func (f *fakeModel) Complete(ctx context.Context, turns []contractx.Turn) (string, error) {
	f.calls = append(f.calls, turns)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestService(t *testing.T, catalog *fakeCatalog, history *fakeHistory, model *fakeModel) *Service {
	t.Helper()
	svc, err := New(catalog, history, model, Config{HistoryLimit: 10})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.newSessionID = func() string { return "generated-session" }
	return svc
}

func testStore() contractx.Store {
	return contractx.Store{ID: "store-1", Name: "Acme", Platform: contractx.PlatformStatic}
}

func TestRespondEmptyMessageIsValidationError(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	history := &fakeHistory{}
	model := &fakeModel{reply: "hi"}
	svc := newTestService(t, catalog, history, model)

	_, err := svc.Respond(context.Background(), Request{Message: "   ", Store: testStore()})
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(catalog.calls) != 0 {
		t.Fatalf("no catalog call expected, got %+v", catalog.calls)
	}
	if len(model.calls) != 0 {
		t.Fatal("no model call expected")
	}
	if history.reads != 0 || len(history.appended) != 0 {
		t.Fatal("no store access expected")
	}
}

func TestRespondSearchIntentUsesSearch(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{products: []contractx.Product{{Name: "Running Shoes", Price: "$89.00", Category: "Footwear"}}}
	history := &fakeHistory{}
	model := &fakeModel{reply: "We have Running Shoes for $89.00."}
	svc := newTestService(t, catalog, history, model)

	resp, err := svc.Respond(context.Background(), Request{
		Message:   "show me running shoes",
		SessionID: "sess-1",
		Store:     testStore(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reply != model.reply {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
	if len(catalog.calls) != 1 || catalog.calls[0].op != "search" || catalog.calls[0].query != "running shoes" {
		t.Fatalf("expected one search call with extracted terms, got %+v", catalog.calls)
	}
}

func TestRespondGeneralQueryFetchesFullCatalog(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	history := &fakeHistory{}
	model := &fakeModel{reply: "Returns are accepted within 30 days."}
	svc := newTestService(t, catalog, history, model)

	if _, err := svc.Respond(context.Background(), Request{
		Message:   "what's your return policy",
		SessionID: "sess-1",
		Store:     testStore(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(catalog.calls) != 1 || catalog.calls[0].op != "fetch" {
		t.Fatalf("expected one full fetch, got %+v", catalog.calls)
	}
}

func TestRespondCatalogFailureAbortsTurn(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{err: fmt.Errorf("%w: platform down", contractx.ErrUpstream)}
	history := &fakeHistory{}
	model := &fakeModel{reply: "unused"}
	svc := newTestService(t, catalog, history, model)

	_, err := svc.Respond(context.Background(), Request{Message: "hello", SessionID: "sess-1", Store: testStore()})
	if !errors.Is(err, contractx.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if len(model.calls) != 0 {
		t.Fatal("model must not be called without grounding data")
	}
	if len(history.appended) != 0 {
		t.Fatal("no messages may be persisted on an aborted turn")
	}
}

func TestRespondHistoryReadFailureDegrades(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	history := &fakeHistory{readErr: fmt.Errorf("%w: connection refused", contractx.ErrPersistence)}
	model := &fakeModel{reply: "hello there"}
	svc := newTestService(t, catalog, history, model)

	resp, err := svc.Respond(context.Background(), Request{Message: "hello", SessionID: "sess-1", Store: testStore()})
	if err != nil {
		t.Fatalf("history read failure must not abort the turn: %v", err)
	}
	if resp.Reply != "hello there" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}

	// The sequence degrades to system + new user message only.
	if len(model.calls) != 1 || len(model.calls[0]) != 2 {
		t.Fatalf("expected 2-turn sequence, got %d", len(model.calls[0]))
	}
	// Best-effort persistence is still attempted for both turns.
	if len(history.appended) != 2 {
		t.Fatalf("expected both turns persisted, got %d", len(history.appended))
	}
}

func TestRespondModelFailureAborts(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	history := &fakeHistory{}
	model := &fakeModel{err: fmt.Errorf("%w: rate limited", contractx.ErrUpstream)}
	svc := newTestService(t, catalog, history, model)

	_, err := svc.Respond(context.Background(), Request{Message: "hello", SessionID: "sess-1", Store: testStore()})
	if !errors.Is(err, contractx.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if len(history.appended) != 0 {
		t.Fatal("nothing may be persisted when the model call fails")
	}
}

func TestRespondPersistenceFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	history := &fakeHistory{appendErr: fmt.Errorf("%w: disk full", contractx.ErrPersistence)}
	model := &fakeModel{reply: "still delivered"}
	svc := newTestService(t, catalog, history, model)

	resp, err := svc.Respond(context.Background(), Request{Message: "hello", SessionID: "sess-1", Store: testStore()})
	if err != nil {
		t.Fatalf("write failure after a successful reply must not surface: %v", err)
	}
	if resp.Reply != "still delivered" {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
}

func TestRespondAssemblesSequenceInOrder(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{messages: []contractx.Message{
		{Role: contractx.RoleUser, Content: "hi"},
		{Role: contractx.RoleAssistant, Content: "hello!"},
	}}
	catalog := &fakeCatalog{products: []contractx.Product{{Name: "Mug", Price: "$12.00", Category: "Kitchen"}}}
	model := &fakeModel{reply: "ok"}
	svc := newTestService(t, catalog, history, model)

	if _, err := svc.Respond(context.Background(), Request{Message: "anything else?", SessionID: "sess-1", Store: testStore()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := model.calls[0]
	if len(turns) != 4 {
		t.Fatalf("expected system + 2 history + user, got %d", len(turns))
	}
	if turns[0].Role != contractx.RoleSystem || !strings.Contains(turns[0].Content, "Mug - $12.00 (Kitchen)") {
		t.Fatalf("system turn missing catalog grounding: %+v", turns[0])
	}
	if turns[1].Content != "hi" || turns[2].Content != "hello!" {
		t.Fatalf("history turns out of order: %+v", turns[1:3])
	}
	if turns[3].Role != contractx.RoleUser || turns[3].Content != "anything else?" {
		t.Fatalf("last turn must be the new user message: %+v", turns[3])
	}
}

func TestRespondHistoryWindowBound(t *testing.T) {
	t.Parallel()

	history := &fakeHistory{}
	for i := 0; i < 30; i++ {
		history.messages = append(history.messages, contractx.Message{
			Role:    contractx.RoleUser,
			Content: fmt.Sprintf("old %d", i),
		})
	}
	catalog := &fakeCatalog{}
	model := &fakeModel{reply: "ok"}
	svc := newTestService(t, catalog, history, model)

	if _, err := svc.Respond(context.Background(), Request{Message: "ping", SessionID: "sess-1", Store: testStore()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	turns := model.calls[0]
	if len(turns) != 12 {
		t.Fatalf("sequence must be 1 system + 10 history + 1 user, got %d", len(turns))
	}
}

func TestRespondGeneratesSessionID(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	history := &fakeHistory{}
	model := &fakeModel{reply: "welcome"}
	svc := newTestService(t, catalog, history, model)

	resp, err := svc.Respond(context.Background(), Request{Message: "hello", Store: testStore()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.SessionID != "generated-session" {
		t.Fatalf("expected generated session id, got %q", resp.SessionID)
	}
	for _, msg := range history.appended {
		if msg.SessionID != "generated-session" {
			t.Fatalf("persisted turn carries wrong session id: %+v", msg)
		}
	}
}

func TestRespondPersistsUserThenAssistant(t *testing.T) {
	t.Parallel()

	catalog := &fakeCatalog{}
	history := &fakeHistory{}
	model := &fakeModel{reply: "the answer"}
	svc := newTestService(t, catalog, history, model)

	if _, err := svc.Respond(context.Background(), Request{
		Message:   "a question",
		SessionID: "sess-1",
		UserID:    "user-9",
		Store:     testStore(),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(history.appended) != 2 {
		t.Fatalf("expected 2 persisted turns, got %d", len(history.appended))
	}
	if history.appended[0].Role != contractx.RoleUser || history.appended[0].Content != "a question" {
		t.Fatalf("first write must be the user turn: %+v", history.appended[0])
	}
	if history.appended[1].Role != contractx.RoleAssistant || history.appended[1].Content != "the answer" {
		t.Fatalf("second write must be the assistant turn: %+v", history.appended[1])
	}
	if history.appended[0].StoreID != "store-1" || history.appended[0].UserID != "user-9" {
		t.Fatalf("persisted turn missing tenancy fields: %+v", history.appended[0])
	}
}
