package contract

import "context"

// Connector adapts one commerce platform's product/order API into the
// canonical shapes. Remote implementations perform no retries; transport or
// API failures surface as ErrUpstream, lookup misses as ErrNotFound.
type Connector interface {
	FetchProducts(ctx context.Context, store Store) ([]Product, error)
	SearchProducts(ctx context.Context, query string, store Store) ([]Product, error)
	GetProductDetails(ctx context.Context, productID string, store Store) (Product, error)
	CreateOrder(ctx context.Context, order OrderRequest, store Store) (OrderSummary, error)
	GetOrderStatus(ctx context.Context, orderID string, store Store) (OrderStatus, error)
}

// ConversationStore is the durable, ordered, per-session message log. All
// operations are keyed by session id and scoped by store id so a session id
// collision can never leak another tenant's history.
type ConversationStore interface {
	Append(ctx context.Context, msg Message) (Message, error)
	Read(ctx context.Context, sessionID, storeID string, limit int) ([]Message, error)
	Clear(ctx context.Context, sessionID, storeID string) error
	Stats(ctx context.Context, storeID string) (ConversationStats, error)
}

// ChatModel performs one synchronous chat completion over an ordered turn
// sequence and returns the assistant's reply text.
type ChatModel interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// StoreRepository resolves tenant configuration. Read-only to the chat core.
type StoreRepository interface {
	ByID(ctx context.Context, id string) (Store, error)
	ByAPIKey(ctx context.Context, apiKey string) (Store, error)
	ByDomain(ctx context.Context, domain string) (Store, error)
	ByIdentifier(ctx context.Context, identifier string) (Store, error)
}
