package contract

import "time"

// Platform identifies which commerce backend a store is connected to.
type Platform string

const (
	PlatformShopify Platform = "shopify"
	PlatformWoo     Platform = "woo"
	PlatformStatic  Platform = "static"
)

// Store is the tenant configuration. It is owned by the dashboard subsystem
// and read-only to the chat core. Platform determines which credential
// fields are meaningful; credentials are opaque strings passed through to
// the matching connector unmodified.
type Store struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Domain   string   `json:"domain"`
	Platform Platform `json:"platform"`

	APIKey               string `json:"-"`
	ShopifyToken         string `json:"-"`
	ShopifyWebhookSecret string `json:"-"`
	WooKey               string `json:"-"`
	WooSecret            string `json:"-"`

	BotName        string `json:"bot_name"`
	WelcomeMessage string `json:"welcome_message"`
	Tone           string `json:"tone"`
	Language       string `json:"language"`

	Active       bool   `json:"active"`
	MessageQuota int    `json:"message_quota"`
	PlanTier     string `json:"plan_tier"`
}

// DisplayName is the persona name the assistant introduces itself with.
func (s Store) DisplayName() string {
	if s.BotName != "" {
		return s.BotName
	}
	if s.Name != "" {
		return s.Name
	}
	return "the store"
}

// Product is the canonical, connector-normalized product shape. Every
// connector must produce exactly this shape regardless of source schema.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Variants    []Variant `json:"variants,omitempty"`
}

// Variant is one purchasable variation of a product.
type Variant struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Price             float64 `json:"price"`
	SKU               string  `json:"sku"`
	InventoryQuantity int     `json:"inventory_quantity"`
}

// Message roles as persisted and as presented to the model.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted conversation turn. Ordering within a session is
// by timestamp ascending; the log is append-only.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	StoreID   string    `json:"store_id"`
	UserID    string    `json:"user_id,omitempty"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Turn is a role/content pair in the model-input sequence.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OrderItem is one line item in a canonical order request. Price is only
// consulted by the static connector, which has no platform to price against.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	VariantID string  `json:"variant_id,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
}

// Customer identifies the buyer on an order request.
type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Address is a shipping or billing address, passed through to the platform.
type Address struct {
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	Province string `json:"province,omitempty"`
	Country  string `json:"country,omitempty"`
	Zip      string `json:"zip,omitempty"`
}

// OrderRequest is the canonical order-creation input.
type OrderRequest struct {
	Items           []OrderItem `json:"items"`
	Customer        Customer    `json:"customer"`
	ShippingAddress Address     `json:"shipping_address,omitempty"`
	BillingAddress  Address     `json:"billing_address,omitempty"`
}

// OrderSummary is the normalized result of creating an order.
type OrderSummary struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  string `json:"total"`
	Items  int    `json:"items"`
}

// OrderStatus reports the state of an existing order. Status vocabulary is
// connector-specific and passed through unmapped.
type OrderStatus struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	FulfillmentStatus string `json:"fulfillment_status"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
	Total             string `json:"total"`
}

// ConversationStats is the dashboard data contract for one store.
type ConversationStats struct {
	TotalConversations             int `json:"total_conversations"`
	TotalMessages                  int `json:"total_messages"`
	ActiveSessions                 int `json:"active_sessions"`
	AverageMessagesPerConversation int `json:"average_messages_per_conversation"`
}
