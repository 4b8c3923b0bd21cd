// Package tenant resolves store configuration from Postgres. Stores are
// owned by the dashboard subsystem; the chat core only reads them.
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

type storeRow struct {
	bun.BaseModel `bun:"table:stores,alias:s"`

	ID       string `bun:"id,pk"`
	Name     string `bun:"name"`
	Domain   string `bun:"domain"`
	Platform string `bun:"platform"`

	APIKey               string `bun:"api_key"`
	ShopifyToken         string `bun:"shopify_token"`
	ShopifyWebhookSecret string `bun:"shopify_webhook_secret"`
	WooKey               string `bun:"woo_key"`
	WooSecret            string `bun:"woo_secret"`

	BotName        string `bun:"bot_name"`
	WelcomeMessage string `bun:"welcome_message"`
	Tone           string `bun:"tone"`
	Language       string `bun:"language"`

	Active       bool   `bun:"active"`
	MessageQuota int    `bun:"message_quota"`
	PlanTier     string `bun:"plan_tier"`

	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}

// Repository looks stores up by their various identifiers.
type Repository struct {
	db bun.IDB
}

var _ contractx.StoreRepository = (*Repository)(nil)

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ByID(ctx context.Context, id string) (contractx.Store, error) {
	return r.byColumn(ctx, "id", id)
}

func (r *Repository) ByAPIKey(ctx context.Context, apiKey string) (contractx.Store, error) {
	return r.byColumn(ctx, "api_key", apiKey)
}

func (r *Repository) ByDomain(ctx context.Context, domain string) (contractx.Store, error) {
	return r.byColumn(ctx, "domain", domain)
}

// ByIdentifier tries id, then domain, then API key.
func (r *Repository) ByIdentifier(ctx context.Context, identifier string) (contractx.Store, error) {
	store, err := r.ByID(ctx, identifier)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, contractx.ErrNotFound) {
		return contractx.Store{}, err
	}

	store, err = r.ByDomain(ctx, identifier)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, contractx.ErrNotFound) {
		return contractx.Store{}, err
	}

	return r.ByAPIKey(ctx, identifier)
}

func (r *Repository) byColumn(ctx context.Context, column, value string) (contractx.Store, error) {
	var row storeRow
	err := r.db.NewSelect().
		Model(&row).
		Where("? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return contractx.Store{}, fmt.Errorf("%w: store with %s=%s", contractx.ErrNotFound, column, value)
		}
		return contractx.Store{}, fmt.Errorf("%w: load store: %v", contractx.ErrPersistence, err)
	}
	return toStore(row), nil
}

func toStore(row storeRow) contractx.Store {
	return contractx.Store{
		ID:                   row.ID,
		Name:                 row.Name,
		Domain:               row.Domain,
		Platform:             contractx.Platform(row.Platform),
		APIKey:               row.APIKey,
		ShopifyToken:         row.ShopifyToken,
		ShopifyWebhookSecret: row.ShopifyWebhookSecret,
		WooKey:               row.WooKey,
		WooSecret:            row.WooSecret,
		BotName:              row.BotName,
		WelcomeMessage:       row.WelcomeMessage,
		Tone:                 row.Tone,
		Language:             row.Language,
		Active:               row.Active,
		MessageQuota:         row.MessageQuota,
		PlanTier:             row.PlanTier,
	}
}
