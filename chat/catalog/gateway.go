package catalog

import (
	"context"
	"time"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

// Config bounds connector HTTP calls and locates the static catalog file.
type Config struct {
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" split_words:"true" default:"10s"`
	StaticCatalogPath string        `envconfig:"STATIC_CATALOG_PATH" split_words:"true" default:"data/products.json"`
}

// Gateway selects the connector matching a store's configured platform and
// exposes the uniform connector API. Selection happens once per call here;
// callers never dispatch on platform themselves.
type Gateway struct {
	shopify contractx.Connector
	woo     contractx.Connector
	static  contractx.Connector
}

var _ contractx.Connector = (*Gateway)(nil)

func NewGateway(cfg Config) *Gateway {
	return &Gateway{
		shopify: NewShopifyConnector(cfg.RequestTimeout),
		woo:     NewWooConnector(cfg.RequestTimeout),
		static:  NewStaticConnector(cfg.StaticCatalogPath),
	}
}

// NewGatewayWithConnectors wires explicit connector implementations.
func NewGatewayWithConnectors(shopify, woo, static contractx.Connector) *Gateway {
	return &Gateway{shopify: shopify, woo: woo, static: static}
}

// forStore maps platform type to connector. An unrecognized or unset
// platform falls back to WooCommerce.
func (g *Gateway) forStore(store contractx.Store) contractx.Connector {
	switch store.Platform {
	case contractx.PlatformShopify:
		return g.shopify
	case contractx.PlatformStatic:
		return g.static
	case contractx.PlatformWoo:
		return g.woo
	default:
		return g.woo
	}
}

func (g *Gateway) FetchProducts(ctx context.Context, store contractx.Store) ([]contractx.Product, error) {
	return g.forStore(store).FetchProducts(ctx, store)
}

func (g *Gateway) SearchProducts(ctx context.Context, query string, store contractx.Store) ([]contractx.Product, error) {
	return g.forStore(store).SearchProducts(ctx, query, store)
}

func (g *Gateway) GetProductDetails(ctx context.Context, productID string, store contractx.Store) (contractx.Product, error) {
	return g.forStore(store).GetProductDetails(ctx, productID, store)
}

func (g *Gateway) CreateOrder(ctx context.Context, order contractx.OrderRequest, store contractx.Store) (contractx.OrderSummary, error) {
	return g.forStore(store).CreateOrder(ctx, order, store)
}

func (g *Gateway) GetOrderStatus(ctx context.Context, orderID string, store contractx.Store) (contractx.OrderStatus, error) {
	return g.forStore(store).GetOrderStatus(ctx, orderID, store)
}
