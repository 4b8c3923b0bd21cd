package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

const shopifyAPIVersion = "2023-10"

// ShopifyConnector talks to the Shopify Admin REST API using the store's
// access token. It performs no retries.
type ShopifyConnector struct {
	httpClient *http.Client
	// scheme is overridable for tests; production stores are always https.
	scheme string
}

func NewShopifyConnector(timeout time.Duration) *ShopifyConnector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ShopifyConnector{
		httpClient: &http.Client{Timeout: timeout},
		scheme:     "https",
	}
}

type shopifyVariant struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type shopifyImage struct {
	Src string `json:"src"`
}

type shopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	ProductType string           `json:"product_type"`
	BodyHTML    string           `json:"body_html"`
	Image       *shopifyImage    `json:"image"`
	Variants    []shopifyVariant `json:"variants"`
}

func (c *ShopifyConnector) FetchProducts(ctx context.Context, store contractx.Store) ([]contractx.Product, error) {
	var payload struct {
		Products []shopifyProduct `json:"products"`
	}
	if err := c.get(ctx, store, "/products.json", &payload); err != nil {
		return nil, fmt.Errorf("shopify products fetch: %w", err)
	}

	products := make([]contractx.Product, 0, len(payload.Products))
	for _, p := range payload.Products {
		products = append(products, normalizeShopifyProduct(p))
	}
	return products, nil
}

func (c *ShopifyConnector) SearchProducts(ctx context.Context, query string, store contractx.Store) ([]contractx.Product, error) {
	var payload struct {
		Products []shopifyProduct `json:"products"`
	}
	path := "/products.json?title=" + url.QueryEscape(query)
	if err := c.get(ctx, store, path, &payload); err != nil {
		return nil, fmt.Errorf("shopify product search: %w", err)
	}

	products := make([]contractx.Product, 0, len(payload.Products))
	for _, p := range payload.Products {
		products = append(products, normalizeShopifyProduct(p))
	}
	return products, nil
}

func (c *ShopifyConnector) GetProductDetails(ctx context.Context, productID string, store contractx.Store) (contractx.Product, error) {
	var payload struct {
		Product shopifyProduct `json:"product"`
	}
	path := "/products/" + url.PathEscape(productID) + ".json"
	if err := c.get(ctx, store, path, &payload); err != nil {
		return contractx.Product{}, fmt.Errorf("shopify product details: %w", err)
	}
	return normalizeShopifyProduct(payload.Product), nil
}

func (c *ShopifyConnector) CreateOrder(ctx context.Context, order contractx.OrderRequest, store contractx.Store) (contractx.OrderSummary, error) {
	lineItems := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		lineItems = append(lineItems, map[string]any{
			"variant_id": item.VariantID,
			"quantity":   item.Quantity,
		})
	}

	body := map[string]any{
		"order": map[string]any{
			"line_items": lineItems,
			"customer": map[string]any{
				"first_name": order.Customer.FirstName,
				"last_name":  order.Customer.LastName,
				"email":      order.Customer.Email,
			},
			"shipping_address": order.ShippingAddress,
			"financial_status": "pending",
		},
	}

	var payload struct {
		Order struct {
			ID              int64  `json:"id"`
			FinancialStatus string `json:"financial_status"`
			TotalPrice      string `json:"total_price"`
			LineItems       []any  `json:"line_items"`
		} `json:"order"`
	}
	if err := c.post(ctx, store, "/orders.json", body, &payload); err != nil {
		return contractx.OrderSummary{}, fmt.Errorf("shopify order creation: %w", err)
	}

	return contractx.OrderSummary{
		ID:     strconv.FormatInt(payload.Order.ID, 10),
		Status: payload.Order.FinancialStatus,
		Total:  payload.Order.TotalPrice,
		Items:  len(payload.Order.LineItems),
	}, nil
}

func (c *ShopifyConnector) GetOrderStatus(ctx context.Context, orderID string, store contractx.Store) (contractx.OrderStatus, error) {
	var payload struct {
		Order struct {
			ID                int64  `json:"id"`
			FinancialStatus   string `json:"financial_status"`
			FulfillmentStatus string `json:"fulfillment_status"`
			CreatedAt         string `json:"created_at"`
			UpdatedAt         string `json:"updated_at"`
			TotalPrice        string `json:"total_price"`
		} `json:"order"`
	}
	path := "/orders/" + url.PathEscape(orderID) + ".json"
	if err := c.get(ctx, store, path, &payload); err != nil {
		return contractx.OrderStatus{}, fmt.Errorf("shopify order status: %w", err)
	}

	fulfillment := payload.Order.FulfillmentStatus
	if fulfillment == "" {
		fulfillment = "unfulfilled"
	}
	return contractx.OrderStatus{
		ID:                strconv.FormatInt(payload.Order.ID, 10),
		Status:            payload.Order.FinancialStatus,
		FulfillmentStatus: fulfillment,
		CreatedAt:         payload.Order.CreatedAt,
		UpdatedAt:         payload.Order.UpdatedAt,
		Total:             payload.Order.TotalPrice,
	}, nil
}

func (c *ShopifyConnector) get(ctx context.Context, store contractx.Store, path string, out any) error {
	return c.do(ctx, store, http.MethodGet, path, nil, out)
}

func (c *ShopifyConnector) post(ctx context.Context, store contractx.Store, path string, body any, out any) error {
	return c.do(ctx, store, http.MethodPost, path, body, out)
}

func (c *ShopifyConnector) do(ctx context.Context, store contractx.Store, method, path string, body any, out any) error {
	endpoint := fmt.Sprintf("%s://%s/admin/api/%s%s", c.scheme, store.Domain, shopifyAPIVersion, path)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode shopify request: %v", contractx.ErrUpstream, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: build shopify request: %v", contractx.ErrUpstream, err)
	}
	req.Header.Set("X-Shopify-Access-Token", store.ShopifyToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: shopify request: %v", contractx.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: shopify resource at %s", contractx.ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: shopify returned status %d: %s", contractx.ErrUpstream, resp.StatusCode, bytes.TrimSpace(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode shopify response: %v", contractx.ErrUpstream, err)
	}
	return nil
}

func normalizeShopifyProduct(p shopifyProduct) contractx.Product {
	price := 0.0
	if len(p.Variants) > 0 {
		price = parsePrice(p.Variants[0].Price)
	}

	image := ""
	if p.Image != nil {
		image = p.Image.Src
	}

	variants := make([]contractx.Variant, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, contractx.Variant{
			ID:                strconv.FormatInt(v.ID, 10),
			Title:             v.Title,
			Price:             parsePrice(v.Price),
			SKU:               v.SKU,
			InventoryQuantity: v.InventoryQuantity,
		})
	}

	return contractx.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		Name:        p.Title,
		Price:       formatPrice(price),
		Category:    orCategory(p.ProductType),
		Description: stripHTML(p.BodyHTML),
		Image:       image,
		Variants:    variants,
	}
}
