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
	"strings"
	"time"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

// WooConnector talks to the WooCommerce REST API (wc/v3) using the store's
// consumer key/secret over HTTP basic auth.
type WooConnector struct {
	httpClient *http.Client
}

func NewWooConnector(timeout time.Duration) *WooConnector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WooConnector{httpClient: &http.Client{Timeout: timeout}}
}

type wooAttribute struct {
	Option string `json:"option"`
}

type wooVariation struct {
	ID            int64          `json:"id"`
	Price         string         `json:"price"`
	SKU           string         `json:"sku"`
	StockQuantity int            `json:"stock_quantity"`
	Attributes    []wooAttribute `json:"attributes"`
}

type wooCategory struct {
	Name string `json:"name"`
}

type wooImage struct {
	Src string `json:"src"`
}

// wooProduct is the wc/v3 product document. Variations here is an array of
// bare variation ids; the full records live under /products/{id}/variations.
type wooProduct struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Price       string        `json:"price"`
	Categories  []wooCategory `json:"categories"`
	Description string        `json:"description"`
	Images      []wooImage    `json:"images"`
	Variations  []int64       `json:"variations"`
}

func (c *WooConnector) FetchProducts(ctx context.Context, store contractx.Store) ([]contractx.Product, error) {
	var payload []wooProduct
	if err := c.get(ctx, store, "/products?per_page=100", &payload); err != nil {
		return nil, fmt.Errorf("woocommerce products fetch: %w", err)
	}

	products := make([]contractx.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, normalizeWooProduct(p, wooVariantsFromIDs(p.Variations)))
	}
	return products, nil
}

func (c *WooConnector) SearchProducts(ctx context.Context, query string, store contractx.Store) ([]contractx.Product, error) {
	var payload []wooProduct
	path := "/products?per_page=20&search=" + url.QueryEscape(query)
	if err := c.get(ctx, store, path, &payload); err != nil {
		return nil, fmt.Errorf("woocommerce product search: %w", err)
	}

	products := make([]contractx.Product, 0, len(payload))
	for _, p := range payload {
		products = append(products, normalizeWooProduct(p, wooVariantsFromIDs(p.Variations)))
	}
	return products, nil
}

func (c *WooConnector) GetProductDetails(ctx context.Context, productID string, store contractx.Store) (contractx.Product, error) {
	var payload wooProduct
	if err := c.get(ctx, store, "/products/"+url.PathEscape(productID), &payload); err != nil {
		return contractx.Product{}, fmt.Errorf("woocommerce product details: %w", err)
	}

	var variants []contractx.Variant
	if len(payload.Variations) > 0 {
		var records []wooVariation
		path := "/products/" + url.PathEscape(productID) + "/variations?per_page=100"
		if err := c.get(ctx, store, path, &records); err != nil {
			return contractx.Product{}, fmt.Errorf("woocommerce product variations: %w", err)
		}
		variants = wooVariantsFromRecords(records)
	}

	return normalizeWooProduct(payload, variants), nil
}

func (c *WooConnector) CreateOrder(ctx context.Context, order contractx.OrderRequest, store contractx.Store) (contractx.OrderSummary, error) {
	lineItems := make([]map[string]any, 0, len(order.Items))
	for _, item := range order.Items {
		li := map[string]any{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
		}
		if item.VariantID != "" {
			li["variation_id"] = item.VariantID
		}
		lineItems = append(lineItems, li)
	}

	body := map[string]any{
		"line_items": lineItems,
		"billing": map[string]any{
			"first_name": order.Customer.FirstName,
			"last_name":  order.Customer.LastName,
			"email":      order.Customer.Email,
			"address_1":  order.BillingAddress.Address1,
			"address_2":  order.BillingAddress.Address2,
			"city":       order.BillingAddress.City,
			"state":      order.BillingAddress.Province,
			"postcode":   order.BillingAddress.Zip,
			"country":    order.BillingAddress.Country,
		},
		"shipping": map[string]any{
			"first_name": order.Customer.FirstName,
			"last_name":  order.Customer.LastName,
			"address_1":  order.ShippingAddress.Address1,
			"address_2":  order.ShippingAddress.Address2,
			"city":       order.ShippingAddress.City,
			"state":      order.ShippingAddress.Province,
			"postcode":   order.ShippingAddress.Zip,
			"country":    order.ShippingAddress.Country,
		},
	}

	var payload struct {
		ID        int64  `json:"id"`
		Status    string `json:"status"`
		Total     string `json:"total"`
		LineItems []any  `json:"line_items"`
	}
	if err := c.post(ctx, store, "/orders", body, &payload); err != nil {
		return contractx.OrderSummary{}, fmt.Errorf("woocommerce order creation: %w", err)
	}

	return contractx.OrderSummary{
		ID:     strconv.FormatInt(payload.ID, 10),
		Status: payload.Status,
		Total:  payload.Total,
		Items:  len(payload.LineItems),
	}, nil
}

func (c *WooConnector) GetOrderStatus(ctx context.Context, orderID string, store contractx.Store) (contractx.OrderStatus, error) {
	var payload struct {
		ID           int64  `json:"id"`
		Status       string `json:"status"`
		DateCreated  string `json:"date_created"`
		DateModified string `json:"date_modified"`
		Total        string `json:"total"`
	}
	if err := c.get(ctx, store, "/orders/"+url.PathEscape(orderID), &payload); err != nil {
		return contractx.OrderStatus{}, fmt.Errorf("woocommerce order status: %w", err)
	}

	return contractx.OrderStatus{
		ID:                strconv.FormatInt(payload.ID, 10),
		Status:            payload.Status,
		FulfillmentStatus: payload.Status,
		CreatedAt:         payload.DateCreated,
		UpdatedAt:         payload.DateModified,
		Total:             payload.Total,
	}, nil
}

func (c *WooConnector) get(ctx context.Context, store contractx.Store, path string, out any) error {
	return c.do(ctx, store, http.MethodGet, path, nil, out)
}

func (c *WooConnector) post(ctx context.Context, store contractx.Store, path string, body any, out any) error {
	return c.do(ctx, store, http.MethodPost, path, body, out)
}

func (c *WooConnector) do(ctx context.Context, store contractx.Store, method, path string, body any, out any) error {
	endpoint := wooBaseURL(store.Domain) + "/wp-json/wc/v3" + path

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode woocommerce request: %v", contractx.ErrUpstream, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("%w: build woocommerce request: %v", contractx.ErrUpstream, err)
	}
	req.SetBasicAuth(store.WooKey, store.WooSecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: woocommerce request: %v", contractx.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: woocommerce resource at %s", contractx.ErrNotFound, path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: woocommerce returned status %d: %s", contractx.ErrUpstream, resp.StatusCode, bytes.TrimSpace(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode woocommerce response: %v", contractx.ErrUpstream, err)
	}
	return nil
}

func wooBaseURL(domain string) string {
	if strings.Contains(domain, "://") {
		return strings.TrimRight(domain, "/")
	}
	return "https://" + strings.TrimRight(domain, "/")
}

// wooVariantsFromIDs maps the bare ids in a product document to id-only
// variants. List endpoints stop here; GetProductDetails resolves the full
// records from the variations endpoint.
func wooVariantsFromIDs(ids []int64) []contractx.Variant {
	if len(ids) == 0 {
		return nil
	}
	variants := make([]contractx.Variant, 0, len(ids))
	for _, id := range ids {
		variants = append(variants, contractx.Variant{ID: strconv.FormatInt(id, 10)})
	}
	return variants
}

func wooVariantsFromRecords(records []wooVariation) []contractx.Variant {
	variants := make([]contractx.Variant, 0, len(records))
	for _, v := range records {
		variants = append(variants, contractx.Variant{
			ID:                strconv.FormatInt(v.ID, 10),
			Title:             wooVariationTitle(v),
			Price:             parsePrice(v.Price),
			SKU:               v.SKU,
			InventoryQuantity: v.StockQuantity,
		})
	}
	return variants
}

func normalizeWooProduct(p wooProduct, variants []contractx.Variant) contractx.Product {
	category := defaultCategory
	if len(p.Categories) > 0 {
		category = orCategory(p.Categories[0].Name)
	}

	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0].Src
	}

	return contractx.Product{
		ID:          strconv.FormatInt(p.ID, 10),
		Name:        p.Name,
		Price:       formatPrice(parsePrice(p.Price)),
		Category:    category,
		Description: stripHTML(p.Description),
		Image:       image,
		Variants:    variants,
	}
}

func wooVariationTitle(v wooVariation) string {
	options := make([]string, 0, len(v.Attributes))
	for _, a := range v.Attributes {
		options = append(options, a.Option)
	}
	return strings.Join(options, " - ")
}
