package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

// StaticConnector serves a catalog from a JSON file on disk. Orders exist
// only in memory; it backs demo stores and local development.
type StaticConnector struct {
	path string

	mu       sync.RWMutex
	products []contractx.Product
	loaded   bool
	orders   map[string]staticOrder

	now func() time.Time
}

type staticOrder struct {
	summary   contractx.OrderSummary
	createdAt time.Time
	updatedAt time.Time
}

func NewStaticConnector(path string) *StaticConnector {
	return &StaticConnector{
		path:   path,
		orders: make(map[string]staticOrder),
		now:    time.Now,
	}
}

func (c *StaticConnector) FetchProducts(ctx context.Context, _ contractx.Store) ([]contractx.Product, error) {
	products, err := c.loadProducts()
	if err != nil {
		return nil, fmt.Errorf("static products fetch: %w", err)
	}
	out := make([]contractx.Product, len(products))
	copy(out, products)
	return out, nil
}

// SearchProducts requires every whitespace-delimited query token to appear,
// case-insensitively, in the product's name, description, or category.
func (c *StaticConnector) SearchProducts(ctx context.Context, query string, _ contractx.Store) ([]contractx.Product, error) {
	products, err := c.loadProducts()
	if err != nil {
		return nil, fmt.Errorf("static product search: %w", err)
	}

	terms := strings.Fields(strings.ToLower(query))
	var matches []contractx.Product
	for _, p := range products {
		searchable := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
		if containsAll(searchable, terms) {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

func (c *StaticConnector) GetProductDetails(ctx context.Context, productID string, _ contractx.Store) (contractx.Product, error) {
	products, err := c.loadProducts()
	if err != nil {
		return contractx.Product{}, fmt.Errorf("static product details: %w", err)
	}
	for _, p := range products {
		if p.ID == productID {
			return p, nil
		}
	}
	return contractx.Product{}, fmt.Errorf("%w: product %s", contractx.ErrNotFound, productID)
}

func (c *StaticConnector) CreateOrder(ctx context.Context, order contractx.OrderRequest, _ contractx.Store) (contractx.OrderSummary, error) {
	now := c.now()

	total := 0.0
	for _, item := range order.Items {
		total += item.Price * float64(item.Quantity)
	}

	summary := contractx.OrderSummary{
		ID:     fmt.Sprintf("static-%d", now.UnixNano()),
		Status: "processing",
		Total:  formatPrice(total),
		Items:  len(order.Items),
	}

	c.mu.Lock()
	c.orders[summary.ID] = staticOrder{summary: summary, createdAt: now, updatedAt: now}
	c.mu.Unlock()

	return summary, nil
}

func (c *StaticConnector) GetOrderStatus(ctx context.Context, orderID string, _ contractx.Store) (contractx.OrderStatus, error) {
	c.mu.RLock()
	order, ok := c.orders[orderID]
	c.mu.RUnlock()
	if !ok {
		return contractx.OrderStatus{}, fmt.Errorf("%w: order %s", contractx.ErrNotFound, orderID)
	}

	return contractx.OrderStatus{
		ID:                order.summary.ID,
		Status:            order.summary.Status,
		FulfillmentStatus: "pending",
		CreatedAt:         order.createdAt.UTC().Format(time.RFC3339),
		UpdatedAt:         order.updatedAt.UTC().Format(time.RFC3339),
		Total:             order.summary.Total,
	}, nil
}

func (c *StaticConnector) loadProducts() ([]contractx.Product, error) {
	c.mu.RLock()
	if c.loaded {
		defer c.mu.RUnlock()
		return c.products, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.products, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog file: %v", contractx.ErrUpstream, err)
	}

	var products []contractx.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("%w: decode catalog file: %v", contractx.ErrUpstream, err)
	}

	for i := range products {
		if products[i].Price == "" {
			products[i].Price = formatPrice(0)
		}
		products[i].Category = orCategory(products[i].Category)
	}

	c.products = products
	c.loaded = true
	return c.products, nil
}

func containsAll(haystack string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return len(terms) > 0
}
