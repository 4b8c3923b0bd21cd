package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	contractx "github.com/chatcart/chatcart/chat/contract"
)

func newShopifyTestConnector(srv *httptest.Server) (*ShopifyConnector, contractx.Store) {
	c := NewShopifyConnector(5 * time.Second)
	c.scheme = "http"
	store := contractx.Store{
		Domain:       strings.TrimPrefix(srv.URL, "http://"),
		Platform:     contractx.PlatformShopify,
		ShopifyToken: "shpat_test",
	}
	return c, store
}

func TestShopifyFetchProductsNormalizes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/api/2023-10/products.json" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("X-Shopify-Access-Token") != "shpat_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[
			{"id": 101, "title": "Blue Cotton Shirt", "product_type": "Apparel",
			 "body_html": "<p>casual <b>wear</b></p>",
			 "image": {"src": "https://cdn.example.com/shirt.png"},
			 "variants": [{"id": 201, "title": "M", "price": "24.99", "sku": "BCS-M", "inventory_quantity": 7}]},
			{"id": 102, "title": "Mystery Item", "product_type": "", "body_html": "", "variants": []}
		]}`))
	}))
	defer srv.Close()

	c, store := newShopifyTestConnector(srv)
	products, err := c.FetchProducts(context.Background(), store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}

	shirt := products[0]
	if shirt.ID != "101" || shirt.Name != "Blue Cotton Shirt" {
		t.Fatalf("unexpected product: %+v", shirt)
	}
	if shirt.Price != "$24.99" {
		t.Fatalf("expected price from first variant, got %q", shirt.Price)
	}
	if shirt.Description != "casual wear" {
		t.Fatalf("expected HTML stripped description, got %q", shirt.Description)
	}
	if len(shirt.Variants) != 1 || shirt.Variants[0].SKU != "BCS-M" || shirt.Variants[0].InventoryQuantity != 7 {
		t.Fatalf("unexpected variants: %+v", shirt.Variants)
	}

	mystery := products[1]
	if mystery.Price != "$0.00" || mystery.Category != "Uncategorized" || mystery.Image != "" {
		t.Fatalf("missing fields must default, got %+v", mystery)
	}
}

func TestShopifySearchUsesTitleFilter(t *testing.T) {
	t.Parallel()

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("title")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	c, store := newShopifyTestConnector(srv)
	if _, err := c.SearchProducts(context.Background(), "blue shirt", store); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "blue shirt" {
		t.Fatalf("expected title filter %q, got %q", "blue shirt", gotQuery)
	}
}

func TestShopifyOrderStatusNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c, store := newShopifyTestConnector(srv)
	_, err := c.GetOrderStatus(context.Background(), "9999", store)
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestShopifyServerErrorIsUpstream(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":"something broke"}`, http.StatusBadGateway)
	}))
	defer srv.Close()

	c, store := newShopifyTestConnector(srv)
	_, err := c.FetchProducts(context.Background(), store)
	if !errors.Is(err, contractx.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "something broke") {
		t.Fatalf("upstream detail must be carried, got %v", err)
	}
}

func TestShopifyGetOrderStatusDefaultsFulfillment(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"order":{"id": 55, "financial_status": "paid", "fulfillment_status": "",
			"created_at": "2026-01-01T00:00:00Z", "updated_at": "2026-01-02T00:00:00Z", "total_price": "44.00"}}`))
	}))
	defer srv.Close()

	c, store := newShopifyTestConnector(srv)
	status, err := c.GetOrderStatus(context.Background(), "55", store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.FulfillmentStatus != "unfulfilled" {
		t.Fatalf("expected unfulfilled default, got %q", status.FulfillmentStatus)
	}
	if status.Status != "paid" || status.Total != "44.00" {
		t.Fatalf("unexpected status: %+v", status)
	}
}
