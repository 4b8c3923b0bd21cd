package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const webhookSecret = "whsec_test"

func signWebhook(body, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func webhookRequest(body, domain, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", strings.NewReader(body))
	if signature != "" {
		req.Header.Set("X-Shopify-Hmac-Sha256", signature)
	}
	if domain != "" {
		req.Header.Set("X-Shopify-Shop-Domain", domain)
	}
	req.Header.Set("X-Shopify-Topic", "products/update")
	return req
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	t.Parallel()

	f := newServerFixture(Config{})
	store := activeStore()
	store.ShopifyWebhookSecret = webhookSecret
	f.stores.byDomain[store.Domain] = store

	body := `{"id":123,"title":"Trail Mug"}`
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, webhookRequest(body, store.Domain, signWebhook(body, webhookSecret)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	t.Parallel()

	f := newServerFixture(Config{})
	store := activeStore()
	store.ShopifyWebhookSecret = webhookSecret
	f.stores.byDomain[store.Domain] = store

	body := `{"id":123}`
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, webhookRequest(body, store.Domain, signWebhook(body, "other-secret")))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	t.Parallel()

	f := newServerFixture(Config{})
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, webhookRequest(`{}`, "acme.example.com", ""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestWebhookUnknownDomain(t *testing.T) {
	t.Parallel()

	f := newServerFixture(Config{})
	body := `{}`
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, webhookRequest(body, "nobody.example.com", signWebhook(body, webhookSecret)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestVerifyShopifySignature(t *testing.T) {
	t.Parallel()

	body := []byte(`{"id":1}`)
	good := signWebhook(string(body), webhookSecret)

	if !verifyShopifySignature(body, good, webhookSecret) {
		t.Fatal("valid signature rejected")
	}
	if verifyShopifySignature(body, good, "wrong") {
		t.Fatal("signature accepted with wrong secret")
	}
	if verifyShopifySignature([]byte(`{"id":2}`), good, webhookSecret) {
		t.Fatal("signature accepted for tampered body")
	}
}
