package httpapi

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-shopify-slack-notifier/internal/config"
	"github.com/tbourn/go-shopify-slack-notifier/internal/services"
	"github.com/tbourn/go-shopify-slack-notifier/internal/shopify"
)

type stubDispatcher struct {
	result services.Result
	calls  int
}

func (s *stubDispatcher) Handle(_ context.Context, p *shopify.OrderPayload, _ string) services.Result {
	s.calls++
	res := s.result
	if res.OrderKey == "" {
		res.OrderKey = p.OrderKey()
	}
	return res
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func newEngine(d *stubDispatcher, cfg config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, d, cfg)
	return r
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	d := &stubDispatcher{result: services.Result{Outcome: services.OutcomeAccepted}}
	r := newEngine(d, testConfig(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics -> %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Error("metrics output missing http_requests_total")
	}
}

func TestRouter_WebhookWithoutSecret(t *testing.T) {
	d := &stubDispatcher{result: services.Result{Outcome: services.OutcomeAccepted}}
	cfg := testConfig(t) // no SHOPIFY_WEBHOOK_SECRET: verification disabled
	r := newEngine(d, cfg)

	body := `{"order_number":1278,"financial_status":"paid"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Topic", "orders/paid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("POST /webhooks/shopify -> %d; body %s", w.Code, w.Body.String())
	}
	if d.calls != 1 {
		t.Errorf("dispatcher calls = %d, want 1", d.calls)
	}
}

func TestRouter_WebhookSignatureEnforced(t *testing.T) {
	const secret = "wh-secret"
	t.Setenv("SHOPIFY_WEBHOOK_SECRET", secret)

	d := &stubDispatcher{result: services.Result{Outcome: services.OutcomeAccepted}}
	r := newEngine(d, testConfig(t))

	body := `{"order_number":1278}`

	// Unsigned delivery is rejected before the handler runs.
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shopify", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unsigned delivery -> %d, want 401", w.Code)
	}
	if d.calls != 0 {
		t.Fatalf("dispatcher reached with invalid signature")
	}

	// Correctly signed delivery passes.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req = httptest.NewRequest(http.MethodPost, "/webhooks/shopify", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", sig)
	req.Header.Set("X-Shopify-Topic", "orders/updated")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("signed delivery -> %d; body %s", w.Code, w.Body.String())
	}
	if d.calls != 1 {
		t.Errorf("dispatcher calls = %d, want 1", d.calls)
	}
}

func TestRouter_FallbacksAndRequestID(t *testing.T) {
	d := &stubDispatcher{}
	r := newEngine(d, testConfig(t))

	// NoRoute
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope -> %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["code"] != "not_found" {
		t.Errorf("code = %v, want not_found", body["code"])
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	// NoMethod
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/webhooks/shopify", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /webhooks/shopify -> %d", w.Code)
	}
}

func TestRouter_DefaultCORSHeader(t *testing.T) {
	d := &stubDispatcher{}
	r := newEngine(d, testConfig(t))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("ACAO = %q, want *", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}
