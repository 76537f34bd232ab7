package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/rickgao/paradex-data/paradex"
	"github.com/rickgao/paradex-data/sign"
)

const testPrivateKey = "0x2dccce1da22003777062968ba9e8b7c44ce1031db9eebfe9b4a6d62ba9c0798"

func testPipeline(t *testing.T) *sign.Pipeline {
	t.Helper()
	signer, err := sign.NewSigner(testPrivateKey)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	p, err := sign.NewPipeline(signer, "PRIVATE_SN_POTC_SEPOLIA", "0x1234abcd")
	if err != nil {
		t.Fatalf("NewPipeline failed: %v", err)
	}
	return p
}

func TestSystemConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/system/config" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"starknet_chain_id":"PRIVATE_SN_POTC_SEPOLIA","paraclear_decimals":8}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	cfg, err := c.SystemConfig(context.Background())
	if err != nil {
		t.Fatalf("SystemConfig failed: %v", err)
	}
	if cfg.StarknetChainID != "PRIVATE_SN_POTC_SEPOLIA" {
		t.Errorf("StarknetChainID = %q", cfg.StarknetChainID)
	}
	if cfg.ParaclearDecimals != 8 {
		t.Errorf("ParaclearDecimals = %d", cfg.ParaclearDecimals)
	}
}

func TestMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[
			{"symbol":"BTC-USD-PERP","order_size_increment":"0.001","price_tick_size":"0.1"},
			{"symbol":"ETH-USD-PERP","order_size_increment":"0.01","price_tick_size":"0.01"}
		]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil)
	markets, err := c.Markets(context.Background())
	if err != nil {
		t.Fatalf("Markets failed: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("got %d markets", len(markets))
	}
	if markets[0].Symbol != "BTC-USD-PERP" {
		t.Errorf("Symbol = %q", markets[0].Symbol)
	}
	if !markets[0].OrderSizeIncrement.Equal(decimal.RequireFromString("0.001")) {
		t.Errorf("OrderSizeIncrement = %s", markets[0].OrderSizeIncrement)
	}

	cat, err := c.Catalog(context.Background())
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if !cat.Has("ETH-USD-PERP") {
		t.Error("catalog missing ETH-USD-PERP")
	}
}

func TestTokenFlow(t *testing.T) {
	var authCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth":
			authCalls.Add(1)
			if r.Header.Get("PARADEX-STARKNET-ACCOUNT") == "" {
				t.Error("missing account header")
			}
			if r.Header.Get("PARADEX-STARKNET-SIGNATURE") == "" {
				t.Error("missing signature header")
			}
			if r.Header.Get("PARADEX-TIMESTAMP") == "" || r.Header.Get("PARADEX-SIGNATURE-EXPIRATION") == "" {
				t.Error("missing timestamp headers")
			}
			w.Write([]byte(`{"jwt_token":"test-jwt"}`))
		case "/v1/account":
			if got := r.Header.Get("Authorization"); got != "Bearer test-jwt" {
				t.Errorf("Authorization = %q", got)
			}
			w.Write([]byte(`{"account":"0x1234abcd","status":"ACTIVE"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, testPipeline(t))

	acct, err := c.Account(context.Background())
	if err != nil {
		t.Fatalf("Account failed: %v", err)
	}
	if acct.Status != "ACTIVE" {
		t.Errorf("Status = %q", acct.Status)
	}

	// Second private call reuses the cached token.
	if _, err := c.Account(context.Background()); err != nil {
		t.Fatalf("second Account failed: %v", err)
	}
	if n := authCalls.Load(); n != 1 {
		t.Errorf("auth called %d times, want 1", n)
	}

	c.InvalidateToken()
	if _, err := c.Account(context.Background()); err != nil {
		t.Fatalf("Account after invalidate failed: %v", err)
	}
	if n := authCalls.Load(); n != 2 {
		t.Errorf("auth called %d times after invalidate, want 2", n)
	}
}

func TestExpiredTokenRefreshedOnce(t *testing.T) {
	var authCalls, accountCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth":
			n := authCalls.Add(1)
			if n == 1 {
				w.Write([]byte(`{"jwt_token":"stale-jwt"}`))
			} else {
				w.Write([]byte(`{"jwt_token":"fresh-jwt"}`))
			}
		case "/v1/account":
			accountCalls.Add(1)
			if r.Header.Get("Authorization") == "Bearer stale-jwt" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"account":"0x1234abcd","status":"ACTIVE"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, testPipeline(t))

	// The venue rejects the first token; the client refreshes and
	// retries exactly once.
	if _, err := c.Account(context.Background()); err != nil {
		t.Fatalf("Account failed: %v", err)
	}
	if n := authCalls.Load(); n != 2 {
		t.Errorf("auth called %d times, want 2", n)
	}
	if n := accountCalls.Load(); n != 2 {
		t.Errorf("account called %d times, want 2", n)
	}
}

func TestTokenWithoutCredentials(t *testing.T) {
	c := NewClient("http://unused", nil)
	if _, err := c.Token(context.Background()); !errors.Is(err, ErrNoCredentials) {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
}

func TestCreateOrder(t *testing.T) {
	var gotOrder paradex.Order
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth":
			w.Write([]byte(`{"jwt_token":"test-jwt"}`))
		case "/v1/orders":
			if r.Method != http.MethodPost {
				t.Errorf("method = %s", r.Method)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotOrder); err != nil {
				t.Errorf("decode order: %v", err)
			}
			w.Write([]byte(`{"id":"o-1","market":"BTC-USD-PERP","status":"NEW"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	pipeline := testPipeline(t)
	price := decimal.RequireFromString("98123.5")
	signed, err := pipeline.SignOrderAt(paradex.OrderRequest{
		Market:      "BTC-USD-PERP",
		Side:        paradex.Buy,
		Type:        paradex.OrderLimit,
		Instruction: paradex.GTC,
		Size:        decimal.RequireFromString("0.5"),
		Price:       &price,
	}, 1737473412000)
	if err != nil {
		t.Fatalf("SignOrderAt failed: %v", err)
	}

	c := NewClient(server.URL, pipeline)
	result, err := c.CreateOrder(context.Background(), signed)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if result.ID != "o-1" {
		t.Errorf("result ID = %q", result.ID)
	}
	if gotOrder.Signature != signed.Order.Signature {
		t.Errorf("wire signature = %q, want %q", gotOrder.Signature, signed.Order.Signature)
	}
	if gotOrder.SignatureTimestamp != 1737473412000 {
		t.Errorf("wire signature_timestamp = %d", gotOrder.SignatureTimestamp)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, WithRetries(3, time.Millisecond))
	if _, err := c.Markets(context.Background()); err != nil {
		t.Fatalf("Markets failed after retries: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("server called %d times, want 3", n)
	}
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL, nil, WithRetries(3, time.Millisecond))
	_, err := c.Markets(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want 400 APIError", err)
	}
	if apiErr.IsRetryable() {
		t.Error("400 must not be retryable")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want 1", n)
	}
}
