package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"geniefy-platform/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func TestVerifyToken_OKMeansValid(t *testing.T) {
	var gotAuth string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	ok, err := c.VerifyToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid")
	}
	if gotAuth != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestVerifyToken_401MeansInvalidNotError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	ok, err := c.VerifyToken(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("401 is a definitive answer, not an error: %v", err)
	}
	if ok {
		t.Fatalf("expected invalid")
	}
}

func TestVerifyToken_ServerErrorIsError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := c.VerifyToken(context.Background(), "tok-1"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestUnwrap_EnvelopedSuccess(t *testing.T) {
	data, err := Unwrap([]byte(`{"success":true,"data":{"plan":"pro"},"message":"ok"}`))
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["plan"] != "pro" {
		t.Fatalf("expected inner payload, got %v", got)
	}
}

func TestUnwrap_EnvelopedFailureCarriesMessage(t *testing.T) {
	_, err := Unwrap([]byte(`{"success":false,"message":"tenant suspended"}`))
	if err == nil || !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestUnwrap_LegacyFlatPassthrough(t *testing.T) {
	body := []byte(`{"plan":"basic","status":"active"}`)
	data, err := Unwrap(body)
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if string(data) != string(body) {
		t.Fatalf("flat payload should pass through unchanged")
	}
}

func TestNormalizeSubscription_FlatShape(t *testing.T) {
	sub, err := NormalizeSubscription([]byte(`{"plan":"pro","status":"active","current_period_end":"2026-01-02T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if sub.Plan != "pro" || sub.Status != "active" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
	if sub.PeriodEnd.IsZero() {
		t.Fatalf("expected period end parsed")
	}
}

func TestNormalizeSubscription_NestedShape(t *testing.T) {
	sub, err := NormalizeSubscription([]byte(`{"subscription":{"plan_name":"starter","subscription_status":"trialing","expires_at":"2026-02-01T00:00:00Z"}}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if sub.Plan != "starter" || sub.Status != "trialing" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
}

func TestNormalizeSubscription_MissingStatus(t *testing.T) {
	if _, err := NormalizeSubscription([]byte(`{"plan":"pro"}`)); err == nil {
		t.Fatalf("expected error for statusless payload")
	}
}

func TestFetchSubscription_EndToEnd(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tenant_id") != "t1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"success":true,"data":{"subscription":{"plan_name":"pro","subscription_status":"active"}}}`))
	})

	sub, err := c.FetchSubscription(context.Background(), "tok", "t1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if sub.Plan != "pro" || sub.Status != "active" {
		t.Fatalf("unexpected subscription: %+v", sub)
	}
}

func TestFetchSubscription_401MapsToAuthRequired(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	if _, err := c.FetchSubscription(context.Background(), "tok", "t1"); !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}
