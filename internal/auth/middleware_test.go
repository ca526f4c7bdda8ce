package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

type stubValidator struct {
	valid bool
	err   error
	seen  []string
}

func (s *stubValidator) Validate(_ context.Context, token string) (bool, error) {
	s.seen = append(s.seen, token)
	return s.valid, s.err
}

func guardRouter(v TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireAccessToken(v), func(c *gin.Context) {
		uid, _ := UserID(c.Request.Context())
		tid, _ := TenantID(c.Request.Context())
		c.JSON(200, gin.H{"user_id": uid, "tenant_id": tid, "team_id": TeamID(c.Request.Context())})
	})
	return r
}

func TestRequireAccessToken_BearerHeader(t *testing.T) {
	now := time.Now()
	tok := rawToken(t, map[string]any{"user_id": "u1", "tenant_id": "org-1", "team_id": "ws-1", "exp": now.Unix() + 3600})

	v := &stubValidator{valid: true}
	r := guardRouter(v)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(v.seen) != 1 || v.seen[0] != tok {
		t.Fatalf("validator should see the raw token, saw %v", v.seen)
	}
}

func TestRequireAccessToken_CookieFallback(t *testing.T) {
	now := time.Now()
	tok := rawToken(t, map[string]any{"user_id": "u1", "tenant_id": "org-1", "exp": now.Unix() + 3600})

	r := guardRouter(&stubValidator{valid: true})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tok})
	r.ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireAccessToken_MissingToken(t *testing.T) {
	r := guardRouter(&stubValidator{valid: true})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAccessToken_MalformedToken(t *testing.T) {
	v := &stubValidator{valid: true}
	r := guardRouter(v)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if len(v.seen) != 0 {
		t.Fatalf("validator should not be consulted for malformed tokens")
	}
}

func TestRequireAccessToken_ValidatorSaysNo(t *testing.T) {
	now := time.Now()
	tok := rawToken(t, map[string]any{"user_id": "u1", "tenant_id": "org-1", "exp": now.Unix() + 3600})

	r := guardRouter(&stubValidator{valid: false})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAccessToken_ValidatorErrorResolvesUnauthorized(t *testing.T) {
	now := time.Now()
	tok := rawToken(t, map[string]any{"user_id": "u1", "tenant_id": "org-1", "exp": now.Unix() + 3600})

	r := guardRouter(&stubValidator{valid: true, err: errors.New("backend down")})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when validation fails upstream, got %d", w.Code)
	}
}
