package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

// rawToken builds an unsigned JWT from an arbitrary payload. Decode never
// checks signatures, so the signature segment is filler.
func rawToken(t *testing.T, payload map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(header) + "." + enc.EncodeToString(body) + "." + enc.EncodeToString([]byte("sig"))
}

func TestDecode_RejectsEmptyString(t *testing.T) {
	if _, err := Decode("", time.Now()); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestDecode_RejectsWrongSegmentCount(t *testing.T) {
	for _, tok := range []string{"abc", "a.b", "a.b.c.d"} {
		if _, err := Decode(tok, time.Now()); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("token %q: expected ErrMalformedToken, got %v", tok, err)
		}
	}
}

func TestDecode_RejectsBadPayload(t *testing.T) {
	if _, err := Decode("eyJhbGciOiJIUzI1NiJ9.!!not-base64!!.sig", time.Now()); !errors.Is(err, ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestDecode_RejectsExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok := rawToken(t, map[string]any{"user_id": "u1", "tenant_id": "t1", "exp": now.Unix() - 1})
	if _, err := Decode(tok, now); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestDecode_ExpEqualNowIsNotExpired(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok := rawToken(t, map[string]any{"user_id": "u1", "tenant_id": "t1", "exp": now.Unix()})
	if _, err := Decode(tok, now); err != nil {
		t.Fatalf("exp == now should still decode, got %v", err)
	}
}

func TestDecode_ExtractsClaims(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok := rawToken(t, map[string]any{
		"user_id":        "u1",
		"username":       "jess",
		"name":           "Jess Doe",
		"tenant_id":      "org-1",
		"team_id":        "ws-9",
		"role_id":        "admin",
		"is_impersonate": true,
		"exp":            now.Unix() + 3600,
	})
	claims, err := Decode(tok, now)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if claims.UserID != "u1" || claims.TenantID != "org-1" || claims.TeamID != "ws-9" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if !claims.IsImpersonate || claims.RoleID != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestUserFromToken_IgnoresUnknownClaims(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tok := rawToken(t, map[string]any{
		"user_id":   "u2",
		"username":  "sam",
		"tenant_id": "org-2",
		"team_id":   "ws-1",
		"role_id":   "member",
		"joined_at": "2024-01-02",
		"exp":       now.Unix() + 60,
		// claims this service does not model
		"feature_flags": []string{"a", "b"},
		"session_index": 7,
	})
	u, err := UserFromToken(tok, now)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := UserInfo{UserID: "u2", Username: "sam", TenantID: "org-2", TeamID: "ws-1", RoleID: "member", JoinedAt: "2024-01-02"}
	if u != want {
		t.Fatalf("projection mismatch:\n got %+v\nwant %+v", u, want)
	}
}

func TestUserFromToken_ErrorsOnMalformed(t *testing.T) {
	if _, err := UserFromToken("nope", time.Now()); err == nil {
		t.Fatalf("expected error")
	}
}
