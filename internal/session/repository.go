package session

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"time"

	"geniefy-platform/internal/auth"
)

// RefreshToken is the server-side record of an issued refresh token.
// Only the sha256 hash of the raw token is stored; the raw value exists
// solely in the client's httpOnly cookie.
type RefreshToken struct {
	TokenHash string
	UserID    string
	Username  string
	Name      string
	TenantID  string
	TeamID    string
	RoleID    string
	Remember  bool
	Revoked   bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// User rebuilds the identity the token was issued for. Profile and role
// fields live only here; the refresh JWT itself carries scoping claims.
func (t RefreshToken) User() auth.UserInfo {
	return auth.UserInfo{
		UserID:   t.UserID,
		Username: t.Username,
		Name:     t.Name,
		TenantID: t.TenantID,
		TeamID:   t.TeamID,
		RoleID:   t.RoleID,
	}
}

var ErrTokenNotFound = errors.New("refresh token not found")

// Repository persists refresh-token records. Implementations must treat
// Revoke of an unknown hash as ErrTokenNotFound so callers can distinguish
// replay of a rotated token from a plain miss.
type Repository interface {
	Save(ctx context.Context, t RefreshToken) error
	Get(ctx context.Context, tokenHash string) (RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	// Rotate revokes oldHash and stores next atomically. A crash between the
	// two steps would otherwise strand the user with no valid refresh token.
	Rotate(ctx context.Context, oldHash string, next RefreshToken) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// HashToken derives the storage key for a raw refresh token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
