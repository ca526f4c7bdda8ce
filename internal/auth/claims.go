package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the JWT claim shape shared with the dashboard clients.
//
// Naming note: tenant_id/team_id are the legacy wire names for what the
// product now calls organization/workspace. The wire names are frozen; the
// cookie contract and every deployed client decode them as-is.
//
// Multi-tenant invariant: TenantID must be present on every token. TeamID is
// optional (a user may not have selected a workspace yet).
type Claims struct {
	jwt.RegisteredClaims

	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`

	// TenantID scopes the token to an organization.
	TenantID string `json:"tenant_id"`
	// TeamID scopes the token to a workspace within the organization.
	TeamID string `json:"team_id,omitempty"`

	RoleID   string `json:"role_id,omitempty"`
	JoinedAt string `json:"joined_at,omitempty"`

	// IsImpersonate marks support-impersonation tokens. The backend does not
	// always set it, so absence is never treated as proof of a normal session.
	IsImpersonate bool `json:"is_impersonate,omitempty"`

	TokenType TokenType `json:"token_type,omitempty"`
}

// UserInfo is the projection of token claims handed to consumers that only
// need identity, not the raw JWT machinery.
type UserInfo struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username,omitempty"`
	Name          string `json:"name,omitempty"`
	TenantID      string `json:"tenant_id"`
	TeamID        string `json:"team_id,omitempty"`
	RoleID        string `json:"role_id,omitempty"`
	JoinedAt      string `json:"joined_at,omitempty"`
	IsImpersonate bool   `json:"is_impersonate,omitempty"`
}

// User returns the identity projection of the claims.
func (c Claims) User() UserInfo {
	return UserInfo{
		UserID:        c.UserID,
		Username:      c.Username,
		Name:          c.Name,
		TenantID:      c.TenantID,
		TeamID:        c.TeamID,
		RoleID:        c.RoleID,
		JoinedAt:      c.JoinedAt,
		IsImpersonate: c.IsImpersonate,
	}
}
