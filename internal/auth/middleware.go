package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// AccessTokenCookie is the client-readable cookie carrying the access token.
const AccessTokenCookie = "access_token"

// TokenValidator answers whether a decoded-but-unverified token is actually
// valid. Implementations are expected to memoize; the check may be an
// upstream call.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (bool, error)
}

// RequireAccessToken extracts the access token from the Authorization header
// or, failing that, the access_token cookie, decodes it and confirms validity
// before injecting identity into the request context.
//
// Decode failures and invalid tokens both resolve to 401; redirecting to a
// login page is the client's decision, not this layer's.
func RequireAccessToken(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearerToken(c)
		if tok == "" {
			if v, err := c.Cookie(AccessTokenCookie); err == nil {
				tok = v
			}
		}
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		claims, err := Decode(tok, time.Now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		ok, err := validator.Validate(c.Request.Context(), tok)
		if err != nil || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		user := claims.User()
		ctx := WithIdentity(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("access_token", tok)
		c.Set("user_id", user.UserID)
		c.Set("tenant_id", user.TenantID)
		c.Set("team_id", user.TeamID)
		c.Set("role_id", user.RoleID)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(raw, bearerPrefix)
}
