package rbac

import (
	"net/http"

	"geniefy-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireTeam enforces workspace scoping: team_id must exist in context.
// This does not validate membership; the backend owns that check.
func RequireTeam() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.TeamID(c.Request.Context()) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "team_id required"})
			return
		}
		c.Next()
	}
}

// RequireAnyRole allows access if the caller has any of the provided roles.
// Rules:
//   - super_admin bypasses all checks
//   - support is a hidden role, and will be denied unless explicitly allowed
//   - organization isolation comes from the token's tenant_id; workspace
//     scoping is enforced via RequireTeam (use it in the chain)
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role, err := auth.RoleID(c.Request.Context())
		if err != nil || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "role required"})
			return
		}

		if IsSuperAdmin(role) {
			c.Next()
			return
		}

		// hidden roles are opt-in only
		if IsHiddenRole(role) {
			if _, ok := allowedSet[role]; !ok {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
				return
			}
		}

		if _, ok := allowedSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireImpersonationRights gates the impersonation endpoint.
func RequireImpersonationRights() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := auth.RoleID(c.Request.Context())
		if err != nil || !CanImpersonate(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
