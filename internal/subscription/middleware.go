package subscription

import (
	"context"
	"net/http"

	"geniefy-platform/internal/auth"
	"geniefy-platform/internal/rbac"

	"github.com/gin-gonic/gin"
)

// StatusChecker is the minimal service interface needed by middleware.
type StatusChecker interface {
	Status(ctx context.Context, token, tenantID string) (Record, error)
}

// RequireActiveSubscription blocks plan-gated routes for tenants whose
// subscription is past_due or canceled.
//
// Admin override:
//   - super_admin bypasses
//   - hidden support role bypasses (impersonation sessions must be able to see
//     what the tenant sees regardless of billing state)
func RequireActiveSubscription(svc StatusChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := auth.RoleID(c.Request.Context())
		if rbac.IsSuperAdmin(role) || rbac.IsHiddenRole(role) {
			c.Next()
			return
		}

		tenantID, err := auth.TenantID(c.Request.Context())
		if err != nil || tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
			return
		}

		rec, err := svc.Status(c.Request.Context(), c.GetString("access_token"), tenantID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "subscription lookup failed"})
			return
		}
		if !rec.Status.Usable() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "subscription inactive"})
			return
		}

		c.Next()
	}
}
