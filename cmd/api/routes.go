package main

import (
	"geniefy-platform/internal/httpapi"
	"geniefy-platform/internal/rbac"
	"geniefy-platform/internal/subscription"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", httpapi.Healthz)

	v1 := r.Group("/v1")

	// AUTH routes that establish or recover a session run before the guard.
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/resend-otp", h.ResendOTP)
	}

	// protected API group
	protected := v1.Group("")
	protected.Use(authMW)
	{
		protected.GET("/me", h.Me)

		protected.POST("/auth/switch", h.Switch)
		protected.POST("/auth/logout", h.Logout)

		protected.POST("/auth/impersonate",
			rbac.RequireImpersonationRights(), h.Impersonate)

		protected.GET("/billing/subscription", h.Subscription)

		// Plan-gated routes check the subscription projection after identity.
		gated := protected.Group("")
		gated.Use(subscription.RequireActiveSubscription(h.Subscriptions))
		{
			gated.GET("/integrations/:id/status", h.IntegrationStatus)
		}
	}
}
