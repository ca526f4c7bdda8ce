// Package httpapi groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	"geniefy-platform/internal/auth"
	"geniefy-platform/internal/backend"
	"geniefy-platform/internal/config"
	"geniefy-platform/internal/integration"
	"geniefy-platform/internal/session"
	"geniefy-platform/internal/subscription"
	"geniefy-platform/pkg/logger"
	"geniefy-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handlers struct {
	Sessions      *session.Service
	Cookies       *session.CookieWriter
	Backend       *backend.Client
	Subscriptions *subscription.Service
	Integrations  *integration.Registry

	// Redis + OTP config back the cross-instance resend limiter.
	Redis *redis.Client
	OTP   config.OTPConfig
}

/* ===================== AUTH ===================== */

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Login validates credentials upstream, then issues the session pair and
// writes both cookies.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	user, err := h.Backend.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, backend.ErrAuthRequired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		logger.FromGin(c).Error("login upstream failed", "error", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "login failed"})
		return
	}

	sess, err := h.Sessions.Login(c.Request.Context(), user, req.Remember, c.ClientIP())
	if err != nil {
		logger.FromGin(c).Error("session start failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	h.Cookies.Write(c.Writer, sess.Tokens.AccessToken, sess.Tokens.RefreshToken, sess.Remember)
	c.JSON(http.StatusOK, gin.H{
		"access_token": sess.Tokens.AccessToken,
		"user":         sess.User,
	})
}

// Refresh rotates the session from the httpOnly refresh cookie.
func (h Handlers) Refresh(c *gin.Context) {
	raw, err := c.Cookie(session.RefreshTokenCookie)
	if err != nil || raw == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sess, err := h.Sessions.Refresh(c.Request.Context(), raw, c.ClientIP())
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefresh) || errors.Is(err, session.ErrRefreshReused) {
			h.Cookies.Clear(c.Writer)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		logger.FromGin(c).Error("refresh failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}

	h.Cookies.Write(c.Writer, sess.Tokens.AccessToken, sess.Tokens.RefreshToken, sess.Remember)
	c.JSON(http.StatusOK, gin.H{
		"access_token": sess.Tokens.AccessToken,
		"user":         sess.User,
	})
}

type switchRequest struct {
	TenantID string `json:"tenant_id"`
	TeamID   string `json:"team_id"`
}

// Switch moves the session to another organization/workspace. On a rejected
// transition the original cookies are left untouched.
func (h Handlers) Switch(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.TenantID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "tenant_id required"})
		return
	}

	sess, err := h.Sessions.Switch(c.Request.Context(), c.GetString("access_token"), req.TenantID, req.TeamID, c.ClientIP())
	if err != nil {
		h.rejectTransition(c, err)
		return
	}

	h.Cookies.Write(c.Writer, sess.Tokens.AccessToken, sess.Tokens.RefreshToken, sess.Remember)
	c.JSON(http.StatusOK, gin.H{
		"access_token": sess.Tokens.AccessToken,
		"user":         sess.User,
	})
}

type impersonateRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	TenantID string `json:"tenant_id"`
	TeamID   string `json:"team_id"`
	RoleID   string `json:"role_id"`
}

// Impersonate starts a support session as the given user.
// RBAC: gated by rbac.RequireImpersonationRights in the route chain.
func (h Handlers) Impersonate(c *gin.Context) {
	var req impersonateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.UserID == "" || req.TenantID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user_id and tenant_id required"})
		return
	}

	subject := auth.UserInfo{
		UserID:   req.UserID,
		Username: req.Username,
		Name:     req.Name,
		TenantID: req.TenantID,
		TeamID:   req.TeamID,
		RoleID:   req.RoleID,
	}
	sess, err := h.Sessions.Impersonate(c.Request.Context(), c.GetString("access_token"), subject, c.ClientIP())
	if err != nil {
		h.rejectTransition(c, err)
		return
	}

	h.Cookies.Write(c.Writer, sess.Tokens.AccessToken, sess.Tokens.RefreshToken, sess.Remember)
	c.JSON(http.StatusOK, gin.H{
		"access_token": sess.Tokens.AccessToken,
		"user":         sess.User,
	})
}

func (h Handlers) rejectTransition(c *gin.Context, err error) {
	var te *session.TransitionError
	if errors.As(err, &te) {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":  "transition rejected",
			"errors": te.Result.Errors,
		})
		return
	}
	logger.FromGin(c).Error("transition failed", "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "switch failed"})
}

// Logout ends the session and clears both cookies.
func (h Handlers) Logout(c *gin.Context) {
	access := c.GetString("access_token")
	refresh, _ := c.Cookie(session.RefreshTokenCookie)

	h.Sessions.Logout(c.Request.Context(), access, refresh, c.ClientIP())
	h.Cookies.Clear(c.Writer)
	c.JSON(http.StatusOK, gin.H{"status": "signed_out"})
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

// ResendOTP re-sends a one-time code, rate-limited per email across all
// instances.
func (h Handlers) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email required"})
		return
	}

	allowed, err := utils.AllowFixedWindow(c.Request.Context(), h.Redis, "otp:resend:"+req.Email, h.OTP.ResendMax, h.OTP.ResendWindow)
	if err != nil {
		logger.FromGin(c).Error("otp limiter failed", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "try again later"})
		return
	}
	if !allowed {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	if err := h.Backend.ResendOTP(c.Request.Context(), req.Email); err != nil {
		logger.FromGin(c).Error("otp resend upstream failed", "error", err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "resend failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

/* ===================== IDENTITY / STATUS ===================== */

// Me echoes the identity from the validated token.
func (h Handlers) Me(c *gin.Context) {
	uid, _ := auth.UserID(c.Request.Context())
	tenantID, _ := auth.TenantID(c.Request.Context())
	role, _ := auth.RoleID(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"user_id":   uid,
		"tenant_id": tenantID,
		"team_id":   auth.TeamID(c.Request.Context()),
		"role_id":   role,
	})
}

// IntegrationStatus reports the connection state of one integration,
// keeping a background poller alive while it reconnects.
func (h Handlers) IntegrationStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "integration id required"})
		return
	}

	st, err := h.Integrations.Status(c.Request.Context(), c.GetString("access_token"), id)
	if err != nil {
		if errors.Is(err, backend.ErrAuthRequired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		logger.FromGin(c).Error("integration status failed", "error", err, "integration_id", id)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "status unavailable"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// Subscription returns the tenant's billing state.
func (h Handlers) Subscription(c *gin.Context) {
	tenantID, err := auth.TenantID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "tenant_id required"})
		return
	}

	rec, err := h.Subscriptions.Status(c.Request.Context(), c.GetString("access_token"), tenantID)
	if err != nil {
		if errors.Is(err, backend.ErrAuthRequired) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		logger.FromGin(c).Error("subscription lookup failed", "error", err, "tenant_id", tenantID)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "subscription unavailable"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Healthz is the liveness probe.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}
