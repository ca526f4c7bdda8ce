package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"geniefy-platform/internal/auth"

	"github.com/gin-gonic/gin"
)

func guardedRouter(user auth.UserInfo, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	chain := []gin.HandlerFunc{func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), user))
		c.Next()
	}}
	chain = append(chain, guards...)
	chain = append(chain, func(c *gin.Context) { c.Status(200) })
	r.GET("/x", chain...)
	return r
}

func TestRequireAnyRole_SuperAdminBypasses(t *testing.T) {
	r := guardedRouter(
		auth.UserInfo{UserID: "u", TenantID: "t", TeamID: "w", RoleID: RoleSuperAdmin},
		RequireTeam(), RequireAnyRole(RoleOwner),
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireAnyRole_HiddenRoleDeniedUnlessAllowed(t *testing.T) {
	r := guardedRouter(
		auth.UserInfo{UserID: "u", TenantID: "t", TeamID: "w", RoleID: RoleSupport},
		RequireTeam(), RequireAnyRole(RoleOwner),
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != 403 {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRequireAnyRole_HiddenRoleAllowedWhenListed(t *testing.T) {
	r := guardedRouter(
		auth.UserInfo{UserID: "u", TenantID: "t", TeamID: "w", RoleID: RoleSupport},
		RequireAnyRole(RoleSupport),
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRequireTeam_MissingTeamRejected(t *testing.T) {
	r := guardedRouter(
		auth.UserInfo{UserID: "u", TenantID: "t", RoleID: RoleOwner},
		RequireTeam(), RequireAnyRole(RoleOwner),
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != 401 {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireImpersonationRights(t *testing.T) {
	cases := []struct {
		role string
		want int
	}{
		{RoleSuperAdmin, 200},
		{RoleSupport, 200},
		{RoleOwner, 403},
		{"", 403},
	}
	for _, tc := range cases {
		r := guardedRouter(
			auth.UserInfo{UserID: "u", TenantID: "t", RoleID: tc.role},
			RequireImpersonationRights(),
		)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != tc.want {
			t.Fatalf("role %q: expected %d, got %d", tc.role, tc.want, w.Code)
		}
	}
}
