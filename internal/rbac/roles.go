package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleMember  = "member"
	RoleBilling = "billing"

	RoleSuperAdmin = "super_admin"
	// RoleSupport is the hidden support-desk role used for impersonation.
	RoleSupport = "support"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleSupport }

// CanImpersonate reports whether a role may start support impersonation.
func CanImpersonate(role string) bool {
	return role == RoleSuperAdmin || role == RoleSupport
}
