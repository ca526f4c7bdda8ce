package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxTenantID
	ctxTeamID
	ctxRoleID
)

func WithIdentity(ctx context.Context, user UserInfo) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, user.UserID)
	ctx = context.WithValue(ctx, ctxTenantID, user.TenantID)
	ctx = context.WithValue(ctx, ctxTeamID, user.TeamID)
	ctx = context.WithValue(ctx, ctxRoleID, user.RoleID)
	return ctx
}

func UserID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxUserID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("user_id not in context")
}

func TenantID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxTenantID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("tenant_id not in context")
}

// TeamID returns the workspace scope. Unlike tenant, an empty team is legal:
// the caller decides whether workspace scoping is required.
func TeamID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxTeamID).(string); ok {
		return s
	}
	return ""
}

func RoleID(ctx context.Context) (string, error) {
	v := ctx.Value(ctxRoleID)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("role_id not in context")
}
