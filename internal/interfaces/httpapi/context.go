package httpapi

import (
	"context"

	"github.com/wiratama/courtside/internal/auth"
)

type contextKey string

const roleContextKey contextKey = "auth_role"

func withRole(ctx context.Context, role auth.Role) context.Context {
	return context.WithValue(ctx, roleContextKey, role)
}

func roleFromContext(ctx context.Context) (auth.Role, bool) {
	role, ok := ctx.Value(roleContextKey).(auth.Role)
	return role, ok
}
