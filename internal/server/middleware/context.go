// Package middleware holds the HTTP middleware wrapped around every API route:
// bearer authentication, policy authorization, and request telemetry.
package middleware

import "context"

type contextKey struct{ name string }

var (
	userIDKey = contextKey{"user_id"}
	roleKey   = contextKey{"role"}
	holderKey = contextKey{"principal_holder"}
)

// principalHolder lets an outer middleware observe the principal set further in.
type principalHolder struct {
	userID string
	role   string
}

func withPrincipalHolder(ctx context.Context, h *principalHolder) context.Context {
	return context.WithValue(ctx, holderKey, h)
}

// WithPrincipal returns a context carrying the authenticated user id and role.
func WithPrincipal(ctx context.Context, userID, role string) context.Context {
	if h, ok := ctx.Value(holderKey).(*principalHolder); ok {
		h.userID, h.role = userID, role
	}
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	return ctx
}

// GetUserID returns the user id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetRole returns the role from context and true if set; otherwise "", false.
func GetRole(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(roleKey).(string)
	return v, ok
}
