// Package middleware holds HTTP middleware shared by the three application
// routers: request identity propagation and request logging.
package middleware

import (
	"context"

	identitydomain "storefront-gateway/internal/identity/domain"
	rolesdomain "storefront-gateway/internal/roles/domain"
)

type contextKey struct{ name string }

var (
	principalKey = contextKey{"principal"}
	rolesKey     = contextKey{"roles"}
)

// WithIdentity returns a context carrying the authenticated principal and its
// role assignment. Set by the access gate after a granted decision; handlers
// read them via GetPrincipal and GetRoles.
func WithIdentity(ctx context.Context, p identitydomain.Principal, assignment rolesdomain.Assignment) context.Context {
	ctx = context.WithValue(ctx, principalKey, p)
	ctx = context.WithValue(ctx, rolesKey, assignment)
	return ctx
}

// GetPrincipal returns the principal from context and true if set; otherwise a zero Principal, false.
func GetPrincipal(ctx context.Context) (identitydomain.Principal, bool) {
	v, ok := ctx.Value(principalKey).(identitydomain.Principal)
	return v, ok
}

// GetRoles returns the role assignment from context and true if set; otherwise nil, false.
func GetRoles(ctx context.Context) (rolesdomain.Assignment, bool) {
	v, ok := ctx.Value(rolesKey).(rolesdomain.Assignment)
	return v, ok
}
