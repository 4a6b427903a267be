package shared

import (
	"context"

	"github.com/google/uuid"
)

// Principal is the authenticated caller as asserted by the upstream gateway.
type Principal struct {
	UserID uuid.UUID
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok || p.UserID == uuid.Nil {
		return Principal{}, false
	}
	return p, true
}
