package auth

import "context"

type contextKey struct{}

// Principal is the authenticated user attached to a request context.
type Principal struct {
	UserID   int64
	Username string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom returns the authenticated user, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok && p.UserID > 0
}
