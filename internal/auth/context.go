package auth

import "context"

type contextKey struct{}

// WithActor stores the authenticated claims on the context.
func WithActor(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ActorFrom returns the authenticated claims, or nil when the request was
// not authenticated.
func ActorFrom(ctx context.Context) *Claims {
	claims, _ := ctx.Value(contextKey{}).(*Claims)
	return claims
}
