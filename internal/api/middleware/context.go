package middleware

import (
	"context"

	"github.com/eventuraa/server/internal/domain/users"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request correlation ID.
	RequestIDKey contextKey = "request_id"

	// identityKey is the context key for the authenticated identity.
	identityKey contextKey = "identity"
)

// IdentityFromContext returns the identity stored by RequireAuth, or nil
// when the request was not authenticated.
func IdentityFromContext(ctx context.Context) *users.Identity {
	if id, ok := ctx.Value(identityKey).(*users.Identity); ok {
		return id
	}
	return nil
}

func withIdentity(ctx context.Context, id *users.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
