package middleware

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/eventuraa/server/internal/api/problem"
	"github.com/eventuraa/server/internal/auth"
	"github.com/eventuraa/server/internal/domain/users"
)

// RequireAuth authenticates the request from its Authorization bearer token
// and loads the identity into the context. Malformed, forged, and expired
// tokens all produce the same 401 so callers cannot distinguish them.
// Tokens whose subject no longer resolves to an identity are rejected too.
func RequireAuth(tokens *auth.JWTManager, repo users.Repository, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", err, env)
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Invalid or expired token", err, env)
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Invalid or expired token", err, env)
				return
			}

			identity, err := repo.FindByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, users.ErrNotFound) {
					problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Invalid or expired token", err, env)
					return
				}
				problem.Write(w, r, http.StatusInternalServerError, "https://eventuraa.lk/problems/server-error", "Server error", err, env)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole gates a route to identities holding one of the given roles.
// It must run after RequireAuth.
func RequireRole(env string, roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", auth.ErrMissingToken, env)
				return
			}
			if !auth.HasRole(identity.Role, roles...) {
				problem.Write(w, r, http.StatusForbidden, "https://eventuraa.lk/problems/forbidden", "Insufficient permissions", nil, env,
					problem.WithDetail("You do not have permission to access this resource"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireVerifiedOrganizer additionally demands that the organizer profile
// has been verified by an admin. It must run after RequireAuth.
func RequireVerifiedOrganizer(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if identity == nil {
				problem.Write(w, r, http.StatusUnauthorized, "https://eventuraa.lk/problems/unauthorized", "Authentication required", auth.ErrMissingToken, env)
				return
			}
			if auth.NormalizeRole(identity.Role) != auth.RoleOrganizer || identity.Organizer == nil {
				problem.Write(w, r, http.StatusForbidden, "https://eventuraa.lk/problems/forbidden", "Insufficient permissions", nil, env,
					problem.WithDetail("Only organizers can access this resource"))
				return
			}
			if !identity.Organizer.Verified {
				problem.Write(w, r, http.StatusForbidden, "https://eventuraa.lk/problems/forbidden", "Organizer account is pending verification", nil, env,
					problem.WithDetail("Your organizer account has not been verified yet"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
