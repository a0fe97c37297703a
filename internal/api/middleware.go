package api

import (
	"net/http"
	"strings"

	"github.com/sitewise/sitewise-server/internal/api/respond"
	"github.com/sitewise/sitewise-server/internal/auth"
)

// authMiddleware validates the bearer token and stores the actor claims on
// the request context. Requests without a valid token are rejected; the
// health and login endpoints are registered outside this middleware.
func authMiddleware(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				respond.WriteUnauthorized(w, "missing bearer token")
				return
			}
			claims, err := tokens.Validate(strings.TrimPrefix(header, prefix))
			if err != nil {
				respond.WriteUnauthorized(w, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), claims)))
		})
	}
}

// requireCapability gates a handler on the actor's role capabilities.
func requireCapability(c auth.Capability, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := auth.ActorFrom(r.Context())
		if actor == nil {
			respond.WriteUnauthorized(w, "missing bearer token")
			return
		}
		if !auth.RoleHas(actor.Role, c) {
			respond.WriteForbidden(w, "insufficient role")
			return
		}
		h(w, r)
	}
}
