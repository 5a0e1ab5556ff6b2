package middleware

import (
	"context"
	"net/http"

	"github.com/gatherhub/server/internal/api/respond"
	"github.com/gatherhub/server/internal/auth"
)

const claimsKey contextKey = "auth_claims"

// Authenticate validates the bearer token and stores the verified claims in
// the request context. Requests without a valid token are rejected before
// any handler runs.
func Authenticate(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				respond.Error(w, r, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to callers holding one of the given roles.
// It must run after Authenticate.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				respond.Error(w, r, http.StatusUnauthorized, "unauthorized", auth.ErrMissingToken)
				return
			}
			if !auth.HasRole(claims.Role, roles...) {
				respond.Error(w, r, http.StatusForbidden, "insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the verified claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*auth.Claims)
	return claims, ok
}
