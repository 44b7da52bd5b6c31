package middleware

import (
	"context"
	"log"
	"net/http"

	"deals_api/internal/common"
	"deals_api/internal/common/security"
	"deals_api/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

// UnauthorizedMessage is the only text returned for any token failure.
const UnauthorizedMessage = "Could not validate credentials"

type contextKey string

const ClaimsCtxKey contextKey = "claims"

// Authenticator requires a verified, unrevoked bearer token carrying a complete claim set.
// It must run after jwtauth.Verify. Every failure yields the same 401.
func Authenticator(denylist security.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, rawClaims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}

			claims, err := security.ClaimsFromMap(rawClaims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}

			if denylist != nil {
				revoked, err := denylist.IsRevoked(r.Context(), claims.TokenID)
				if err != nil {
					log.Printf("ERROR: Failed to check token revocation for %s: %v", claims.Username, err)
				}
				if err != nil || revoked {
					common.RespondWithError(w, http.StatusUnauthorized, UnauthorizedMessage)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ClaimsCtxKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireRole(allowed func(model.Role) bool, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}
			if !allowed(claims.Role) {
				common.RespondWithError(w, http.StatusForbidden, message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminOnly rejects every role but admin with 403.
var AdminOnly = requireRole(model.IsAdmin, "Not an admin")

// ActiveUserOnly admits regular users and admins.
var ActiveUserOnly = requireRole(model.IsActiveUser, "Not an active user")

// ClaimsFromContext returns the claim set stored by Authenticator.
func ClaimsFromContext(ctx context.Context) (security.Claims, bool) {
	claims, ok := ctx.Value(ClaimsCtxKey).(security.Claims)
	return claims, ok
}
