package http

import (
	"context"
	"net/http"
	"strings"

	"clearance-backend/internal/security"
)

type contextKey string

const claimsKey contextKey = "claims"

// Authenticator validates bearer tokens and injects the caller's claims
// into the request context.
type Authenticator struct {
	tokens security.TokenManager
}

func NewAuthenticator(tokens security.TokenManager) *Authenticator {
	return &Authenticator{tokens: tokens}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		claims, err := a.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireKind gates a handler to specific principal kinds. Admins pass
// authority-gated routes as well, since every admin is an authority.
func RequireKind(kinds ...security.PrincipalKind) func(http.Handler) http.Handler {
	allowed := make(map[security.PrincipalKind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}
	if allowed[security.KindAuthority] {
		allowed[security.KindAdmin] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFrom(r.Context())
			if claims == nil || !allowed[claims.Kind] {
				writeJSON(w, http.StatusForbidden, errorResponse{Error: "insufficient permissions"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFrom returns the authenticated caller's claims, nil on
// unauthenticated requests.
func ClaimsFrom(ctx context.Context) *security.UserClaims {
	claims, _ := ctx.Value(claimsKey).(*security.UserClaims)
	return claims
}
