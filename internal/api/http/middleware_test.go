package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"clearance-backend/internal/security"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, security.TokenManager) {
	t.Helper()
	tokens := security.NewTokenManager("test-secret-at-least-32-characters!!", time.Hour)
	return NewAuthenticator(tokens), tokens
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticator_Middleware(t *testing.T) {
	auth, tokens := newTestAuthenticator(t)
	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		assert.NotNil(t, claims)
		assert.Equal(t, int32(5), claims.UserID)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("ValidToken", func(t *testing.T) {
		token, err := tokens.GenerateAccessToken(5, "student@test.edu", "Test Student", security.KindStudent)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/mine", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/mine", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("MangledToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/applications/mine", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireKind(t *testing.T) {
	auth, tokens := newTestAuthenticator(t)

	serve := func(gate func(http.Handler) http.Handler, kind security.PrincipalKind) int {
		token, err := tokens.GenerateAccessToken(1, "who@test.edu", "Who", kind)
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/worklist", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		auth.Middleware(gate(okHandler())).ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("StudentBlockedFromAuthorityRoutes", func(t *testing.T) {
		gate := RequireKind(security.KindAuthority)
		assert.Equal(t, http.StatusForbidden, serve(gate, security.KindStudent))
	})

	t.Run("AdminPassesAuthorityGate", func(t *testing.T) {
		gate := RequireKind(security.KindAuthority)
		assert.Equal(t, http.StatusOK, serve(gate, security.KindAdmin))
	})

	t.Run("AuthorityBlockedFromAdminRoutes", func(t *testing.T) {
		gate := RequireKind(security.KindAdmin)
		assert.Equal(t, http.StatusForbidden, serve(gate, security.KindAuthority))
	})

	t.Run("UnauthenticatedContextRefused", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/worklist", nil)
		RequireKind(security.KindStudent)(okHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
