package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-at-least-32-characters!!"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)

	token, err := tm.GenerateAccessToken(42, "advisor@test.edu", "Test Advisor", KindAuthority)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "advisor@test.edu", claims.Email)
	assert.Equal(t, KindAuthority, claims.Kind)
	assert.Equal(t, "Test Advisor", claims.FullName)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	// Negative ttl falls back to the default, so force expiry directly.
	tm := &tokenManager{secret: []byte(testSecret), ttl: -time.Minute}

	token, err := tm.GenerateAccessToken(42, "advisor@test.edu", "Test Advisor", KindStudent)
	assert.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager(testSecret, time.Hour)
	verifier := NewTokenManager("another-secret-also-32-characters!!!", time.Hour)

	token, err := issuer.GenerateAccessToken(7, "student@test.edu", "Test Student", KindStudent)
	assert.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager(testSecret, time.Hour)
	_, err := tm.ValidateToken("not.a.token")
	assert.Error(t, err)
}
