package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims SessionClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestNewSession(t *testing.T) {
	token := signedToken(t, SessionClaims{
		UserID:      "vendor-1",
		Email:       "store@example.com",
		DisplayName: "Acme Supplies",
		Type:        "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	session, err := NewSession(token)
	require.NoError(t, err)

	assert.Equal(t, "vendor-1", session.VendorID)
	assert.Equal(t, "store@example.com", session.Email)
	assert.Equal(t, "Acme Supplies", session.DisplayName)
	assert.Equal(t, token, session.Token)
	assert.True(t, session.Valid())
}

func TestNewSessionWithoutExpiry(t *testing.T) {
	token := signedToken(t, SessionClaims{UserID: "vendor-1"})

	session, err := NewSession(token)
	require.NoError(t, err)
	assert.True(t, session.ExpiresAt.IsZero())
	assert.True(t, session.Valid())
}

func TestNewSessionExpiredToken(t *testing.T) {
	token := signedToken(t, SessionClaims{
		UserID: "vendor-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := NewSession(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestNewSessionMissingUserID(t *testing.T) {
	token := signedToken(t, SessionClaims{Email: "store@example.com"})

	_, err := NewSession(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestNewSessionGarbageToken(t *testing.T) {
	_, err := NewSession("not.a.jwt")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestHeader(t *testing.T) {
	s := &Session{Token: "abc"}
	assert.Equal(t, "Bearer abc", s.Header().Get("Authorization"))
}
