// internal/auth/session.go
// Vendor session credentials derived from the backend-issued token

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrTokenExpired   = errors.New("session token expired")
	ErrTokenMalformed = errors.New("session token malformed")
)

// SessionClaims are the claims the backend embeds in a vendor session token.
type SessionClaims struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Type        string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// Session identifies the vendor on both the REST and realtime surfaces.
type Session struct {
	VendorID    string
	Email       string
	DisplayName string
	Token       string
	ExpiresAt   time.Time
}

// NewSession extracts the vendor identity from a backend-issued token.
// The token is the backend's to verify; the client only reads the claims
// and refuses tokens that are already expired.
func NewSession(token string) (*Session, error) {
	claims := &SessionClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrTokenMalformed)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
		if time.Now().After(expiresAt) {
			return nil, ErrTokenExpired
		}
	}

	return &Session{
		VendorID:    claims.UserID,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Token:       token,
		ExpiresAt:   expiresAt,
	}, nil
}

// Header returns the HTTP header to attach to REST calls and the
// websocket handshake.
func (s *Session) Header() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+s.Token)
	return h
}

// Valid reports whether the token is still inside its validity window.
func (s *Session) Valid() bool {
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}
